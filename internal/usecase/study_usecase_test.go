package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"pacs-study-browser/internal/delivery/dto"
	"pacs-study-browser/internal/domain/entity"
	"pacs-study-browser/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFilter(t *testing.T, env *testEnv, ctx context.Context, req dto.FilterRequest) {
	t.Helper()
	_, err := env.studies.UpdateFilter(ctx, &req)
	require.NoError(t, err)
}

func TestStudyUsecase_SearchWithoutAetDoesNotQuery(t *testing.T) {
	env := newTestEnv(t, &fakeArchive{})
	ctx := sessionContext("s1")

	page, err := env.studies.Search(ctx)

	assert.Nil(t, page)
	assert.ErrorIs(t, err, ErrCallingAetMissing)
	assert.Empty(t, env.archive.calls())
	assert.Zero(t, env.indicator.started)

	current, err := env.studies.GetPage(ctx)
	require.NoError(t, err)
	require.Len(t, current.Messages, 1)
	assert.Equal(t, entity.NotificationError, current.Messages[0].Level)
	assert.Equal(t, MsgCallingAetMissing, current.Messages[0].Text)
}

func TestStudyUsecase_SearchRequestsOneExtraRow(t *testing.T) {
	archive := &fakeArchive{
		studies: func(call studiesCall) ([]entity.Attributes, error) {
			return []entity.Attributes{studyRow("P1", "1.1"), studyRow("P2", "2.1")}, nil
		},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 2, PatientName: "DOE*"})

	page, err := env.studies.Search(ctx)

	require.NoError(t, err)
	assert.False(t, page.MoreStudies)
	assert.Len(t, page.Patients, 2)

	calls := archive.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, entity.TabStudy, calls[0].Tab)
	assert.Equal(t, "DCM4CHEE", calls[0].CallingAet.DicomAETitle)
	assert.Equal(t, "3", calls[0].Params.Get("limit"))
	assert.Equal(t, "DOE*", calls[0].Params.Get("PatientName"))
	assert.NotContains(t, calls[0].Params, "aet")

	// the stored filter keeps the requested page size
	assert.Equal(t, 2, page.FilterModel.Limit)
	assert.Equal(t, []string{"success"}, env.indicator.outcomes())
}

func TestStudyUsecase_SearchDetectsMoreStudies(t *testing.T) {
	archive := &fakeArchive{
		studies: func(call studiesCall) ([]entity.Attributes, error) {
			return []entity.Attributes{studyRow("P1", "1.1"), studyRow("P1", "1.2"), studyRow("P2", "2.1")}, nil
		},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 2})

	page, err := env.studies.Search(ctx)

	require.NoError(t, err)
	assert.True(t, page.MoreStudies)
	require.Len(t, page.Patients, 1)
	assert.Len(t, page.Patients[0].Studies, 2)
}

func TestStudyUsecase_SearchNoResults(t *testing.T) {
	env := newTestEnv(t, &fakeArchive{})
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 20})

	page, err := env.studies.Search(ctx)

	require.NoError(t, err)
	assert.Empty(t, page.Patients)
	assert.False(t, page.MoreStudies)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, entity.NotificationInfo, page.Messages[0].Level)
	assert.Equal(t, MsgNoStudiesFound, page.Messages[0].Text)
	assert.Equal(t, []string{entity.QueryOutcomeEmpty}, env.indicator.outcomes())
}

func TestStudyUsecase_SearchArchiveError(t *testing.T) {
	archive := &fakeArchive{
		studies: func(call studiesCall) ([]entity.Attributes, error) {
			return nil, &repository.ArchiveError{StatusCode: http.StatusInternalServerError, Message: "boom"}
		},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 20})

	page, err := env.studies.Search(ctx)

	assert.Nil(t, page)
	assert.ErrorIs(t, err, ErrArchiveQueryFailed)
	assert.Equal(t, []string{entity.QueryOutcomeFailure}, env.indicator.outcomes())

	current, err := env.studies.GetPage(ctx)
	require.NoError(t, err)
	require.Len(t, current.Messages, 1)
	assert.Equal(t, "Error 500: boom", current.Messages[0].Text)

	audits := env.audit.all()
	require.Len(t, audits, 1)
	assert.Equal(t, entity.QueryOutcomeFailure, audits[0].Outcome)
	assert.Equal(t, "user-s1", audits[0].UserID)
}

func TestStudyUsecase_SearchAppendsAndNextPage(t *testing.T) {
	archive := &fakeArchive{
		studies: func(call studiesCall) ([]entity.Attributes, error) {
			if call.Params.Get("offset") == "" {
				return []entity.Attributes{studyRow("P1", "1.1"), studyRow("P2", "2.1"), studyRow("P3", "3.1")}, nil
			}
			return []entity.Attributes{studyRow("P3", "3.1")}, nil
		},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 2})

	first, err := env.studies.Search(ctx)
	require.NoError(t, err)
	require.True(t, first.MoreStudies)

	next, err := env.studies.NextPage(ctx)
	require.NoError(t, err)

	calls := archive.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "2", calls[1].Params.Get("offset"))
	assert.False(t, next.MoreStudies)
	require.Len(t, next.Patients, 3)
	assert.Equal(t, 2, next.Patients[2].Studies[0].Offset)

	_, err = env.studies.NextPage(ctx)
	assert.ErrorIs(t, err, ErrNoMoreStudies)
}

func TestStudyUsecase_NextPageFailureKeepsOffset(t *testing.T) {
	var pageTwoAttempts int
	archive := &fakeArchive{
		studies: func(call studiesCall) ([]entity.Attributes, error) {
			if call.Params.Get("offset") == "" {
				return []entity.Attributes{studyRow("P1", "1.1"), studyRow("P2", "2.1"), studyRow("P3", "3.1")}, nil
			}
			pageTwoAttempts++
			if pageTwoAttempts == 1 {
				return nil, &repository.ArchiveError{StatusCode: http.StatusServiceUnavailable, Message: "busy"}
			}
			return []entity.Attributes{studyRow("P3", "3.1")}, nil
		},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 2})

	_, err := env.studies.Search(ctx)
	require.NoError(t, err)

	_, err = env.studies.NextPage(ctx)
	require.ErrorIs(t, err, ErrArchiveQueryFailed)

	current, err := env.studies.GetPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, current.FilterModel.Offset)
	assert.True(t, current.MoreStudies)
	assert.Len(t, current.Patients, 2)

	next, err := env.studies.NextPage(ctx)
	require.NoError(t, err)

	calls := archive.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "2", calls[1].Params.Get("offset"))
	assert.Equal(t, "2", calls[2].Params.Get("offset"))
	assert.Equal(t, 2, next.FilterModel.Offset)
	require.Len(t, next.Patients, 3)
	assert.Equal(t, 2, next.Patients[2].Studies[0].Offset)
}

func TestStudyUsecase_EmptyNextPageEndsPaging(t *testing.T) {
	archive := &fakeArchive{
		studies: func(call studiesCall) ([]entity.Attributes, error) {
			if call.Params.Get("offset") == "" {
				return []entity.Attributes{studyRow("P1", "1.1"), studyRow("P2", "2.1"), studyRow("P3", "3.1")}, nil
			}
			return nil, nil
		},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 2})
	_, err := env.studies.Search(ctx)
	require.NoError(t, err)

	page, err := env.studies.NextPage(ctx)

	require.NoError(t, err)
	assert.False(t, page.MoreStudies)
	assert.Equal(t, 0, page.FilterModel.Offset)
	assert.Len(t, page.Patients, 2)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, MsgNoStudiesFound, page.Messages[0].Text)

	_, err = env.studies.NextPage(ctx)
	assert.ErrorIs(t, err, ErrNoMoreStudies)
	assert.Len(t, archive.calls(), 2)
}

func TestStudyUsecase_AttributeFilterFailureIsAudited(t *testing.T) {
	archive := &fakeArchive{
		filterErr: &repository.ArchiveError{StatusCode: http.StatusBadGateway, Message: "down"},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 20})

	_, err := env.studies.Search(ctx)

	require.ErrorIs(t, err, ErrArchiveQueryFailed)
	assert.Empty(t, archive.calls())

	audits := env.audit.all()
	require.Len(t, audits, 1)
	assert.Equal(t, entity.QueryOutcomeFailure, audits[0].Outcome)
	assert.Equal(t, "DCM4CHEE", audits[0].CallingAET)
	assert.Equal(t, "user-s1", audits[0].UserID)
	assert.NotEmpty(t, audits[0].Detail)
}

func TestStudyUsecase_UpdateFilterKeepsDefaults(t *testing.T) {
	archive := &fakeArchive{}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")

	page, err := env.studies.UpdateFilter(ctx, &dto.FilterRequest{Aet: "DCM4CHEE"})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultLimit, page.FilterModel.Limit)
	assert.Equal(t, entity.DefaultStudySizeInKB, page.FilterModel.StudySizeInKB)

	_, err = env.studies.Search(ctx)
	require.NoError(t, err)
	calls := archive.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "21", calls[0].Params.Get("limit"))

	anySize := ""
	page, err = env.studies.UpdateFilter(ctx, &dto.FilterRequest{Aet: "DCM4CHEE", StudySizeInKB: &anySize})
	require.NoError(t, err)
	assert.Empty(t, page.FilterModel.StudySizeInKB)
}

func TestStudyUsecase_ClearResults(t *testing.T) {
	archive := &fakeArchive{
		studies: func(call studiesCall) ([]entity.Attributes, error) {
			return []entity.Attributes{studyRow("P1", "1.1"), studyRow("P2", "2.1")}, nil
		},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 1})
	_, err := env.studies.Search(ctx)
	require.NoError(t, err)

	page, err := env.studies.ClearResults(ctx)

	require.NoError(t, err)
	assert.Empty(t, page.Patients)
	assert.False(t, page.MoreStudies)
	assert.Equal(t, 0, page.FilterModel.Offset)
}

func TestStudyUsecase_StaleResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	archive := &fakeArchive{
		studies: func(call studiesCall) ([]entity.Attributes, error) {
			if call.Params.Get("PatientID") == "OLD" {
				once.Do(func() { close(started) })
				<-release
				return []entity.Attributes{studyRow("OLD", "9.9")}, nil
			}
			return []entity.Attributes{studyRow("NEW", "1.1")}, nil
		},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 20, PatientID: "OLD"})

	type result struct {
		page *dto.StudyPageResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		page, err := env.studies.Search(ctx)
		done <- result{page, err}
	}()
	<-started

	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 20, PatientID: "NEW"})
	page, err := env.studies.Search(ctx)
	require.NoError(t, err)
	require.Len(t, page.Patients, 1)

	close(release)
	var stale result
	select {
	case stale = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stale search did not return")
	}
	assert.ErrorIs(t, stale.err, ErrStaleSearch)

	current, err := env.studies.GetPage(ctx)
	require.NoError(t, err)
	require.Len(t, current.Patients, 1)
	assert.Equal(t, "NEW", current.Patients[0].Attrs.String(entity.TagPatientID))
}

func TestStudyUsecase_SessionsAreIsolated(t *testing.T) {
	archive := &fakeArchive{
		studies: func(call studiesCall) ([]entity.Attributes, error) {
			return []entity.Attributes{studyRow("P1", "1.1")}, nil
		},
	}
	env := newTestEnv(t, archive)
	a := sessionContext("a")
	b := sessionContext("b")
	setFilter(t, env, a, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 20})

	_, err := env.studies.Search(a)
	require.NoError(t, err)

	other, err := env.studies.GetPage(b)
	require.NoError(t, err)
	assert.Empty(t, other.Patients)
	assert.Empty(t, other.FilterModel.Aet)
}

func TestStudyUsecase_PrincipalRequired(t *testing.T) {
	env := newTestEnv(t, &fakeArchive{})

	_, err := env.studies.GetPage(context.Background())

	assert.ErrorIs(t, err, ErrPrincipalMissing)
}

func TestStudyUsecase_NavigateLoadsDirectoryOnce(t *testing.T) {
	archive := &fakeArchive{
		aes: func() ([]entity.Aet, error) {
			return []entity.Aet{{DicomAETitle: "DCM4CHEE", DcmOtherAETitle: []string{"ALIAS"}}}, nil
		},
		aets: func() ([]entity.Aet, error) {
			return []entity.Aet{{DicomAETitle: "DCM4CHEE"}, {DicomAETitle: "IOCM"}}, nil
		},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")

	page, err := env.studies.Navigate(ctx, entity.TabStudy)
	require.NoError(t, err)
	_, err = env.studies.Navigate(ctx, entity.TabPatient)
	require.NoError(t, err)

	assert.Equal(t, int32(1), archive.aesCalls.Load())
	assert.Equal(t, int32(1), archive.aetsCalls.Load())
	assert.True(t, page.ApplicationEntities.AetsAreSet)
	assert.Len(t, page.ApplicationEntities.Aes[entity.AccessLocationInternal], 2)
	assert.Len(t, page.ApplicationEntities.Aets[entity.AccessLocationInternal], 2)

	aetField := findField(page.FilterSchemaMain, "aet")
	require.NotNil(t, aetField)
	assert.Len(t, aetField.Options, 2)
	require.NotNil(t, page.FilterSchemaExpand.LineLength)
	assert.Equal(t, 2, *page.FilterSchemaExpand.LineLength)
	assert.Nil(t, page.FilterSchemaMain.LineLength)
}

func TestStudyUsecase_NavigateDirectoryFailure(t *testing.T) {
	archive := &fakeArchive{
		aets: func() ([]entity.Aet, error) {
			return nil, errors.New("connection refused")
		},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")

	_, err := env.studies.Navigate(ctx, entity.TabStudy)

	assert.ErrorIs(t, err, ErrDirectoryLoadFailed)
	current, err := env.studies.GetPage(ctx)
	require.NoError(t, err)
	require.Len(t, current.Messages, 1)
	assert.Equal(t, MsgErrorGettingAets, current.Messages[0].Text)
	assert.False(t, current.ApplicationEntities.AetsAreSet)
}

func TestStudyUsecase_NavigateTabResetsFilterKeepingAet(t *testing.T) {
	env := newTestEnv(t, &fakeArchive{})
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 50, PatientName: "DOE"})

	page, err := env.studies.Navigate(ctx, entity.TabMWL)

	require.NoError(t, err)
	assert.Equal(t, entity.TabMWL, page.Tab)
	assert.Equal(t, "DCM4CHEE", page.FilterModel.Aet)
	assert.Equal(t, entity.DefaultLimit, page.FilterModel.Limit)
	assert.Empty(t, page.FilterModel.PatientName)

	_, err = env.studies.Navigate(ctx, entity.Tab("series"))
	assert.ErrorIs(t, err, ErrInvalidTab)
}

func TestStudyUsecase_ChangeAccessLocation(t *testing.T) {
	env := newTestEnv(t, &fakeArchive{})
	ctx := sessionContext("s1")

	page, err := env.studies.ChangeAccessLocation(ctx, entity.AccessLocationExternal)
	require.NoError(t, err)
	assert.Equal(t, entity.AccessLocationExternal, page.AccessLocation)

	_, err = env.studies.ChangeAccessLocation(ctx, entity.AccessLocation("remote"))
	assert.ErrorIs(t, err, ErrInvalidAccessLocation)
}

func TestStudyUsecase_ViewToggles(t *testing.T) {
	env := newTestEnv(t, &fakeArchive{})
	ctx := sessionContext("s1")

	page, err := env.studies.ToggleExpand(ctx)
	require.NoError(t, err)
	assert.True(t, page.View.Expanded)

	page, err = env.studies.Scroll(ctx, 74)
	require.NoError(t, err)
	assert.True(t, page.View.FixedHeader)
	assert.False(t, page.View.ContentVisible)

	page, err = env.studies.Scroll(ctx, 0)
	require.NoError(t, err)
	assert.False(t, page.View.FixedHeader)
	assert.True(t, page.View.ContentVisible)
}

func TestStudyUsecase_CountAndSize(t *testing.T) {
	archive := &fakeArchive{
		count: func(params url.Values) (int64, error) {
			return 42, nil
		},
		size: func(params url.Values) (int64, error) {
			return 1536000, nil
		},
	}
	env := newTestEnv(t, archive)
	ctx := sessionContext("s1")
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE", Limit: 20})

	count, err := env.studies.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count.Value)
	assert.Equal(t, "42 studies", count.Text)

	size, err := env.studies.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.54 MB", size.Text)

	page, err := env.studies.GetPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "42 studies", page.QuantityText.Count)
	assert.Equal(t, "1.54 MB", page.QuantityText.Size)
	countButton := findField(page.FilterSchemaExpand, "count")
	require.NotNil(t, countButton)
	assert.Equal(t, "42 studies", countButton.Text)
}

func TestStudyUsecase_SizeOnlyForStudies(t *testing.T) {
	env := newTestEnv(t, &fakeArchive{})
	ctx := sessionContext("s1")
	_, err := env.studies.Navigate(ctx, entity.TabPatient)
	require.NoError(t, err)
	setFilter(t, env, ctx, dto.FilterRequest{Aet: "DCM4CHEE"})

	_, err = env.studies.Size(ctx)

	assert.ErrorIs(t, err, ErrSizeNotSupported)
}

func findField(schema entity.FilterSchema, key string) *entity.FilterField {
	for i := range schema.Schema {
		if schema.Schema[i].FilterKey == key || schema.Schema[i].ID == key {
			return &schema.Schema[i]
		}
	}
	return nil
}
