package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"pacs-study-browser/internal/converter"
	"pacs-study-browser/internal/delivery/dto"
	"pacs-study-browser/internal/delivery/http/middleware"
	"pacs-study-browser/internal/domain/entity"
	"pacs-study-browser/internal/domain/repository"
	"pacs-study-browser/internal/service"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// User visible notifications
const (
	MsgCallingAetMissing = "Calling AET is missing!"
	MsgNoStudiesFound    = "No Studies found!"
	MsgErrorGettingAets  = "Error getting AETs!"
)

var (
	ErrPrincipalMissing      = errors.New("principal not found in context")
	ErrInvalidTab            = errors.New("unknown tab")
	ErrInvalidAccessLocation = errors.New("unknown access location")
	ErrCallingAetMissing     = errors.New("calling AET is missing")
	ErrArchiveQueryFailed    = errors.New("archive query failed")
	ErrStaleSearch           = errors.New("search was superseded by a newer search")
	ErrNoMoreStudies         = errors.New("no further results available")
	ErrSizeNotSupported      = errors.New("size is only available on the study tab")
)

// patientAttributeFilter names the attribute filter that defines patient attributes.
const patientAttributeFilter = "Patient"

type StudyUsecase interface {
	GetPage(ctx context.Context) (*dto.StudyPageResponse, error)
	Navigate(ctx context.Context, tab entity.Tab) (*dto.StudyPageResponse, error)
	ChangeAccessLocation(ctx context.Context, location entity.AccessLocation) (*dto.StudyPageResponse, error)
	UpdateFilter(ctx context.Context, req *dto.FilterRequest) (*dto.StudyPageResponse, error)
	Search(ctx context.Context) (*dto.StudyPageResponse, error)
	NextPage(ctx context.Context) (*dto.StudyPageResponse, error)
	ClearResults(ctx context.Context) (*dto.StudyPageResponse, error)
	ToggleExpand(ctx context.Context) (*dto.StudyPageResponse, error)
	Scroll(ctx context.Context, position int) (*dto.StudyPageResponse, error)
	Count(ctx context.Context) (*dto.QuantityResponse, error)
	Size(ctx context.Context) (*dto.QuantityResponse, error)
}

type studyUsecase struct {
	log          *logrus.Logger
	archive      repository.ArchiveRepository
	directory    DirectoryUsecase
	schema       service.FilterSchemaService
	errorHandler service.HTTPErrorHandler
	indicator    service.LoadingIndicator
	audit        service.AuditService
	sessions     *cache.Cache
}

func NewStudyUsecase(
	log *logrus.Logger,
	archive repository.ArchiveRepository,
	directory DirectoryUsecase,
	schema service.FilterSchemaService,
	errorHandler service.HTTPErrorHandler,
	indicator service.LoadingIndicator,
	audit service.AuditService,
	sessions *cache.Cache,
) StudyUsecase {
	return &studyUsecase{
		log:          log,
		archive:      archive,
		directory:    directory,
		schema:       schema,
		errorHandler: errorHandler,
		indicator:    indicator,
		audit:        audit,
		sessions:     sessions,
	}
}

func (u *studyUsecase) GetPage(ctx context.Context) (*dto.StudyPageResponse, error) {
	s, _, err := u.session(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return u.pageResponse(s), nil
}

// Navigate activates tab, loads the AE directory once per session and rebuilds the
// filter schema.
func (u *studyUsecase) Navigate(ctx context.Context, tab entity.Tab) (*dto.StudyPageResponse, error) {
	if !tab.IsValid() {
		return nil, ErrInvalidTab
	}
	s, principal, err := u.session(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.resetNotices()
	if s.config.Tab != tab {
		aet := s.filter.Aet
		s.config.Tab = tab
		s.filter = entity.DefaultFilterModel(tab)
		s.filter.Aet = aet
		s.quantityText = entity.DefaultQuantityText()
		s.clearResults()
	}
	loaded := s.entities.AetsAreSet
	s.mu.Unlock()

	if loaded {
		s.mu.Lock()
		defer s.mu.Unlock()
		u.setSchema(s)
		return u.pageResponse(s), nil
	}

	entities, loadErr := u.directory.Load(ctx, principal.Roles)

	s.mu.Lock()
	defer s.mu.Unlock()
	if loadErr != nil {
		u.log.Warnf("Failed to get application entities for session %s: %+v", principal.SessionID, loadErr)
		s.ShowError(MsgErrorGettingAets)
		return nil, loadErr
	}
	if !s.entities.AetsAreSet {
		s.entities = entities
	}
	u.setSchema(s)
	return u.pageResponse(s), nil
}

func (u *studyUsecase) ChangeAccessLocation(ctx context.Context, location entity.AccessLocation) (*dto.StudyPageResponse, error) {
	if !location.IsValid() {
		return nil, ErrInvalidAccessLocation
	}
	s, _, err := u.session(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetNotices()
	s.config.AccessLocation = location
	u.setSchema(s)
	return u.pageResponse(s), nil
}

func (u *studyUsecase) UpdateFilter(ctx context.Context, req *dto.FilterRequest) (*dto.StudyPageResponse, error) {
	s, _, err := u.session(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetNotices()
	s.filter = converter.FilterRequestToModel(s.config.Tab, req)
	return u.pageResponse(s), nil
}

func (u *studyUsecase) Search(ctx context.Context) (*dto.StudyPageResponse, error) {
	s, principal, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	return u.search(ctx, s, principal, false)
}

// NextPage searches again past the rows already shown; the new rows are appended.
// The session offset only moves once the archive answered.
func (u *studyUsecase) NextPage(ctx context.Context) (*dto.StudyPageResponse, error) {
	s, principal, err := u.session(ctx)
	if err != nil {
		return nil, err
	}
	return u.search(ctx, s, principal, true)
}

func (u *studyUsecase) ClearResults(ctx context.Context) (*dto.StudyPageResponse, error) {
	s, _, err := u.session(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetNotices()
	s.clearResults()
	s.filter.Offset = 0
	return u.pageResponse(s), nil
}

func (u *studyUsecase) ToggleExpand(ctx context.Context) (*dto.StudyPageResponse, error) {
	s, _, err := u.session(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ToggleExpand()
	return u.pageResponse(s), nil
}

func (u *studyUsecase) Scroll(ctx context.Context, position int) (*dto.StudyPageResponse, error) {
	s, _, err := u.session(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Scroll(position)
	return u.pageResponse(s), nil
}

func (u *studyUsecase) Count(ctx context.Context) (*dto.QuantityResponse, error) {
	s, _, err := u.session(ctx)
	if err != nil {
		return nil, err
	}

	tab, callingAet, query, err := u.quantityQuery(s)
	if err != nil {
		return nil, err
	}

	count, err := u.archive.CountStudies(ctx, tab, callingAet, query.Params())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		u.log.Warnf("Failed to count %s: %+v", tab.Resource(), err)
		u.errorHandler.HandleError(s, err)
		return nil, fmt.Errorf("%w: %w", ErrArchiveQueryFailed, err)
	}

	text := strconv.FormatInt(count, 10) + " " + tab.Resource()
	s.quantityText.Count = text
	u.setSchema(s)
	return &dto.QuantityResponse{Quantity: "count", Value: count, Text: text}, nil
}

func (u *studyUsecase) Size(ctx context.Context) (*dto.QuantityResponse, error) {
	s, _, err := u.session(ctx)
	if err != nil {
		return nil, err
	}

	tab, callingAet, query, err := u.quantityQuery(s)
	if err != nil {
		return nil, err
	}
	if tab != entity.TabStudy {
		return nil, ErrSizeNotSupported
	}

	size, err := u.archive.GetStudiesSize(ctx, callingAet, query.Params())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		u.log.Warnf("Failed to get studies size: %+v", err)
		u.errorHandler.HandleError(s, err)
		return nil, fmt.Errorf("%w: %w", ErrArchiveQueryFailed, err)
	}

	text := service.FormatSize(size)
	s.quantityText.Size = text
	u.setSchema(s)
	return &dto.QuantityResponse{Quantity: "size", Value: size, Text: text}, nil
}

// quantityQuery prepares the filter of a count or size query; paging does not apply.
func (u *studyUsecase) quantityQuery(s *studySession) (entity.Tab, entity.Aet, entity.FilterModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetNotices()

	if s.filter.Aet == "" {
		s.ShowError(MsgCallingAetMissing)
		return "", entity.Aet{}, entity.FilterModel{}, ErrCallingAetMissing
	}

	query := s.filter.Clone()
	callingAet := entity.NewAet(query.Aet)
	query.Aet = ""
	query.Limit = 0
	query.Offset = 0
	query.OrderBy = ""
	return s.config.Tab, callingAet, query, nil
}

// search queries the page at the session offset, or the following page when next is
// set.
func (u *studyUsecase) search(ctx context.Context, s *studySession, principal middleware.Principal, next bool) (*dto.StudyPageResponse, error) {
	s.mu.Lock()
	if next && (!s.moreStudies || s.filter.Limit <= 0) {
		s.mu.Unlock()
		return nil, ErrNoMoreStudies
	}
	s.resetNotices()
	if s.filter.Aet == "" {
		s.ShowError(MsgCallingAetMissing)
		s.mu.Unlock()
		return nil, ErrCallingAetMissing
	}
	filter := s.filter.Clone()
	if next {
		filter.Offset += filter.Limit
	}
	tab := s.config.Tab
	attributeFilter := s.attributeFilter
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	audit := service.QueryAudit{
		UserID:     principal.UserID,
		CallingAET: filter.Aet,
		Tab:        tab,
		Filter:     filter,
	}

	if attributeFilter == nil {
		af, err := u.archive.GetAttributeFilter(ctx, patientAttributeFilter)
		if err != nil {
			u.log.Warnf("Something went wrong on getting Patient Attributes: %+v", err)
			s.mu.Lock()
			u.errorHandler.HandleError(s, err)
			s.mu.Unlock()
			searchErr := fmt.Errorf("%w: %w", ErrArchiveQueryFailed, err)
			audit.Outcome = entity.QueryOutcomeFailure
			audit.Detail = searchErr.Error()
			u.logQuery(ctx, principal, audit)
			return nil, searchErr
		}
		attributeFilter = af
		s.mu.Lock()
		s.attributeFilter = af
		s.mu.Unlock()
	}
	patientTags := entity.PatientTags(attributeFilter)

	// ask for one row more than shown to learn whether another page exists
	query := filter.Clone()
	if query.Limit > 0 {
		query.Limit++
	}
	callingAet := entity.NewAet(query.Aet)
	query.Aet = ""

	started := time.Now()
	u.indicator.Start(string(tab))
	rows, err := u.archive.GetStudies(ctx, tab, callingAet, query.Params())

	resp, outcome, searchErr := u.applySearchResult(s, generation, filter, patientTags, rows, err)
	u.indicator.Complete(string(tab), outcome, started)

	audit.Outcome = outcome
	if resp != nil {
		audit.MoreResults = resp.MoreStudies
	}
	audit.ResultCount = len(rows)
	if searchErr != nil {
		audit.Detail = searchErr.Error()
	}
	u.logQuery(ctx, principal, audit)

	return resp, searchErr
}

func (u *studyUsecase) logQuery(ctx context.Context, principal middleware.Principal, audit service.QueryAudit) {
	if err := u.audit.LogQuery(ctx, audit); err != nil {
		u.log.Warnf("Failed to audit query of session %s: %+v", principal.SessionID, err)
	}
}

// applySearchResult merges an archive answer into the session, unless a newer search
// was started in the meantime.
func (u *studyUsecase) applySearchResult(
	s *studySession,
	generation uint64,
	filter entity.FilterModel,
	patientTags []string,
	rows []entity.Attributes,
	err error,
) (*dto.StudyPageResponse, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		u.log.Infof("Discarding stale search response: generation=%d, latest=%d", generation, s.generation)
		return nil, entity.QueryOutcomeStale, ErrStaleSearch
	}

	if err != nil {
		u.log.WithFields(logrus.Fields{
			"tab":    filter.Tab,
			"aet":    filter.Aet,
			"offset": filter.Offset,
			"limit":  filter.Limit,
		}).Warnf("Something went wrong on search: %+v", err)
		u.errorHandler.HandleError(s, err)
		return nil, entity.QueryOutcomeFailure, fmt.Errorf("%w: %w", ErrArchiveQueryFailed, err)
	}

	if len(rows) == 0 {
		s.ShowMsg(MsgNoStudiesFound)
		s.moreStudies = false
		return u.pageResponse(s), entity.QueryOutcomeEmpty, nil
	}

	patients, more := groupStudies(rows, patientTags, filter.Offset, filter.Limit)
	s.patients = append(s.patients, patients...)
	s.moreStudies = more
	s.filter.Offset = filter.Offset
	return u.pageResponse(s), entity.QueryOutcomeSuccess, nil
}

// session returns the caller's study page, creating it on first use. Every access
// extends its lifetime.
func (u *studyUsecase) session(ctx context.Context) (*studySession, middleware.Principal, error) {
	principal, ok := middleware.GetPrincipalFromContext(ctx)
	if !ok {
		return nil, principal, ErrPrincipalMissing
	}

	if v, found := u.sessions.Get(principal.SessionID); found {
		s := v.(*studySession)
		u.sessions.SetDefault(principal.SessionID, s)
		return s, principal, nil
	}

	s := newStudySession()
	if err := u.sessions.Add(principal.SessionID, s, cache.DefaultExpiration); err != nil {
		// created concurrently by another request
		if v, found := u.sessions.Get(principal.SessionID); found {
			return v.(*studySession), principal, nil
		}
		u.sessions.SetDefault(principal.SessionID, s)
	}
	return s, principal, nil
}

// setSchema rebuilds both filter panels; callers hold s.mu.
func (u *studyUsecase) setSchema(s *studySession) {
	aes := s.entities.Aes[s.config.AccessLocation]
	s.schemaMain = u.schema.GetFilterSchema(s.config.Tab, aes, s.quantityText, false)
	s.schemaExpand = u.schema.GetFilterSchema(s.config.Tab, aes, s.quantityText, true)
}

// pageResponse snapshots the session; callers hold s.mu.
func (u *studyUsecase) pageResponse(s *studySession) *dto.StudyPageResponse {
	notices := make([]entity.Notification, len(s.notices))
	copy(notices, s.notices)

	return &dto.StudyPageResponse{
		Tab:                 s.config.Tab,
		AccessLocation:      s.config.AccessLocation,
		FilterModel:         s.filter,
		FilterSchemaMain:    s.schemaMain,
		FilterSchemaExpand:  s.schemaExpand,
		QuantityText:        s.quantityText,
		ApplicationEntities: s.entities,
		Patients:            converter.PatientsToResponses(s.patients),
		MoreStudies:         s.moreStudies,
		View:                s.view,
		Messages:            notices,
	}
}
