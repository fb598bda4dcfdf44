package usecase

import (
	"context"
	"io"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pacs-study-browser/config"
	"pacs-study-browser/internal/delivery/http/middleware"
	"pacs-study-browser/internal/domain/entity"
	"pacs-study-browser/internal/service"

	"github.com/sirupsen/logrus"
)

type studiesCall struct {
	Tab        entity.Tab
	CallingAet entity.Aet
	Params     url.Values
}

// fakeArchive is an in-memory ArchiveRepository. Unset funcs return empty results.
type fakeArchive struct {
	mu          sync.Mutex
	studyCalls  []studiesCall
	aesCalls    atomic.Int32
	aetsCalls   atomic.Int32
	filterCalls atomic.Int32

	studies         func(call studiesCall) ([]entity.Attributes, error)
	count           func(params url.Values) (int64, error)
	size            func(params url.Values) (int64, error)
	aes             func() ([]entity.Aet, error)
	aets            func() ([]entity.Aet, error)
	attributeFilter *entity.AttributeFilter
	filterErr       error
}

func (f *fakeArchive) GetStudies(ctx context.Context, tab entity.Tab, callingAet entity.Aet, params url.Values) ([]entity.Attributes, error) {
	call := studiesCall{Tab: tab, CallingAet: callingAet, Params: params}
	f.mu.Lock()
	f.studyCalls = append(f.studyCalls, call)
	f.mu.Unlock()
	if f.studies == nil {
		return nil, nil
	}
	return f.studies(call)
}

func (f *fakeArchive) CountStudies(ctx context.Context, tab entity.Tab, callingAet entity.Aet, params url.Values) (int64, error) {
	if f.count == nil {
		return 0, nil
	}
	return f.count(params)
}

func (f *fakeArchive) GetStudiesSize(ctx context.Context, callingAet entity.Aet, params url.Values) (int64, error) {
	if f.size == nil {
		return 0, nil
	}
	return f.size(params)
}

func (f *fakeArchive) GetAes(ctx context.Context) ([]entity.Aet, error) {
	f.aesCalls.Add(1)
	if f.aes == nil {
		return nil, nil
	}
	return f.aes()
}

func (f *fakeArchive) GetAets(ctx context.Context) ([]entity.Aet, error) {
	f.aetsCalls.Add(1)
	if f.aets == nil {
		return nil, nil
	}
	return f.aets()
}

func (f *fakeArchive) GetAttributeFilter(ctx context.Context, entityName string) (*entity.AttributeFilter, error) {
	f.filterCalls.Add(1)
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	if f.attributeFilter == nil {
		return &entity.AttributeFilter{DcmTag: []string{entity.TagPatientName, entity.TagPatientID}}, nil
	}
	return f.attributeFilter, nil
}

func (f *fakeArchive) calls() []studiesCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]studiesCall, len(f.studyCalls))
	copy(out, f.studyCalls)
	return out
}

// memoryCache is a DirectoryCache held in memory.
type memoryCache struct {
	mu      sync.Mutex
	listing *entity.DirectoryListing
	sets    int
}

func (c *memoryCache) Get(ctx context.Context) (*entity.DirectoryListing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listing, nil
}

func (c *memoryCache) Set(ctx context.Context, listing *entity.DirectoryListing, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listing = listing
	c.sets++
	return nil
}

// recordingIndicator counts loading indicator transitions.
type recordingIndicator struct {
	mu        sync.Mutex
	started   int
	completed []string
}

func (r *recordingIndicator) Start(tab string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recordingIndicator) Complete(tab, outcome string, started time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, outcome)
}

func (r *recordingIndicator) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.completed...)
}

// recordingAudit collects audited queries.
type recordingAudit struct {
	mu      sync.Mutex
	entries []service.QueryAudit
}

func (r *recordingAudit) LogQuery(ctx context.Context, audit service.QueryAudit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, audit)
	return nil
}

func (r *recordingAudit) all() []service.QueryAudit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]service.QueryAudit(nil), r.entries...)
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type testEnv struct {
	archive   *fakeArchive
	indicator *recordingIndicator
	audit     *recordingAudit
	directory DirectoryUsecase
	studies   StudyUsecase
}

func newTestEnv(t *testing.T, archive *fakeArchive) *testEnv {
	t.Helper()
	log := newTestLogger()
	env := &testEnv{
		archive:   archive,
		indicator: &recordingIndicator{},
		audit:     &recordingAudit{},
	}
	permission := service.NewPermissionService(config.UIConfig{})
	env.directory = NewDirectoryUsecase(log, archive, nil, time.Minute, permission, nil)
	env.studies = NewStudyUsecase(
		log,
		archive,
		env.directory,
		service.NewFilterSchemaService(),
		service.NewHTTPErrorHandler(log),
		env.indicator,
		env.audit,
		NewSessionStore(time.Hour, 0),
	)
	return env
}

func sessionContext(sessionID string) context.Context {
	return middleware.WithPrincipal(context.Background(), middleware.Principal{
		SessionID: sessionID,
		UserID:    "user-" + sessionID,
	})
}

// studyRow builds a result row of a patient identified by patientID.
func studyRow(patientID, studyUID string) entity.Attributes {
	return entity.Attributes{
		entity.TagSpecificCharacterSet: {VR: "CS", Value: []interface{}{"ISO_IR 100"}},
		entity.TagPatientName:          {VR: "PN", Value: []interface{}{map[string]interface{}{"Alphabetic": "PATIENT^" + patientID}}},
		entity.TagPatientID:            {VR: "LO", Value: []interface{}{patientID}},
		entity.TagStudyInstanceUID:     {VR: "UI", Value: []interface{}{studyUID}},
	}
}
