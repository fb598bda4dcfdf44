package usecase

import (
	"sync"
	"time"

	"pacs-study-browser/internal/domain/entity"

	"github.com/patrickmn/go-cache"
)

// NewSessionStore creates the store holding one studySession per principal session.
// Sessions expire after ttl without access; a cleanupInterval of zero disables the
// background janitor.
func NewSessionStore(ttl, cleanupInterval time.Duration) *cache.Cache {
	return cache.New(ttl, cleanupInterval)
}

// studySession is the state of one open study page.
type studySession struct {
	mu sync.Mutex

	config          entity.StudyPageConfig
	filter          entity.FilterModel
	schemaMain      entity.FilterSchema
	schemaExpand    entity.FilterSchema
	quantityText    entity.QuantityText
	entities        entity.ApplicationEntities
	attributeFilter *entity.AttributeFilter
	patients        []*entity.Patient
	moreStudies     bool
	view            entity.ViewState
	notices         []entity.Notification

	// generation identifies the latest search; older responses are discarded
	generation uint64
}

func newStudySession() *studySession {
	return &studySession{
		config: entity.StudyPageConfig{
			Tab:            entity.TabStudy,
			AccessLocation: entity.AccessLocationInternal,
		},
		filter:       entity.DefaultFilterModel(entity.TabStudy),
		schemaMain:   entity.FilterSchema{Schema: []entity.FilterField{}},
		schemaExpand: entity.FilterSchema{Schema: []entity.FilterField{}},
		quantityText: entity.DefaultQuantityText(),
		entities:     entity.NewApplicationEntities(),
		view:         entity.NewViewState(),
	}
}

func (s *studySession) ShowMsg(text string) {
	s.notices = append(s.notices, entity.Notification{Level: entity.NotificationInfo, Text: text})
}

func (s *studySession) ShowError(text string) {
	s.notices = append(s.notices, entity.Notification{Level: entity.NotificationError, Text: text})
}

func (s *studySession) resetNotices() {
	s.notices = nil
}

func (s *studySession) clearResults() {
	s.patients = nil
	s.moreStudies = false
}
