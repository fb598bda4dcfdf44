package service

import (
	"context"
	"encoding/json"

	"pacs-study-browser/internal/domain/entity"
	"pacs-study-browser/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// QueryAudit describes a finished archive query.
type QueryAudit struct {
	UserID      string
	CallingAET  string
	Tab         entity.Tab
	Filter      entity.FilterModel
	ResultCount int
	MoreResults bool
	Outcome     string
	Detail      string
}

type AuditService interface {
	LogQuery(ctx context.Context, audit QueryAudit) error
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.QueryAuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.QueryAuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogQuery writes a query audit record
func (s *auditService) LogQuery(ctx context.Context, audit QueryAudit) error {
	auditLog := &entity.QueryAuditLog{
		UserID:      audit.UserID,
		CallingAET:  audit.CallingAET,
		Tab:         string(audit.Tab),
		Filter:      filterToJSON(audit.Filter),
		ResultCount: audit.ResultCount,
		MoreResults: audit.MoreResults,
		Outcome:     audit.Outcome,
		Detail:      audit.Detail,
	}

	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create query audit log: %+v", err)
		return err
	}

	return nil
}

func filterToJSON(filter entity.FilterModel) entity.JSON {
	data, err := json.Marshal(filter)
	if err != nil {
		return nil
	}
	out := entity.JSON{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

type nopAuditService struct{}

// NewNopAuditService returns an AuditService that records nothing, for runs without
// a database such as the command line search.
func NewNopAuditService() AuditService {
	return nopAuditService{}
}

func (nopAuditService) LogQuery(context.Context, QueryAudit) error {
	return nil
}
