package repository

import (
	"errors"

	"pacs-study-browser/internal/domain/entity"
	domainRepo "pacs-study-browser/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type queryAuditLogRepository struct{}

func NewQueryAuditLogRepository() domainRepo.QueryAuditLogRepository {
	return &queryAuditLogRepository{}
}

func (r *queryAuditLogRepository) Create(db *gorm.DB, log *entity.QueryAuditLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	return db.Create(log).Error
}

func (r *queryAuditLogRepository) FindAll(db *gorm.DB, limit, offset int) ([]entity.QueryAuditLog, int64, error) {
	var logs []entity.QueryAuditLog
	var total int64

	if err := db.Model(&entity.QueryAuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *queryAuditLogRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.QueryAuditLog, error) {
	var log entity.QueryAuditLog
	err := db.Where("id = ?", id).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}
