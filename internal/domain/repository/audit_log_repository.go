package repository

import (
	"pacs-study-browser/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QueryAuditLogRepository interface {
	Create(db *gorm.DB, log *entity.QueryAuditLog) error
	FindAll(db *gorm.DB, limit, offset int) ([]entity.QueryAuditLog, int64, error)
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.QueryAuditLog, error)
}
