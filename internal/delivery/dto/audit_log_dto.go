package dto

import (
	"pacs-study-browser/internal/domain/entity"
	"time"

	"github.com/google/uuid"
)

// Response DTOs

type QueryAuditLogResponse struct {
	ID          uuid.UUID   `json:"id"`
	UserID      string      `json:"user_id"`
	CallingAET  string      `json:"calling_aet"`
	Tab         string      `json:"tab"`
	Filter      entity.JSON `json:"filter"`
	ResultCount int         `json:"result_count"`
	MoreResults bool        `json:"more_results"`
	Outcome     string      `json:"outcome"`
	Detail      string      `json:"detail,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type QueryAuditLogListResponse struct {
	Logs  []QueryAuditLogResponse `json:"logs"`
	Total int64                   `json:"total"`
}
