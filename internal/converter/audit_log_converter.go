package converter

import (
	"pacs-study-browser/internal/delivery/dto"
	"pacs-study-browser/internal/domain/entity"
)

// QueryAuditLogToResponse converts a QueryAuditLog entity to QueryAuditLogResponse DTO
func QueryAuditLogToResponse(log *entity.QueryAuditLog) *dto.QueryAuditLogResponse {
	if log == nil {
		return nil
	}

	return &dto.QueryAuditLogResponse{
		ID:          log.ID,
		UserID:      log.UserID,
		CallingAET:  log.CallingAET,
		Tab:         log.Tab,
		Filter:      log.Filter,
		ResultCount: log.ResultCount,
		MoreResults: log.MoreResults,
		Outcome:     log.Outcome,
		Detail:      log.Detail,
		CreatedAt:   log.CreatedAt,
	}
}

// QueryAuditLogsToResponses converts a slice of QueryAuditLog entities to DTOs
func QueryAuditLogsToResponses(logs []entity.QueryAuditLog) []dto.QueryAuditLogResponse {
	responses := make([]dto.QueryAuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *QueryAuditLogToResponse(&logs[i])
	}
	return responses
}
