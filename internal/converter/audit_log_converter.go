package converter

import (
	"dental-scheduling/internal/delivery/dto"
	"dental-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// AuditLogToResponse converts a AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		ID:        log.ID,
		User:      UserToResponse(log.User),
		Action:    log.Action,
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt,
	}
}

// AuditLogsToResponses converts a slice of AuditLog entities to slice of AuditLogResponse DTOs
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return responses
}

// AuditLogListRequestToFilter converts validated query parameters to a domain filter
func AuditLogListRequestToFilter(req *dto.AuditLogListRequest) entity.AuditLogFilter {
	filter := entity.AuditLogFilter{
		Action: req.Action,
		Limit:  req.Limit,
	}
	if id, err := uuid.Parse(req.UserID); err == nil {
		filter.UserID = &id
	}
	return filter
}
