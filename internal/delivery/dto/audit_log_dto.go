package dto

import (
	"time"

	"dental-scheduling/internal/domain/entity"
)

// Request DTOs

type AuditLogListRequest struct {
	Action string `validate:"omitempty,max=100"`
	UserID string `validate:"omitempty,uuid"`
	Limit  int    `validate:"omitempty,min=1,max=500"`
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64         `json:"id"`
	User      *UserResponse `json:"user,omitempty"`
	Action    string        `json:"action"`
	Metadata  entity.JSON   `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
