package entity

import "github.com/google/uuid"

// AuditLogFilter narrows audit log listings. Zero values are ignored.
type AuditLogFilter struct {
	Action string
	UserID *uuid.UUID
	Limit  int
}
