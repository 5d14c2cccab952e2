package usecase

import (
	"context"
	"errors"
	"time"

	"dental-scheduling/internal/delivery/http/middleware"
	"dental-scheduling/internal/domain/scheduling"

	"github.com/google/uuid"
)

var ErrUnauthenticated = errors.New("user not found in context")

// SchedulingOptions are the clinic-wide rules shared by the scheduling use cases
type SchedulingOptions struct {
	Location               *time.Location
	Bounds                 scheduling.ClinicBounds
	Fallback               scheduling.FallbackPolicy
	GranularityMinutes     int
	DefaultDurationMinutes int
	// Now is overridden in tests
	Now func() time.Time
}

func (o SchedulingOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o SchedulingOptions) now() time.Time {
	if o.Now != nil {
		return o.Now().In(o.location())
	}
	return time.Now().In(o.location())
}

// parseDate reads a YYYY-MM-DD date as midnight in the clinic time zone
func (o SchedulingOptions) parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, o.location())
}

func (o SchedulingOptions) today() time.Time {
	now := o.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, o.location())
}

// actor identifies the authenticated caller
type actor struct {
	UserID uuid.UUID
	RoleID int
}

func actorFromContext(ctx context.Context) (actor, error) {
	caller, ok := middleware.CallerFromContext(ctx)
	if !ok {
		return actor{}, ErrUnauthenticated
	}
	return actor{UserID: caller.UserID, RoleID: caller.RoleID}, nil
}
