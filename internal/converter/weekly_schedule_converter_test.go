package converter

import (
	"testing"
	"time"

	"dental-scheduling/internal/delivery/dto"
	"dental-scheduling/internal/domain/entity"
	"dental-scheduling/internal/domain/scheduling"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fallback = scheduling.NewWeekdayFallbackPolicy(scheduling.MustParseTimeOfDay("08:00"), scheduling.MustParseTimeOfDay("17:00"))

func TestWeeklyScheduleRequestToEntity_ClosesMissingDays(t *testing.T) {
	doctorID := uuid.New()
	req := &dto.WeeklyScheduleRequest{Days: map[string]dto.DayScheduleRequest{
		"monday": {IsAvailable: true, StartTime: "09:00", EndTime: "13:00"},
		"friday": {IsAvailable: false, StartTime: "09:00", EndTime: "10:00"},
	}}

	ws := WeeklyScheduleRequestToEntity(doctorID, req)

	assert.Equal(t, doctorID, ws.DoctorID)
	require.Len(t, ws.Days, 7)
	assert.Equal(t, entity.DaySchedule{IsAvailable: true, StartTime: "09:00", EndTime: "13:00"}, ws.Days["monday"])
	assert.Equal(t, entity.DaySchedule{}, ws.Days["friday"], "hours of a closed day are dropped")
	assert.False(t, ws.Days["tuesday"].IsAvailable)
}

func TestWeeklyScheduleRequestToEntity_KeepsUnknownKeysForValidation(t *testing.T) {
	req := &dto.WeeklyScheduleRequest{Days: map[string]dto.DayScheduleRequest{"funday": {IsAvailable: true}}}

	ws := WeeklyScheduleRequestToEntity(uuid.New(), req)
	_, ok := ws.Days["funday"]
	assert.True(t, ok)
}

func TestWeeklyScheduleToResponse(t *testing.T) {
	updatedAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	ws := &entity.WeeklySchedule{
		DoctorID:  uuid.New(),
		Days:      entity.WeeklyDays{"monday": {IsAvailable: true, StartTime: "10:00", EndTime: "12:00"}},
		UpdatedAt: updatedAt,
	}

	resp := WeeklyScheduleToResponse(ws, fallback)

	require.Len(t, resp.Days, 7)
	assert.Equal(t, "10:00", resp.Days["monday"].StartTime)
	assert.Equal(t, "08:00", resp.Days["tuesday"].StartTime, "missing weekday shown with fallback hours")
	assert.False(t, resp.Days["sunday"].IsAvailable)
	assert.False(t, resp.IsDefault)
	assert.Equal(t, &updatedAt, resp.UpdatedAt)

	assert.Nil(t, WeeklyScheduleToResponse(nil, fallback))
}

func TestFallbackScheduleToResponse(t *testing.T) {
	resp := FallbackScheduleToResponse(uuid.New(), fallback)

	assert.True(t, resp.IsDefault)
	assert.Equal(t, scheduling.WeekdayFallbackPolicyName, resp.FallbackPolicy)
	assert.Equal(t, dto.DayScheduleResponse{IsAvailable: true, StartTime: "08:00", EndTime: "17:00"}, resp.Days["wednesday"])
	assert.Equal(t, dto.DayScheduleResponse{IsAvailable: false}, resp.Days["saturday"])
	assert.Nil(t, resp.UpdatedAt)
}
