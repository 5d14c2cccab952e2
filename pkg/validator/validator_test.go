package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dayRequest struct {
	IsAvailable bool   `json:"is_available"`
	StartTime   string `json:"start_time" validate:"required_if=IsAvailable true,omitempty,hhmm"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Status      string `json:"status" validate:"omitempty,oneof=scheduled cancelled"`
}

func TestCustomValidator_HHMM(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(dayRequest{IsAvailable: true, StartTime: "08:30"}))
	assert.NoError(t, v.Validate(dayRequest{IsAvailable: false}))

	for _, bad := range []string{"8h30", "8:30", "08:30:00", "24:00"} {
		err := v.Validate(dayRequest{IsAvailable: true, StartTime: bad})
		require.Error(t, err, bad)
		assert.Equal(t, "StartTime must be a time in HH:MM format", v.FormatValidationErrors(err)["StartTime"])
	}

	err := v.Validate(dayRequest{IsAvailable: true})
	require.Error(t, err)
	assert.Equal(t, "StartTime is required", v.FormatValidationErrors(err)["StartTime"])
}

func TestCustomValidator_FormatValidationErrors(t *testing.T) {
	v := NewValidator()

	err := v.Validate(dayRequest{Date: "19/10/2026", Status: "booked"})
	require.Error(t, err)

	msgs := v.FormatValidationErrors(err)
	assert.Equal(t, "Date must match the format 2006-01-02", msgs["Date"])
	assert.Equal(t, "Status must be one of: scheduled cancelled", msgs["Status"])
}
