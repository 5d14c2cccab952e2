package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"dental-scheduling/internal/delivery/dto"
	"dental-scheduling/internal/usecase"
	"dental-scheduling/pkg/response"
	"dental-scheduling/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type WeeklyScheduleHandler struct {
	scheduleUsecase usecase.WeeklyScheduleUsecase
	validator       *validator.CustomValidator
}

func NewWeeklyScheduleHandler(scheduleUsecase usecase.WeeklyScheduleUsecase, validator *validator.CustomValidator) *WeeklyScheduleHandler {
	return &WeeklyScheduleHandler{
		scheduleUsecase: scheduleUsecase,
		validator:       validator,
	}
}

func (h *WeeklyScheduleHandler) GetWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	schedule, err := h.scheduleUsecase.GetWeeklySchedule(r.Context(), doctorID)
	if err != nil {
		h.writeError(w, err, "Failed to get weekly schedule")
		return
	}

	response.Success(w, http.StatusOK, "Weekly schedule retrieved successfully", schedule)
}

func (h *WeeklyScheduleHandler) PreviewScheduleChange(w http.ResponseWriter, r *http.Request) {
	doctorID, req, ok := h.decode(w, r)
	if !ok {
		return
	}

	preview, err := h.scheduleUsecase.PreviewScheduleChange(r.Context(), doctorID, req)
	if err != nil {
		h.writeError(w, err, "Failed to preview schedule change")
		return
	}

	response.Success(w, http.StatusOK, "Schedule change preview", preview)
}

func (h *WeeklyScheduleHandler) SaveWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, req, ok := h.decode(w, r)
	if !ok {
		return
	}

	saved, err := h.scheduleUsecase.SaveWeeklySchedule(r.Context(), doctorID, req)
	if err != nil {
		h.writeError(w, err, "Failed to save weekly schedule")
		return
	}

	response.Success(w, http.StatusOK, "Weekly schedule saved successfully", saved)
}

func (h *WeeklyScheduleHandler) decode(w http.ResponseWriter, r *http.Request) (uuid.UUID, *dto.WeeklyScheduleRequest, bool) {
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return uuid.Nil, nil, false
	}

	var req dto.WeeklyScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return uuid.Nil, nil, false
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return uuid.Nil, nil, false
	}

	return doctorID, &req, true
}

func (h *WeeklyScheduleHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	var conflictErr *usecase.ScheduleConflictError
	switch {
	case errors.As(err, &conflictErr):
		response.Conflict(w, "Schedule change conflicts with booked appointments; resend with force=true to apply anyway", conflictErr.Conflicts)
	case errors.Is(err, usecase.ErrInvalidSchedule):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrScheduleForbidden):
		response.Forbidden(w, "You can only change your own schedule")
	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "")
	default:
		response.InternalServerError(w, fallback)
	}
}
