package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dental-scheduling/internal/delivery/dto"
	"dental-scheduling/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func newJSONRequest(t *testing.T, method, target string, body interface{}, vars map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var res response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

// =============================================================================
// Usecase stubs
// =============================================================================

type stubScheduleUsecase struct {
	err      error
	saved    *dto.SaveWeeklyScheduleResponse
	lastReq  *dto.WeeklyScheduleRequest
	doctorID uuid.UUID
}

func (s *stubScheduleUsecase) GetWeeklySchedule(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error) {
	s.doctorID = doctorID
	if s.err != nil {
		return nil, s.err
	}
	return &dto.WeeklyScheduleResponse{DoctorID: doctorID, IsDefault: true}, nil
}

func (s *stubScheduleUsecase) PreviewScheduleChange(ctx context.Context, doctorID uuid.UUID, req *dto.WeeklyScheduleRequest) (*dto.SchedulePreviewResponse, error) {
	s.doctorID, s.lastReq = doctorID, req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SchedulePreviewResponse{Conflicts: []dto.ScheduleConflictResponse{}}, nil
}

func (s *stubScheduleUsecase) SaveWeeklySchedule(ctx context.Context, doctorID uuid.UUID, req *dto.WeeklyScheduleRequest) (*dto.SaveWeeklyScheduleResponse, error) {
	s.doctorID, s.lastReq = doctorID, req
	if s.err != nil {
		return nil, s.err
	}
	return s.saved, nil
}

type stubAppointmentUsecase struct {
	err        error
	lastCreate *dto.CreateAppointmentRequest
	lastSlots  *dto.SlotListRequest
	lastList   *dto.AppointmentListRequest
}

func (s *stubAppointmentUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, req *dto.SlotListRequest) (*dto.SlotListResponse, error) {
	s.lastSlots = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SlotListResponse{DoctorID: doctorID, Date: req.Date, Slots: []dto.SlotResponse{}}, nil
}

func (s *stubAppointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	s.lastCreate = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: uuid.New(), DoctorID: req.DoctorID, Date: req.Date, StartTime: req.StartTime}, nil
}

func (s *stubAppointmentUsecase) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: appointmentID}, nil
}

func (s *stubAppointmentUsecase) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error) {
	s.lastList = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentListResponse{Appointments: []dto.AppointmentResponse{}}, nil
}

func (s *stubAppointmentUsecase) UpdateAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: appointmentID, Status: req.Status}, nil
}

func (s *stubAppointmentUsecase) CancelAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: appointmentID, Status: "cancelled"}, nil
}
