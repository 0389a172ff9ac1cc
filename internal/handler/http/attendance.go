package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type AttendanceHandler interface {
	Ingest(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	ingestService attendance.IngestService
}

func NewAttendanceHandler(ingestService attendance.IngestService) AttendanceHandler {
	return &attendanceHandlerImpl{
		ingestService: ingestService,
	}
}

// Ingest handles POST /events
func (h *attendanceHandlerImpl) Ingest(w http.ResponseWriter, r *http.Request) {
	var req attendance.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Failed to decode clock event", "error", err)
		response.Reject(w, response.Rejection{
			Reason:  response.ReasonBadRequest,
			Message: "Invalid request body",
		})
		return
	}

	result, err := h.ingestService.Ingest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !result.Resolved {
		response.Accepted(w, "Clock event stored, employee not in directory", result)
		return
	}
	response.Created(w, "Clock event recorded", result)
}
