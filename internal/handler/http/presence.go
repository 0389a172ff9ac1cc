package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/presence"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type PresenceHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
}

type presenceHandlerImpl struct {
	presenceService presence.PresenceService
}

func NewPresenceHandler(presenceService presence.PresenceService) PresenceHandler {
	return &presenceHandlerImpl{presenceService: presenceService}
}

// Get handles GET /presence
func (h *presenceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.presenceService.Query(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
