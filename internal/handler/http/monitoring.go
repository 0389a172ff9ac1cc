package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

// DeviceMonitor controls the event stream from the access-control reader.
type DeviceMonitor interface {
	Start()
	Stop()
	Connected() bool
	Monitoring() bool
}

// DeviceProber checks that the reader answers.
type DeviceProber interface {
	TestConnection(ctx context.Context) error
}

type MonitoringHandler interface {
	Status(w http.ResponseWriter, r *http.Request)
	Start(w http.ResponseWriter, r *http.Request)
	Stop(w http.ResponseWriter, r *http.Request)
	TestDevice(w http.ResponseWriter, r *http.Request)
}

type MonitoringStatus struct {
	Connected  bool `json:"connected"`
	Monitoring bool `json:"monitoring"`
}

type monitoringHandlerImpl struct {
	monitor DeviceMonitor
	prober  DeviceProber
}

// NewMonitoringHandler accepts nil collaborators when no reader is configured;
// the endpoints then answer 503.
func NewMonitoringHandler(monitor DeviceMonitor, prober DeviceProber) MonitoringHandler {
	return &monitoringHandlerImpl{monitor: monitor, prober: prober}
}

func (h *monitoringHandlerImpl) status() MonitoringStatus {
	return MonitoringStatus{
		Connected:  h.monitor.Connected(),
		Monitoring: h.monitor.Monitoring(),
	}
}

func noDevice(w http.ResponseWriter) {
	response.Reject(w, response.Rejection{
		Reason:  response.ReasonNoDevice,
		Message: "No device configured",
	})
}

// Status handles GET /monitoring
func (h *monitoringHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		response.Success(w, MonitoringStatus{})
		return
	}
	response.Success(w, h.status())
}

// Start handles POST /monitoring/start
func (h *monitoringHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		noDevice(w)
		return
	}
	h.monitor.Start()
	response.SuccessWithMessage(w, "Monitoring started", h.status())
}

// Stop handles POST /monitoring/stop
func (h *monitoringHandlerImpl) Stop(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		noDevice(w)
		return
	}
	h.monitor.Stop()
	response.SuccessWithMessage(w, "Monitoring stopped", h.status())
}

// TestDevice handles POST /device/test
func (h *monitoringHandlerImpl) TestDevice(w http.ResponseWriter, r *http.Request) {
	if h.prober == nil {
		noDevice(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.prober.TestConnection(ctx); err != nil {
		slog.Warn("Device connection test failed", "error", err)
		response.Reject(w, response.Rejection{
			Reason:  response.ReasonDeviceUnreachable,
			Message: "Device unreachable: " + err.Error(),
		})
		return
	}
	response.SuccessWithMessage(w, "Device reachable", map[string]bool{"reachable": true})
}
