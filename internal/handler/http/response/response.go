package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Reason is the machine-readable cause of a rejected request.
type Reason string

const (
	ReasonBadRequest        Reason = "BAD_REQUEST"
	ReasonValidation        Reason = "VALIDATION_ERROR"
	ReasonDuplicateEvent    Reason = "DUPLICATE_EVENT"
	ReasonStorage           Reason = "STORAGE_UNAVAILABLE"
	ReasonInvalidRange      Reason = "INVALID_RANGE"
	ReasonRangeTooWide      Reason = "RANGE_TOO_WIDE"
	ReasonEmployeeNotFound  Reason = "EMPLOYEE_NOT_FOUND"
	ReasonNoDevice          Reason = "DEVICE_NOT_CONFIGURED"
	ReasonDeviceUnreachable Reason = "DEVICE_UNREACHABLE"
	ReasonInternal          Reason = "INTERNAL_SERVER_ERROR"
)

var reasonStatus = map[Reason]int{
	ReasonBadRequest:        http.StatusBadRequest,
	ReasonValidation:        http.StatusUnprocessableEntity,
	ReasonDuplicateEvent:    http.StatusConflict,
	ReasonStorage:           http.StatusServiceUnavailable,
	ReasonInvalidRange:      http.StatusBadRequest,
	ReasonRangeTooWide:      http.StatusBadRequest,
	ReasonEmployeeNotFound:  http.StatusNotFound,
	ReasonNoDevice:          http.StatusServiceUnavailable,
	ReasonDeviceUnreachable: http.StatusServiceUnavailable,
	ReasonInternal:          http.StatusInternalServerError,
}

// Status returns the HTTP status a rejection with this reason is sent with.
func (r Reason) Status() int {
	if code, ok := reasonStatus[r]; ok {
		return code
	}
	return http.StatusInternalServerError
}

type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    Reason            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	// RetryAfter mirrors the Retry-After header, in seconds.
	RetryAfter int `json:"retry_after,omitempty"`
}

// Rejection describes a request the engine refused. A non-zero RetryAfter is
// sent as the Retry-After header.
type Rejection struct {
	Reason     Reason
	Message    string
	Details    map[string]string
	RetryAfter time.Duration
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		fallback := Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    ReasonInternal,
				Message: "Failed to encode response",
			},
		}
		_ = json.NewEncoder(w).Encode(fallback)
	}
}

func ok(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSON(w, statusCode, Response{Success: true, Message: message, Data: data})
}

func Success(w http.ResponseWriter, data interface{}) {
	ok(w, http.StatusOK, "", data)
}

func SuccessWithMessage(w http.ResponseWriter, message string, data interface{}) {
	ok(w, http.StatusOK, message, data)
}

// Created reports a clock event that was stored and applied.
func Created(w http.ResponseWriter, message string, data interface{}) {
	ok(w, http.StatusCreated, message, data)
}

// Accepted reports a clock event that was stored but not applied to presence.
func Accepted(w http.ResponseWriter, message string, data interface{}) {
	ok(w, http.StatusAccepted, message, data)
}

// Reject writes rej with the status of its reason.
func Reject(w http.ResponseWriter, rej Rejection) {
	detail := &ErrorDetail{
		Code:    rej.Reason,
		Message: rej.Message,
		Details: rej.Details,
	}
	if rej.RetryAfter > 0 {
		seconds := int((rej.RetryAfter + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		detail.RetryAfter = seconds
	}
	writeJSON(w, rej.Reason.Status(), Response{Success: false, Error: detail})
}
