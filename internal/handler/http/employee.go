package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type EmployeeHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Sync(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	directory employee.Directory
}

func NewEmployeeHandler(directory employee.Directory) EmployeeHandler {
	return &employeeHandlerImpl{directory: directory}
}

// List handles GET /employees
func (h *employeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.directory.All(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		result = append(result, employee.NewEmployeeResponse(e))
	}
	response.Success(w, result)
}

// Refresh handles POST /employees/refresh
func (h *employeeHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.directory.Refresh(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee directory refreshed", result)
}

// Sync handles POST /employees/sync
func (h *employeeHandlerImpl) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.directory.SyncFromDevice(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employees synced from device", result)
}
