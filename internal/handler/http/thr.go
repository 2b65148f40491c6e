package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/thr"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
)

type ThrHandler interface {
	GetForEmployee(w http.ResponseWriter, r *http.Request)
}

type thrHandlerImpl struct {
	thrService thr.ThrService
	now        func() time.Time
}

func NewThrHandler(thrService thr.ThrService) ThrHandler {
	return &thrHandlerImpl{thrService: thrService, now: time.Now}
}

// GetForEmployee defaults reference_date to today.
func (h *thrHandlerImpl) GetForEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	req := thr.ComputeThrRequest{
		EmployeeID:    id,
		ReferenceDate: r.URL.Query().Get("reference_date"),
	}
	if req.ReferenceDate == "" {
		req.ReferenceDate = h.now().Format("2006-01-02")
	}

	result, err := h.thrService.ComputeForEmployee(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
