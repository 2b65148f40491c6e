package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	statutorysvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/statutory"
)

type StatutoryHandler interface {
	Calculate(w http.ResponseWriter, r *http.Request)
}

type statutoryHandlerImpl struct {
	calculator *statutorysvc.Calculator
}

func NewStatutoryHandler(calculator *statutorysvc.Calculator) StatutoryHandler {
	return &statutoryHandlerImpl{calculator: calculator}
}

func (h *statutoryHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	var req statutory.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.calculator.Calculate(req.Input())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
