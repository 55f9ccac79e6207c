package staff

import (
	"net/http"

	"ordersetu-be/internal/auth"
	"ordersetu-be/internal/httpx"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// EditWorkerSalary handles PATCH /edit-worker-salary/{workerId}.
func (h *Handler) EditWorkerSalary(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	workerID, err := uuid.Parse(mux.Vars(r)["workerId"])
	if err != nil {
		httpx.WriteError(w, r, ErrInvalidWorker)
		return
	}

	var in SalaryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if in.Salary == nil {
		httpx.WriteError(w, r, ErrInvalidSalary)
		return
	}

	worker, err := h.svc.UpdateSalary(r.Context(), p, workerID, *in.Salary)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "Salary updated",
		"workerId": worker.ID,
		"salary":   worker.Salary,
	})
}
