package billing

import (
	"fmt"
	"net/http"

	"ordersetu-be/internal/apperror"
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

type paymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

// AddBillRequest handles POST /add-bill-request from the customer page.
func (h *Handler) AddBillRequest(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	b, err := h.svc.CreateBill(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Bill created successfully",
		"bill":    b,
	})
}

func (h *Handler) GetBillRequest(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	bills, err := h.svc.ListBills(r.Context(), p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"bills": bills})
}

func (h *Handler) EditPaymentStatus(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	billID, err := uuid.Parse(mux.Vars(r)["billId"])
	if err != nil {
		httpx.WriteError(w, r, apperror.Validation("Invalid bill id"))
		return
	}

	var req paymentStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	b, err := h.svc.ResolvePayment(r.Context(), p, billID, req.PaymentStatus)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Payment status updated to %s", b.PaymentStatus),
		"bill":    b,
	})
}
