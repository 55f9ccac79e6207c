package order

import (
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

type acceptRequest struct {
	ConfirmedOrderID string `json:"confirmedOrderId"`
}

type updateItemRequest struct {
	ConfirmedOrderID string `json:"confirmedOrderId"`
	ItemName         string `json:"itemName"`
	Quantity         *int   `json:"quantity"`
}

func parseOrderID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, apperror.Validation("confirmedOrderId required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid confirmedOrderId")
	}
	return id, nil
}

// AddConfirmedItems handles POST /add-confirmed-items. Customers are not
// authenticated.
func (h *Handler) AddConfirmedItems(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	o, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":        "Confirmed items added",
		"confirmedOrder": o,
	})
}

func (h *Handler) AcceptConfirmedOrder(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req acceptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	id, err := parseOrderID(req.ConfirmedOrderID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if _, err := h.svc.Accept(r.Context(), p, id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order accepted",
	})
}

func (h *Handler) UpdateConfirmedItem(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	id, err := parseOrderID(req.ConfirmedOrderID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if req.ItemName == "" || req.Quantity == nil {
		httpx.WriteError(w, r, ErrMissingFields)
		return
	}

	updates, err := h.svc.UpdateItemQuantity(r.Context(), p, id, req.ItemName, *req.Quantity)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"updates": updates,
	})
}

func (h *Handler) MarkItemDelivered(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var in DeliverInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if err := h.svc.MarkDelivered(r.Context(), p, in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "Item marked as delivered")
}

func (h *Handler) GetConfirmedOrders(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	views, err := h.svc.ListForWaiter(r.Context(), p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"requests": views})
}

func (h *Handler) ChefItemSummary(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	lines, err := h.svc.KitchenSummary(r.Context(), p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": lines})
}

func (h *Handler) DeleteConfirmedOrder(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	id, err := parseOrderID(mux.Vars(r)["confirmedOrderId"])
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	o, err := h.svc.Delete(r.Context(), p, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":      "Confirmed order deleted successfully",
		"deletedOrder": o,
	})
}
