package restaurant

import (
	"net/http"
	"strconv"

	"ordersetu-be/internal/httpx"

	"github.com/gorilla/mux"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) GetOrderSetuStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// TableQR answers with a PNG that opens the customer page for one table.
func (h *Handler) TableQR(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	table, err := strconv.Atoi(vars["table"])
	if err != nil {
		httpx.WriteError(w, r, ErrInvalidTable)
		return
	}

	png, err := h.svc.TableQR(r.Context(), vars["restaurantId"], table)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
