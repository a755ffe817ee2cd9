package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.ListOrders(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to fetch orders")
		respondError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder answers every failure, including an unknown id, with the same
// 500 body.
func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	view, err := h.svc.Orders.GetOrderView(r.Context(), orderID)
	if err != nil {
		h.logger.WithError(err).WithField("order_id", orderID).Error("failed to fetch order")
		respondError(w, http.StatusInternalServerError, "Failed to fetch order")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
