package handler

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
	"github.com/rl1809/shop-backoffice/internal/core/service"
)

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Catalog.ListCategories(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to fetch categories")
		respondError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	categoryID := r.URL.Query().Get("category")
	items, err := h.svc.Catalog.ListItems(r.Context(), categoryID)
	if err != nil {
		h.logger.WithError(err).WithField("category", categoryID).Error("failed to fetch items")
		respondError(w, http.StatusInternalServerError, "Failed to fetch items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListItemsLegacy serves the flat listing older clients read from /items.
func (h *HTTPHandler) ListItemsLegacy(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Catalog.ListAllItems(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to fetch item listing")
		respondError(w, http.StatusInternalServerError, "Failed to fetch items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *HTTPHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("itemId")
	txs, err := h.svc.Ledger.ListTransactions(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, service.ErrMissingItemID) {
			respondError(w, http.StatusBadRequest, "Missing itemId")
			return
		}
		h.logger.WithError(err).WithField("item_id", itemID).Error("failed to fetch transactions")
		respondError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

type recordTransactionRequest struct {
	ItemID string `json:"itemId"`
	Delta  int    `json:"delta"`
	Note   string `json:"note"`
}

func (h *HTTPHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := sessionFrom(r.Context()).UserID
	tx, err := h.svc.Ledger.RecordTransaction(r.Context(), req.ItemID, req.Delta, req.Note, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingItemID):
			respondError(w, http.StatusBadRequest, "Missing itemId")
		case errors.Is(err, service.ErrInvalidDelta), errors.Is(err, service.ErrNoteTooLong):
			respondError(w, http.StatusBadRequest, "Invalid transaction")
		case errors.Is(err, domain.ErrItemNotFound):
			respondError(w, http.StatusNotFound, "Item not found")
		case errors.Is(err, domain.ErrInsufficientStock):
			respondError(w, http.StatusConflict, "Insufficient stock")
		default:
			h.logger.WithError(err).WithField("item_id", req.ItemID).Error("failed to record transaction")
			respondError(w, http.StatusInternalServerError, "Failed to record transaction")
		}
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}
