package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
	"github.com/rl1809/shop-backoffice/internal/core/service"
)

func (h *HTTPHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Products.ListTags(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to fetch tags")
		respondError(w, http.StatusInternalServerError, "Failed to fetch tags")
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products.ListProducts(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to fetch products")
		respondError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type createProductRequest struct {
	Name       string   `json:"name"`
	PriceCents int64    `json:"priceCents"`
	Tags       []string `json:"tags"`
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.svc.Products.CreateProduct(r.Context(), req.Name, req.PriceCents, req.Tags)
	if err != nil {
		h.productError(w, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]

	var patch domain.ProductPatch
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.svc.Products.UpdateProduct(r.Context(), productID, patch)
	if err != nil {
		h.productError(w, err, productID)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) productError(w http.ResponseWriter, err error, productID string) {
	switch {
	case errors.Is(err, service.ErrMissingProductName), errors.Is(err, service.ErrNegativePrice):
		respondError(w, http.StatusBadRequest, "Invalid product")
	case errors.Is(err, domain.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "Product not found")
	default:
		h.logger.WithError(err).WithField("product_id", productID).Error("failed to save product")
		respondError(w, http.StatusInternalServerError, "Failed to save product")
	}
}
