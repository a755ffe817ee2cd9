package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
	"github.com/rl1809/shop-backoffice/internal/core/service"
)

func (h *HTTPHandler) ConnectMercadoPago(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.Payments.BeginAuthorization(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to begin provider authorization")
		respondError(w, http.StatusInternalServerError, "Failed to start authorization")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// MercadoPagoCallback is the single entry point for everything MercadoPago
// sends us: OAuth redirects carrying a code, webhook notifications and the
// older IPN query notifications.
func (h *HTTPHandler) MercadoPagoCallback(w http.ResponseWriter, r *http.Request) {
	cb, err := parseCallback(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid callback")
		return
	}

	if err := h.svc.Payments.HandleCallback(r.Context(), cb); err != nil {
		log := h.logger.WithError(err).WithField("path", r.URL.Path)
		switch {
		case errors.Is(err, service.ErrInvalidCallback):
			respondError(w, http.StatusBadRequest, "Invalid callback")
		case errors.Is(err, service.ErrInvalidState):
			log.Warn("rejected authorization callback")
			respondError(w, http.StatusBadRequest, "Invalid state")
		case errors.Is(err, domain.ErrNotConnected):
			log.Warn("notification received before the account was connected")
			respondError(w, http.StatusServiceUnavailable, "Payment provider not connected")
		case errors.Is(err, service.ErrProviderFailure):
			log.Error("payment provider request failed")
			respondError(w, http.StatusBadGateway, "Payment provider unavailable")
		default:
			log.Error("failed to process provider callback")
			respondError(w, http.StatusInternalServerError, "Failed to process callback")
		}
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// flexID accepts ids sent either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type notificationBody struct {
	ID     flexID `json:"id"`
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Data   struct {
		ID flexID `json:"id"`
	} `json:"data"`
}

func parseCallback(r *http.Request) (domain.ProviderCallback, error) {
	q := r.URL.Query()
	cb := domain.ProviderCallback{
		Code:  q.Get("code"),
		State: q.Get("state"),
	}

	var body notificationBody
	if r.Body != nil {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return cb, errors.Wrap(err, "read body")
		}
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				return cb, errors.Wrap(err, "decode body")
			}
		}
	}

	topic := firstNonEmpty(body.Type, body.Topic, q.Get("type"), q.Get("topic"))
	resource := firstNonEmpty(string(body.Data.ID), q.Get("data.id"), q.Get("id"))
	if topic != "" || resource != "" {
		cb.Notification = &domain.Notification{
			DeliveryID: string(body.ID),
			Topic:      domain.NotificationTopic(topic),
			Action:     body.Action,
			ResourceID: resource,
		}
	}
	return cb, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
