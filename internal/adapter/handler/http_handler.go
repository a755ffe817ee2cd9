package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

const maxBodyBytes = 1 << 20

type HTTPHandler struct {
	svc           Services
	logger        logrus.FieldLogger
	sessionCookie string
}

func NewHTTPHandler(svc Services, logger logrus.FieldLogger, sessionCookie string) *HTTPHandler {
	return &HTTPHandler{svc: svc, logger: logger, sessionCookie: sessionCookie}
}

// Router wires every route. The legacy OAuth callback path is served by the
// same handler method as the webhook path.
func (h *HTTPHandler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(h.sessionMiddleware)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	r.HandleFunc("/inventory/categories", h.ListCategories).Methods(http.MethodGet)
	r.HandleFunc("/inventory/items", h.ListItems).Methods(http.MethodGet)
	r.HandleFunc("/inventory/transactions", h.ListTransactions).Methods(http.MethodGet)
	r.Handle("/inventory/transactions", h.requireRole(domain.RoleStaff, h.RecordTransaction)).Methods(http.MethodPost)
	r.HandleFunc("/items", h.ListItemsLegacy).Methods(http.MethodGet)

	r.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", h.GetOrder).Methods(http.MethodGet)

	r.HandleFunc("/tags", h.ListTags).Methods(http.MethodGet)
	r.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	r.Handle("/products", h.requireRole(domain.RoleManager, h.CreateProduct)).Methods(http.MethodPost)
	r.Handle("/products/{id}", h.requireRole(domain.RoleManager, h.UpdateProduct)).Methods(http.MethodPatch)

	r.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodGet, http.MethodPost)

	r.Handle("/mercadopago/oauth/connect", h.requireRole(domain.RoleAdmin, h.ConnectMercadoPago)).Methods(http.MethodGet)
	r.HandleFunc("/mercadopago/webhook", h.MercadoPagoCallback).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/mercadopago/oauth/callback", h.MercadoPagoCallback).Methods(http.MethodGet, http.MethodPost)

	return h.logMiddleware(r)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (h *HTTPHandler) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"url":        r.URL.Path,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		}).Info("handled request")
	})
}
