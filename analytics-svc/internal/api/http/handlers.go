package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"sendr/analytics-svc/internal/service"
	"sendr/pkg/auth"
	"sendr/pkg/stats"

	"github.com/gorilla/mux"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 50
)

type Handler struct {
	Analytics service.AnalyticsInterface
	Auth      *auth.Issuer
	now       func() time.Time
}

func NewHandler(analytics service.AnalyticsInterface, issuer *auth.Issuer) *Handler {
	return &Handler{Analytics: analytics, Auth: issuer, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.Handle("/api/vendor/analytics", h.Auth.Middleware(http.HandlerFunc(h.vendorAnalytics))).Methods("GET")
	r.HandleFunc("/api/analytics/top-products", h.topProducts).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "analytics-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// day reads ?date=YYYY-MM-DD, defaulting to today in UTC.
func (h *Handler) day(r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return stats.Day(h.now()), true
	}
	if _, err := time.Parse(stats.DayLayout, raw); err != nil {
		return "", false
	}
	return raw, true
}

func (h *Handler) vendorAnalytics(w http.ResponseWriter, r *http.Request) {
	day, ok := h.day(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	summary, err := h.Analytics.VendorDay(r.Context(), auth.VendorIDFromContext(r.Context()), day)
	if err != nil {
		log.Printf("[analytics-svc] vendor analytics: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load analytics"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	day, ok := h.day(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxTopLimit)
	}

	products, err := h.Analytics.TopProducts(r.Context(), day, limit)
	if err != nil {
		log.Printf("[analytics-svc] top products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load analytics"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"date": day, "products": products})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
