package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/keygate/internal/core/domain"
	"github.com/atvirokodosprendimai/keygate/internal/core/usecase"
	"github.com/go-chi/chi/v5"
)

const (
	adminSecretHeader = "X-Admin-Secret"
	maxJSONBodySize   = 1 << 20
)

type Handler struct {
	lifecycle *usecase.LifecycleService
	admin     *usecase.AdminService
	report    *usecase.ReportService
	telemetry *usecase.TelemetryService
}

func NewHandler(lifecycle *usecase.LifecycleService, admin *usecase.AdminService, report *usecase.ReportService, telemetry *usecase.TelemetryService) *Handler {
	return &Handler{lifecycle: lifecycle, admin: admin, report: report, telemetry: telemetry}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/auth", h.authenticate)
	r.Get("/heartbeat", h.heartbeat)
	r.Get("/telemetry", h.telemetryPing)
	r.Get("/raw", h.rawWhitelist)
	r.Get("/health", h.health)

	r.Post("/admin/sync", h.adminSync)
	r.Get("/admin/keys", h.adminGetKeys)
	r.Get("/admin/audit", h.adminAudit)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found.")
	})

	return r
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")

	result, err := h.lifecycle.Authenticate(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrKeyExpired):
			writeError(w, http.StatusForbidden, "Key has expired.")
		case errors.Is(err, domain.ErrKeyNotFound):
			writeError(w, http.StatusUnauthorized, "Invalid or expired key.")
		default:
			internalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"expires_at":    result.ExpiresAt,
		"duration_days": result.DurationDays,
		"discord":       result.Discord,
	})
}

func (h *Handler) heartbeat(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	ip := r.URL.Query().Get("ip")

	result, err := h.lifecycle.Heartbeat(r.Context(), key, ip)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			writeError(w, http.StatusNotFound, "Key not found.")
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"extended_by_hours": result.ExtendedByHours,
	})
}

func (h *Handler) telemetryPing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	err := h.telemetry.Record(r.Context(), q.Get("telemetry_id"), q.Get("macho_key"), q.Get("ip"))
	if err != nil {
		if errors.Is(err, usecase.ErrTelemetryMismatch) {
			writeError(w, http.StatusForbidden, "Invalid telemetry ID.")
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) rawWhitelist(w http.ResponseWriter, r *http.Request) {
	whitelist, err := h.report.RawWhitelist(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, whitelist); err != nil {
		log.Printf("write whitelist response: %v", err)
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	counts, err := h.report.Health(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "online",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"keys":      counts,
	})
}

type adminSyncRequest struct {
	Keys json.RawMessage `json:"keys"`
}

func (h *Handler) adminSync(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	var req adminSyncRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if len(req.Keys) == 0 {
		writeError(w, http.StatusBadRequest, "Missing keys object.")
		return
	}

	count, err := h.admin.Replace(r.Context(), r.Header.Get(adminSecretHeader), req.Keys)
	if err != nil {
		handleAdminError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "count": count})
}

func (h *Handler) adminGetKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.admin.Fetch(r.Context(), r.Header.Get(adminSecretHeader))
	if err != nil {
		handleAdminError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, keys)
}

func (h *Handler) adminAudit(w http.ResponseWriter, r *http.Request) {
	filter := domain.AuditFilter{Action: r.URL.Query().Get("action")}
	if raw := r.URL.Query().Get("after_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "after_id must be integer.")
			return
		}
		filter.AfterID = parsed
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be integer.")
			return
		}
		filter.Limit = parsed
	}

	events, err := h.admin.AuditLog(r.Context(), r.Header.Get(adminSecretHeader), filter)
	if err != nil {
		handleAdminError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "events": events})
}

func handleAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "Unauthorized.")
	case errors.Is(err, domain.ErrBadPayload):
		message := strings.TrimSpace(err.Error())
		writeError(w, http.StatusBadRequest, message)
	default:
		internalError(w, err)
	}
}

func internalError(w http.ResponseWriter, err error) {
	log.Printf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal server error.")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("encode json response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"status": "error", "message": message})
}
