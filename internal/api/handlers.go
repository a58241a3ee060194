// Package api exposes HTTP handlers for the report service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"example.com/healthreport/internal/auth"
	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/domain"
	"example.com/healthreport/internal/render"
	"example.com/healthreport/internal/report"
)

// SettingsRepository loads and stores per-user settings.
type SettingsRepository interface {
	GetSettings(ctx context.Context, tenantID, userID string) (config.Settings, error)
	SaveSettings(ctx context.Context, tenantID, userID string, settings config.Settings) error
}

// Handler coordinates HTTP requests with the report service.
type Handler struct {
	service        *report.Service
	settings       SettingsRepository
	maxUploadBytes int64
}

// NewHandler builds a Handler. Uploads larger than maxUploadBytes are rejected.
func NewHandler(service *report.Service, settings SettingsRepository, maxUploadBytes int64) *Handler {
	return &Handler{service: service, settings: settings, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/reports", h.reports)
	mux.HandleFunc("/v1/reports/runs", h.runs)
	mux.HandleFunc("/v1/submissions", h.submissions)
	mux.HandleFunc("/v1/settings", h.userSettings)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) reports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeReportsWrite)
	if !ok {
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/zip" && mediaType != "application/octet-stream" {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/zip body")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	settings, err := h.settings.GetSettings(r.Context(), claims.TenantID, claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	result, err := h.service.Generate(r.Context(), report.GenerateInput{
		TenantID: claims.TenantID,
		UserID:   claims.Subject,
		Archive:  bytes.NewReader(body),
		Size:     int64(len(body)),
		Settings: settings,
	})
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	w.Header().Set("X-Report-Run-Id", result.RunID)
	if format, _ := render.ParseFormat(r.URL.Query().Get("format")); format == render.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_ = render.YAML(w, result.Report)
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{Run: result.Summary, Report: render.NewDocument(result.Report)})
}

func (h *Handler) runs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeReportsRead, auth.ScopeReportsWrite)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.service.ListRuns(r.Context(), claims.TenantID, claims.Subject, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ListRunsResponse{Items: runs})
}

func (h *Handler) userSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getSettings(w, r)
	case http.MethodPut:
		h.putSettings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeReportsRead, auth.ScopeSettingsWrite)
	if !ok {
		return
	}
	current, err := h.settings.GetSettings(r.Context(), claims.TenantID, claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{Settings: toSettingViews(current)})
}

func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeSettingsWrite)
	if !ok {
		return
	}

	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	updated, err := h.updateSettings(r.Context(), claims, func(current config.Settings) (config.Settings, error) {
		return config.Apply(current, values)
	})
	if err != nil {
		writeSettingsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{Settings: toSettingViews(updated)})
}

func (h *Handler) updateSettings(ctx context.Context, claims *auth.Claims, change func(config.Settings) (config.Settings, error)) (config.Settings, error) {
	current, err := h.settings.GetSettings(ctx, claims.TenantID, claims.Subject)
	if err != nil {
		return config.Settings{}, err
	}
	updated, err := change(current)
	if err != nil {
		return config.Settings{}, err
	}
	if err := h.settings.SaveSettings(ctx, claims.TenantID, claims.Subject, updated); err != nil {
		return config.Settings{}, err
	}
	return updated, nil
}

func (h *Handler) writeUploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "export exceeds upload limit")
		return
	}
	writeError(w, http.StatusBadRequest, "invalid_request", "unable to read body")
}

func requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return nil, false
}

func writeGenerateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		writeError(w, http.StatusBadRequest, "malformed_export", err.Error())
	case errors.Is(err, config.ErrInvalidSettings):
		writeError(w, http.StatusBadRequest, "invalid_settings", err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "canceled", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeSettingsError(w http.ResponseWriter, err error) {
	if errors.Is(err, config.ErrInvalidSettings) || errors.Is(err, config.ErrUnknownSetting) {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "server_error", err.Error())
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
