package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthreport/internal/auth"
	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/domain"
	"example.com/healthreport/internal/report"
	"example.com/healthreport/internal/routing"
	"example.com/healthreport/internal/testsupport"
)

type memorySettings struct {
	stored map[string]config.Settings
}

func newMemorySettings() *memorySettings {
	return &memorySettings{stored: map[string]config.Settings{}}
}

func (m *memorySettings) GetSettings(_ context.Context, tenantID, userID string) (config.Settings, error) {
	if s, ok := m.stored[tenantID+"/"+userID]; ok {
		return s, nil
	}
	return config.DefaultSettings(), nil
}

func (m *memorySettings) SaveSettings(_ context.Context, tenantID, userID string, s config.Settings) error {
	m.stored[tenantID+"/"+userID] = s
	return nil
}

type memoryRuns struct {
	runs []report.RunSummary
}

func (m *memoryRuns) SaveRun(_ context.Context, run report.RunSummary) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryRuns) ListRuns(_ context.Context, _, _ string, limit int) ([]report.RunSummary, error) {
	if len(m.runs) < limit {
		limit = len(m.runs)
	}
	return m.runs[:limit], nil
}

func newTestHandler(maxUpload int64) (*Handler, *memorySettings, *memoryRuns) {
	runs := &memoryRuns{}
	settings := newMemorySettings()
	service := report.NewService(
		report.WithRunRepository(runs),
		report.WithLogger(log.New(io.Discard, "", 0)),
		report.WithClock(func() time.Time { return time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC) }),
	)
	return NewHandler(service, settings, maxUpload), settings, runs
}

func withClaims(req *http.Request, scopes ...string) *http.Request {
	claims := &auth.Claims{Subject: "user-1", TenantID: "tenant-1", Scopes: map[string]struct{}{}}
	for _, scope := range scopes {
		claims.Scopes[scope] = struct{}{}
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func sampleArchive(t *testing.T) []byte {
	return testsupport.ExportArchive(t,
		testsupport.Record(domain.TypeStepCount, "Phone", time.Date(2024, time.March, 2, 8, 0, 0, 0, time.UTC), 10, "500", "count"),
		testsupport.Workout("HKWorkoutActivityTypeRunning", "Apple Watch", time.Date(2024, time.March, 3, 7, 0, 0, 0, time.UTC), 30, 3.1),
	)
}

// responseBody mirrors the response envelopes; rendered cells are write-only so sheets decode by name.
type responseBody struct {
	Route  string            `json:"route"`
	Run    report.RunSummary `json:"run"`
	Report *struct {
		Sheets []struct {
			Name string `json:"name"`
		} `json:"sheets"`
	} `json:"report"`
	Options []SettingView `json:"options"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload["type"]
}

func TestCreateReport(t *testing.T) {
	handler, _, runs := newTestHandler(1 << 20)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports", bytes.NewReader(sampleArchive(t)))
	req.Header.Set("Content-Type", "application/zip")
	rec := httptest.NewRecorder()
	handler.reports(rec, withClaims(req, auth.ScopeReportsWrite))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Report-Run-Id"))

	var resp responseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Report)
	require.Equal(t, 1, resp.Run.Records)
	require.Equal(t, 1, resp.Run.Workouts)
	require.Equal(t, report.SummarySheetName, resp.Report.Sheets[0].Name)
	require.Len(t, runs.runs, 1)
	require.Equal(t, "tenant-1", runs.runs[0].TenantID)
}

func TestCreateReportYAML(t *testing.T) {
	handler, _, _ := newTestHandler(1 << 20)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports?format=yaml", bytes.NewReader(sampleArchive(t)))
	req.Header.Set("Content-Type", "application/zip")
	rec := httptest.NewRecorder()
	handler.reports(rec, withClaims(req, auth.ScopeReportsWrite))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "name: "+report.SummarySheetName)
}

func TestCreateReportUsesStoredSettings(t *testing.T) {
	handler, settings, runs := newTestHandler(1 << 20)
	custom := config.DefaultSettings()
	custom.Timezone = "America/Chicago"
	require.NoError(t, settings.SaveSettings(context.Background(), "tenant-1", "user-1", custom))

	req := httptest.NewRequest(http.MethodPost, "/v1/reports", bytes.NewReader(sampleArchive(t)))
	req.Header.Set("Content-Type", "application/zip")
	rec := httptest.NewRecorder()
	handler.reports(rec, withClaims(req, auth.ScopeReportsWrite))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "America/Chicago", runs.runs[0].Timezone)
}

func TestCreateReportRejections(t *testing.T) {
	archive := sampleArchive(t)
	tests := []struct {
		name        string
		maxUpload   int64
		contentType string
		body        []byte
		scopes      []string
		status      int
		errType     string
	}{
		{name: "missing scope", maxUpload: 1 << 20, contentType: "application/zip", body: archive, scopes: []string{auth.ScopeReportsRead}, status: http.StatusForbidden, errType: "forbidden"},
		{name: "wrong media type", maxUpload: 1 << 20, contentType: "text/plain", body: archive, scopes: []string{auth.ScopeReportsWrite}, status: http.StatusUnsupportedMediaType, errType: "unsupported_media_type"},
		{name: "too large", maxUpload: 16, contentType: "application/zip", body: archive, scopes: []string{auth.ScopeReportsWrite}, status: http.StatusRequestEntityTooLarge, errType: "payload_too_large"},
		{name: "not a zip", maxUpload: 1 << 20, contentType: "application/octet-stream", body: []byte("not a zip"), scopes: []string{auth.ScopeReportsWrite}, status: http.StatusBadRequest, errType: "malformed_export"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, runs := newTestHandler(tt.maxUpload)
			req := httptest.NewRequest(http.MethodPost, "/v1/reports", bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			handler.reports(rec, withClaims(req, tt.scopes...))

			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, tt.errType, decodeError(t, rec))
			require.Empty(t, runs.runs)
		})
	}
}

func TestCreateReportRequiresClaims(t *testing.T) {
	handler, _, _ := newTestHandler(1 << 20)
	req := httptest.NewRequest(http.MethodPost, "/v1/reports", bytes.NewReader(sampleArchive(t)))
	rec := httptest.NewRecorder()
	handler.reports(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListRuns(t *testing.T) {
	handler, _, runs := newTestHandler(1 << 20)
	runs.runs = []report.RunSummary{{ID: "run-2"}, {ID: "run-1"}}

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/runs?limit=1", nil)
	rec := httptest.NewRecorder()
	handler.runs(rec, withClaims(req, auth.ScopeReportsRead))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListRunsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	require.Equal(t, "run-2", resp.Items[0].ID)
}

func TestSettingsGetAndPut(t *testing.T) {
	handler, settings, _ := newTestHandler(1 << 20)

	req := httptest.NewRequest(http.MethodPut, "/v1/settings", strings.NewReader(`{"distance_unit":"km","timezone":"Europe/Berlin"}`))
	rec := httptest.NewRecorder()
	handler.userSettings(rec, withClaims(req, auth.ScopeSettingsWrite))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := settings.GetSettings(context.Background(), "tenant-1", "user-1")
	require.NoError(t, err)
	require.Equal(t, domain.Kilometers, stored.DistanceUnit)
	require.Equal(t, "Europe/Berlin", stored.Timezone)

	req = httptest.NewRequest(http.MethodGet, "/v1/settings", nil)
	rec = httptest.NewRecorder()
	handler.userSettings(rec, withClaims(req, auth.ScopeReportsRead))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SettingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Settings, len(config.Options()))
	values := map[string]string{}
	for _, view := range resp.Settings {
		values[view.Name] = view.Value
	}
	require.Equal(t, "km", values["distance_unit"])
	require.Equal(t, "Europe/Berlin", values["timezone"])
}

func TestSettingsPutValidation(t *testing.T) {
	handler, settings, _ := newTestHandler(1 << 20)

	for _, body := range []string{
		`{"distance_unit":"km","timezone":"Mars/Olympus"}`,
		`{"no_such_option":"1"}`,
	} {
		req := httptest.NewRequest(http.MethodPut, "/v1/settings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.userSettings(rec, withClaims(req, auth.ScopeSettingsWrite))

		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		require.Equal(t, "validation_failed", decodeError(t, rec))
	}
	require.Empty(t, settings.stored)
}

type part struct {
	name        string
	contentType string
	body        []byte
}

func multipartRequest(t *testing.T, subject, body string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("subject", subject))
	require.NoError(t, mw.WriteField("body", body))
	for _, p := range parts {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="attachment"; filename="` + p.name + `"`}
		header["Content-Type"] = []string{p.contentType}
		w, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = w.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/submissions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return withClaims(req, auth.ScopeReportsWrite)
}

func TestSubmissionRoutes(t *testing.T) {
	t.Run("export attachment", func(t *testing.T) {
		handler, _, runs := newTestHandler(1 << 20)
		req := multipartRequest(t, "my data", "",
			part{name: "notes.txt", contentType: "text/plain", body: []byte("hello")},
			part{name: "export.zip", contentType: "application/zip", body: sampleArchive(t)},
		)
		rec := httptest.NewRecorder()
		handler.submissions(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp responseBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "export", resp.Route)
		require.NotNil(t, resp.Report)
		require.Len(t, runs.runs, 1)
	})

	t.Run("settings text", func(t *testing.T) {
		handler, settings, _ := newTestHandler(1 << 20)
		req := multipartRequest(t, "settings", "Distance Unit: km\ntrailing_month_count = 6\n")
		rec := httptest.NewRecorder()
		handler.submissions(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		stored, err := settings.GetSettings(context.Background(), "tenant-1", "user-1")
		require.NoError(t, err)
		require.Equal(t, domain.Kilometers, stored.DistanceUnit)
		require.Equal(t, 6, stored.TrailingMonthCount)
	})

	t.Run("settings file", func(t *testing.T) {
		handler, settings, _ := newTestHandler(1 << 20)
		req := multipartRequest(t, "", "",
			part{name: "settings.yaml", contentType: "application/yaml", body: []byte("weight_unit: kg\n")},
		)
		rec := httptest.NewRecorder()
		handler.submissions(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		stored, err := settings.GetSettings(context.Background(), "tenant-1", "user-1")
		require.NoError(t, err)
		require.Equal(t, domain.Kilograms, stored.WeightUnit)
	})

	t.Run("help", func(t *testing.T) {
		handler, _, runs := newTestHandler(1 << 20)
		req := multipartRequest(t, "hello", "what can you do?")
		rec := httptest.NewRecorder()
		handler.submissions(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp responseBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "help", resp.Route)
		require.Len(t, resp.Options, len(config.Options()))
		require.Empty(t, runs.runs)
	})
}

func TestSubmitSettingsRejectsFreeText(t *testing.T) {
	handler, settings, _ := newTestHandler(1 << 20)
	claims := &auth.Claims{Subject: "user-1", TenantID: "tenant-1"}

	for _, body := range []string{"please use kilometres", "", "distance_unit: km\nhello"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/submissions", nil)
		rec := httptest.NewRecorder()
		handler.submitSettings(rec, req, claims, routing.Submission{Body: body}, nil)

		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		require.Equal(t, "validation_failed", decodeError(t, rec))
	}
	require.Empty(t, settings.stored)
}

func TestHealthz(t *testing.T) {
	mux := http.NewServeMux()
	handler, _, _ := newTestHandler(1 << 20)
	handler.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
