// Package events defines the payloads published when reports are generated.
package events

import (
	"encoding/json"
	"time"

	"example.com/healthreport/internal/report"
)

const (
	// ReportGeneratedType is the event_type of a finished report build.
	ReportGeneratedType = "report.generated"
	// ReportRunAggregate is the aggregate_type of report run events.
	ReportRunAggregate = "report_run"
)

// ReportGenerated announces a stored report run.
type ReportGenerated struct {
	RunID       string    `json:"run_id"`
	TenantID    string    `json:"tenant_id"`
	UserID      string    `json:"user_id"`
	Records     int       `json:"records"`
	Workouts    int       `json:"workouts"`
	Sheets      int       `json:"sheets"`
	FirstMonth  string    `json:"first_month,omitempty"`
	LastMonth   string    `json:"last_month,omitempty"`
	Timezone    string    `json:"timezone"`
	GeneratedAt time.Time `json:"generated_at"`
	Version     string    `json:"version"`
}

// NewReportGenerated derives the event from a run summary.
func NewReportGenerated(run report.RunSummary) ReportGenerated {
	return ReportGenerated{
		RunID:       run.ID,
		TenantID:    run.TenantID,
		UserID:      run.UserID,
		Records:     run.Records,
		Workouts:    run.Workouts,
		Sheets:      run.Sheets,
		FirstMonth:  run.FirstMonth,
		LastMonth:   run.LastMonth,
		Timezone:    run.Timezone,
		GeneratedAt: run.GeneratedAt.UTC(),
		Version:     "v1",
	}
}

// Marshal encodes the event payload.
func (e ReportGenerated) Marshal() (json.RawMessage, error) {
	return json.Marshal(e)
}
