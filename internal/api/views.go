package api

import (
	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/render"
	"example.com/healthreport/internal/report"
)

// ReportResponse is the JSON body of POST /v1/reports.
type ReportResponse struct {
	Run    report.RunSummary `json:"run"`
	Report render.Document   `json:"report"`
}

// ListRunsResponse packages list results.
type ListRunsResponse struct {
	Items []report.RunSummary `json:"items"`
}

// SettingView describes one setting and, for a user, its current value.
type SettingView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     string `json:"default"`
	Value       string `json:"value,omitempty"`
}

// SettingsResponse lists settings.
type SettingsResponse struct {
	Settings []SettingView `json:"settings"`
}

// SubmissionResponse reports which route handled a submission and its outcome.
type SubmissionResponse struct {
	Route    string             `json:"route"`
	Run      *report.RunSummary `json:"run,omitempty"`
	Report   *render.Document   `json:"report,omitempty"`
	Settings []SettingView      `json:"settings,omitempty"`
	Options  []SettingView      `json:"options,omitempty"`
}

func toSettingViews(s config.Settings) []SettingView {
	values := s.Values()
	views := optionViews()
	for i := range views {
		views[i].Value = values[views[i].Name]
	}
	return views
}

func optionViews() []SettingView {
	opts := config.Options()
	views := make([]SettingView, 0, len(opts))
	for _, opt := range opts {
		views = append(views, SettingView{Name: opt.Name, Description: opt.Description, Default: opt.Default})
	}
	return views
}
