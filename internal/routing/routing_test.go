package routing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		submission Submission
		route      Route
		attachment string
	}{
		{
			name: "zip by extension",
			submission: Submission{Attachments: []Attachment{
				{Name: "notes.txt", ContentType: "text/plain"},
				{Name: "Export.ZIP", ContentType: "application/octet-stream"},
			}},
			route:      RouteExport,
			attachment: "Export.ZIP",
		},
		{
			name:       "zip by content type",
			submission: Submission{Attachments: []Attachment{{Name: "upload", ContentType: "application/zip"}}},
			route:      RouteExport,
			attachment: "upload",
		},
		{
			name: "export wins over settings file",
			submission: Submission{Attachments: []Attachment{
				{Name: "settings.yaml"},
				{Name: "export.zip"},
			}},
			route:      RouteExport,
			attachment: "export.zip",
		},
		{
			name:       "settings file",
			submission: Submission{Attachments: []Attachment{{Name: "prefs.yml"}}},
			route:      RouteSettings,
			attachment: "prefs.yml",
		},
		{
			name:       "settings text",
			submission: Submission{Body: "Weight Unit: kg\n\ntimezone = Europe/Berlin\n# comment"},
			route:      RouteSettings,
		},
		{
			name:       "unknown option falls through to help",
			submission: Submission{Body: "favourite_colour: blue"},
			route:      RouteHelp,
		},
		{
			name:       "empty submission",
			submission: Submission{},
			route:      RouteHelp,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Classify(tc.submission)
			require.Equal(t, tc.route, d.Route)
			if tc.attachment == "" {
				require.Nil(t, d.Attachment)
				return
			}
			require.NotNil(t, d.Attachment)
			require.Equal(t, tc.attachment, d.Attachment.Name)
		})
	}
}

func TestParseSettingsText(t *testing.T) {
	pairs, ok := ParseSettingsText("weight unit: kg\ntrailing_month_count=6")
	require.True(t, ok)
	require.Equal(t, map[string]string{"weight_unit": "kg", "trailing_month_count": "6"}, pairs)

	_, ok = ParseSettingsText("please send me my report")
	require.False(t, ok)
}
