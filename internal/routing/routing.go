// Package routing decides what an inbound submission asks for.
package routing

import (
	"path"
	"strings"

	"example.com/healthreport/internal/config"
)

// Route names a submission handler.
type Route string

const (
	// RouteExport builds a report from an attached export archive.
	RouteExport Route = "export"
	// RouteSettings updates the sender's settings from the message text or an attached YAML file.
	RouteSettings Route = "settings"
	// RouteHelp answers with the list of available settings.
	RouteHelp Route = "help"
)

// Attachment is one file of a submission.
type Attachment struct {
	Name        string
	ContentType string
	Size        int64
}

// Submission is an inbound request: a subject line, free text and attachments.
type Submission struct {
	Subject     string
	Body        string
	Attachments []Attachment
}

// Decision is the outcome of Classify. Attachment is set when the route consumes a file.
type Decision struct {
	Route      Route
	Attachment *Attachment
}

type rule struct {
	route Route
	match func(Submission) (*Attachment, bool)
}

// rules are evaluated in order; the last one always matches.
var rules = []rule{
	{route: RouteExport, match: exportAttachment},
	{route: RouteSettings, match: settingsAttachment},
	{route: RouteSettings, match: settingsText},
	{route: RouteHelp, match: func(Submission) (*Attachment, bool) { return nil, true }},
}

// Classify returns the first matching route. Every submission gets a decision.
func Classify(s Submission) Decision {
	for _, r := range rules {
		if att, ok := r.match(s); ok {
			return Decision{Route: r.route, Attachment: att}
		}
	}
	return Decision{Route: RouteHelp}
}

func exportAttachment(s Submission) (*Attachment, bool) {
	for i := range s.Attachments {
		a := &s.Attachments[i]
		ct := strings.ToLower(a.ContentType)
		if strings.EqualFold(path.Ext(a.Name), ".zip") || ct == "application/zip" || ct == "application/x-zip-compressed" {
			return a, true
		}
	}
	return nil, false
}

func settingsAttachment(s Submission) (*Attachment, bool) {
	for i := range s.Attachments {
		a := &s.Attachments[i]
		switch strings.ToLower(path.Ext(a.Name)) {
		case ".yaml", ".yml":
			return a, true
		}
	}
	return nil, false
}

// settingsText matches a body whose non-blank lines are all "name: value" pairs of known options.
func settingsText(s Submission) (*Attachment, bool) {
	pairs, ok := ParseSettingsText(s.Body)
	return nil, ok && len(pairs) > 0
}

// ParseSettingsText reads "name: value" or "name = value" lines. It reports false when any non-blank
// line is not a pair naming a known option.
func ParseSettingsText(body string) (map[string]string, bool) {
	out := make(map[string]string)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexAny(line, ":=")
		if idx <= 0 {
			return nil, false
		}
		name := strings.ToLower(strings.TrimSpace(line[:idx]))
		name = strings.ReplaceAll(name, " ", "_")
		if _, known := config.Lookup(name); !known {
			return nil, false
		}
		out[name] = strings.TrimSpace(line[idx+1:])
	}
	return out, true
}
