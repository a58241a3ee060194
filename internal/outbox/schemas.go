package outbox

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"example.com/healthreport/internal/events"
)

const reportGeneratedSchema = `{
  "type": "object",
  "title": "ReportGenerated",
  "properties": {
    "run_id": {"type": "string", "minLength": 1},
    "tenant_id": {"type": "string", "minLength": 1},
    "user_id": {"type": "string", "minLength": 1},
    "records": {"type": "integer", "minimum": 0},
    "workouts": {"type": "integer", "minimum": 0},
    "sheets": {"type": "integer", "minimum": 0},
    "first_month": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}$"},
    "last_month": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}$"},
    "timezone": {"type": "string"},
    "generated_at": {"type": "string", "format": "date-time"},
    "version": {"type": "string"}
  },
  "required": ["run_id", "tenant_id", "user_id", "records", "workouts", "sheets", "timezone", "generated_at", "version"],
  "additionalProperties": false
}`

// SchemaCatalogEntry maps event type to schema definition.
type SchemaCatalogEntry struct {
	Schema string
}

var schemaCatalog = map[string]SchemaCatalogEntry{
	events.ReportGeneratedType: {
		Schema: reportGeneratedSchema,
	},
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.AssertFormat()
		out := make(map[string]*jsonschema.Schema, len(schemaCatalog))
		for eventType, entry := range schemaCatalog {
			doc, err := jsonschema.UnmarshalJSON(strings.NewReader(entry.Schema))
			if err != nil {
				compileErr = fmt.Errorf("parse schema %s: %w", eventType, err)
				return
			}
			url := eventType + ".json"
			if err := c.AddResource(url, doc); err != nil {
				compileErr = fmt.Errorf("add schema %s: %w", eventType, err)
				return
			}
			sch, err := c.Compile(url)
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", eventType, err)
				return
			}
			out[eventType] = sch
		}
		compiled = out
	})
	return compiled, compileErr
}

// ValidatePayload checks payload against the schema registered for eventType.
func ValidatePayload(eventType string, payload []byte) error {
	schemas, err := compileSchemas()
	if err != nil {
		return err
	}
	sch, ok := schemas[eventType]
	if !ok {
		return fmt.Errorf("%w: event_type=%s", ErrUnknownEventType, eventType)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
