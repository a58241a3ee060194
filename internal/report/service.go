package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/domain"
	"example.com/healthreport/internal/export"
	"example.com/healthreport/internal/observability"
	"example.com/healthreport/internal/sheets"
)

// RunSummary is the stored outcome of one report build.
type RunSummary struct {
	ID          string        `json:"id"`
	TenantID    string        `json:"tenant_id"`
	UserID      string        `json:"user_id"`
	Records     int           `json:"records"`
	Workouts    int           `json:"workouts"`
	Sheets      int           `json:"sheets"`
	FirstMonth  string        `json:"first_month,omitempty"`
	LastMonth   string        `json:"last_month,omitempty"`
	Timezone    string        `json:"timezone"`
	Duration    time.Duration `json:"duration_ns"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// RunRepository stores run summaries.
type RunRepository interface {
	SaveRun(ctx context.Context, run RunSummary) error
	ListRuns(ctx context.Context, tenantID, userID string, limit int) ([]RunSummary, error)
}

// NoopRunRepository discards runs.
type NoopRunRepository struct{}

func (NoopRunRepository) SaveRun(context.Context, RunSummary) error { return nil }

func (NoopRunRepository) ListRuns(context.Context, string, string, int) ([]RunSummary, error) {
	return []RunSummary{}, nil
}

// Service runs report builds.
type Service struct {
	repo   RunRepository
	logger *log.Logger
	now    func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithRunRepository stores run summaries in repo.
func WithRunRepository(repo RunRepository) Option {
	return func(s *Service) {
		if repo != nil {
			s.repo = repo
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock anchoring the current month.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		repo:   NoopRunRepository{},
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateInput captures one build request.
type GenerateInput struct {
	TenantID string
	UserID   string
	Archive  io.ReaderAt
	Size     int64
	Settings config.Settings
}

// Result is the product of a build.
type Result struct {
	RunID   string
	Report  Report
	Summary RunSummary
}

// Generate loads the archive, assembles the report and records the run.
func (s *Service) Generate(ctx context.Context, input GenerateInput) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := input.Settings.Validate(); err != nil {
		observability.RecordBuildFailure("settings")
		return nil, err
	}

	started := time.Now()
	exp, err := export.OpenArchive(input.Archive, input.Size)
	if err != nil {
		observability.RecordBuildFailure(failureReason(err))
		return nil, fmt.Errorf("load export: %w", err)
	}
	observability.RecordExportParsed(len(exp.Records), len(exp.Workouts))
	if err := ctx.Err(); err != nil {
		observability.RecordBuildFailure("canceled")
		return nil, err
	}

	result, err := s.Build(exp, input.Settings)
	if err != nil {
		observability.RecordBuildFailure("settings")
		return nil, err
	}
	result.Summary.TenantID = input.TenantID
	result.Summary.UserID = input.UserID
	result.Summary.Duration = time.Since(started)

	if err := s.repo.SaveRun(ctx, result.Summary); err != nil {
		observability.RecordBuildFailure("storage")
		return nil, fmt.Errorf("save run: %w", err)
	}

	observability.ObserveBuild(result.Summary.Duration)
	observability.RecordReportGenerated(result.Summary.GeneratedAt)
	s.logger.Printf("report: run %s built %d sheets from %d records, %d workouts in %s",
		result.RunID, result.Summary.Sheets, result.Summary.Records, result.Summary.Workouts, result.Summary.Duration)
	return result, nil
}

// Build assembles an already loaded export. It neither stores the run nor records metrics.
func (s *Service) Build(exp *export.Export, settings config.Settings) (*Result, error) {
	factory, err := sheets.NewFactory(settings)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rep, err := Assemble(factory.Builders(exp), exp, settings, now)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	summary := RunSummary{
		ID:          runID,
		Records:     len(exp.Records),
		Workouts:    len(exp.Workouts),
		Sheets:      len(rep.Visible()),
		Timezone:    factory.Location().String(),
		GeneratedAt: now.UTC(),
	}
	months := DataMonths(exp, factory.Location())
	if len(months) > 0 {
		summary.LastMonth = months[0].String()
		summary.FirstMonth = months[len(months)-1].String()
	}
	return &Result{RunID: runID, Report: rep, Summary: summary}, nil
}

// ListRuns returns the most recent runs of a user, newest first.
func (s *Service) ListRuns(ctx context.Context, tenantID, userID string, limit int) ([]RunSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListRuns(ctx, tenantID, userID, limit)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		return "malformed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "load"
	}
}

