package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"example.com/healthreport/internal/persistence/sqlite"
)

// HistoryEntry is one past run as printed by the history command.
type HistoryEntry struct {
	Run         string `yaml:"run" json:"run"`
	GeneratedAt string `yaml:"generated_at" json:"generated_at"`
	Records     int    `yaml:"records" json:"records"`
	Workouts    int    `yaml:"workouts" json:"workouts"`
	Sheets      int    `yaml:"sheets" json:"sheets"`
	Months      string `yaml:"months,omitempty" json:"months,omitempty"`
	Timezone    string `yaml:"timezone" json:"timezone"`
	Duration    string `yaml:"duration" json:"duration"`
}

// HistoryOutput is the full output structure.
type HistoryOutput struct {
	Runs  []HistoryEntry `yaml:"runs" json:"runs"`
	Total int            `yaml:"total" json:"total"`
}

func newHistoryCommand(g *globals) *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previously built reports",
		Long: `Display runs recorded in the history database, newest first.

Examples:
  healthreport history
  healthreport history --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.Open(g.historyPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), localTenant, localUser, limit)
			if err != nil {
				return err
			}

			out := HistoryOutput{Runs: make([]HistoryEntry, 0, len(runs)), Total: len(runs)}
			for _, run := range runs {
				entry := HistoryEntry{
					Run:         run.ID,
					GeneratedAt: run.GeneratedAt.Format(time.RFC3339),
					Records:     run.Records,
					Workouts:    run.Workouts,
					Sheets:      run.Sheets,
					Timezone:    run.Timezone,
					Duration:    run.Duration.Round(time.Millisecond).String(),
				}
				if run.FirstMonth != "" {
					entry.Months = run.FirstMonth + " .. " + run.LastMonth
				}
				out.Runs = append(out.Runs, entry)
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(out)
			}
			return fmt.Errorf("unsupported format %q", format)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show")
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml|json")
	return cmd
}
