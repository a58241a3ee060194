// Package cli contains the healthreport command line tool.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/persistence/sqlite"
	"example.com/healthreport/internal/report"
)

// Version is the current version of healthreport.
var Version = "0.1.0"

// Local runs are recorded under a fixed tenant and user.
const (
	localTenant = "local"
	localUser   = "local"
)

// globals holds persistent flag values shared by every subcommand.
type globals struct {
	settingsPath string
	historyPath  string
	noHistory    bool
	verbose      bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "healthreport",
		Short: "Summarise a health data export into report sheets",
		Long: `healthreport reads an export archive (export.zip) and produces a multi-sheet report:
an overall monthly summary, one daily sheet per trailing month and a raw sheet per category.

Settings are read from a flat YAML file of "name: value" pairs. Run 'healthreport settings'
to list the available options and their defaults.

Examples:
  healthreport build export.zip --out report/           # JSON report into report/
  healthreport build export.zip --format csv --out out/ # one CSV per sheet
  healthreport watch ~/Downloads --out ~/reports        # rebuild on every new export
  healthreport history                                  # past runs`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.settingsPath, "settings", defaultSettingsPath(), "Path to the settings YAML file")
	root.PersistentFlags().StringVar(&g.historyPath, "history", sqlite.DefaultDBPath(), "Path to the run history database")
	root.PersistentFlags().BoolVar(&g.noHistory, "no-history", false, "Do not record runs in the history database")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(
		newBuildCommand(g),
		newSettingsCommand(g),
		newHistoryCommand(g),
		newWatchCommand(g),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "healthreport", "settings.yaml")
}

func (g *globals) settings() (config.Settings, error) {
	return config.LoadSettingsFile(g.settingsPath)
}

func (g *globals) logger(cmd *cobra.Command) *log.Logger {
	if !g.verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(cmd.ErrOrStderr(), "healthreport: ", log.LstdFlags)
}

// service returns a report service and a cleanup func. Runs are recorded in the history database
// unless --no-history is set.
func (g *globals) service(cmd *cobra.Command) (*report.Service, func(), error) {
	opts := []report.Option{report.WithLogger(g.logger(cmd))}
	if g.noHistory {
		return report.NewService(opts...), func() {}, nil
	}

	store, err := sqlite.Open(g.historyPath)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, report.WithRunRepository(store))
	return report.NewService(opts...), func() { _ = store.Close() }, nil
}
