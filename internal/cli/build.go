package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/render"
	"example.com/healthreport/internal/report"
)

func newBuildCommand(g *globals) *cobra.Command {
	var (
		export string
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "build [EXPORT.zip]",
		Short: "Build a report from an export archive",
		Long: `Build reads the export archive, assembles the report and writes it.

Without --out the JSON or YAML report is printed to stdout. CSV output writes one file per
sheet and therefore requires --out.

Examples:
  healthreport build export.zip
  healthreport build --export export.zip --settings settings.yaml
  healthreport build export.zip --format yaml --out report/
  healthreport build export.zip --format csv --out report/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				export = args[0]
			}
			if export == "" {
				return fmt.Errorf("an export archive is required")
			}
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == render.FormatCSV && outDir == "" {
				return fmt.Errorf("--format csv requires --out")
			}

			settings, err := g.settings()
			if err != nil {
				return err
			}
			service, cleanup, err := g.service(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := generateFromFile(cmd.Context(), service, export, settings)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), result, f, outDir)
		},
	}

	cmd.Flags().StringVar(&export, "export", "", "Path to the export archive")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatJSON), "Output format: json|yaml|csv")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write the report into")
	return cmd
}

func generateFromFile(ctx context.Context, service *report.Service, path string, settings config.Settings) (*report.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return service.Generate(ctx, report.GenerateInput{
		TenantID: localTenant,
		UserID:   localUser,
		Archive:  file,
		Size:     info.Size(),
		Settings: settings,
	})
}

func writeResult(out io.Writer, result *report.Result, format render.Format, outDir string) error {
	if outDir == "" {
		if format == render.FormatYAML {
			return render.YAML(out, result.Report)
		}
		return render.JSON(out, result.Report)
	}

	paths, err := render.WriteDir(outDir, format, result.Report)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run %s: %d records, %d workouts, %d sheets\n",
		result.RunID, result.Summary.Records, result.Summary.Workouts, result.Summary.Sheets)
	for _, p := range paths {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}
