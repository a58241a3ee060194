package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"example.com/healthreport/internal/config"
)

func newSettingsCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "List report settings and their current values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := g.settings()
			if err != nil {
				return err
			}
			values := current.Values()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tVALUE\tDEFAULT\tDESCRIPTION")
			for _, opt := range config.Options() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", opt.Name, values[opt.Name], opt.Default, opt.Description)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write the current settings to the settings file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				current, err := g.settings()
				if err != nil {
					return err
				}
				return g.saveSettings(cmd, current)
			},
		},
		&cobra.Command{
			Use:   "set NAME VALUE",
			Short: "Change one setting in the settings file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				current, err := g.settings()
				if err != nil {
					return err
				}
				if err := current.Set(args[0], args[1]); err != nil {
					return err
				}
				return g.saveSettings(cmd, current)
			},
		},
	)
	return cmd
}

func (g *globals) saveSettings(cmd *cobra.Command, s config.Settings) error {
	if g.settingsPath == "" {
		return fmt.Errorf("no settings file path; pass --settings")
	}
	data, err := config.MarshalSettings(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(g.settingsPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(g.settingsPath, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", g.settingsPath)
	return nil
}
