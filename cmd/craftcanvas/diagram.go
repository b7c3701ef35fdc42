package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JoseCortezz25/craft-canvas/internal/config"
	"github.com/JoseCortezz25/craft-canvas/internal/export"
	"github.com/JoseCortezz25/craft-canvas/internal/orchestrator"
)

func newDiagramCmd(root *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Print the pipeline topology",
		Long: `Print the compiled pipeline as a Mermaid flowchart or as JSON.
No model credential is needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.ConfigDir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			plan, err := orchestrator.Blueprint(cfg.AgentWiring())
			if err != nil {
				return err
			}

			switch format {
			case "mermaid":
				fmt.Fprint(cmd.OutOrStdout(), export.Mermaid(plan))
			case "json":
				data, err := export.JSON(plan, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			default:
				return fmt.Errorf("unknown format %q (want mermaid or json)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "output format: mermaid or json")
	return cmd
}
