package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JoseCortezz25/craft-canvas/internal/client"
	"github.com/JoseCortezz25/craft-canvas/internal/lint"
	"github.com/JoseCortezz25/craft-canvas/internal/orchestrator"
)

type generateOptions struct {
	Server string
	OutDir string
	JSON   bool
	Quiet  bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <prompt...>",
		Short: "Generate HTML, CSS and JS for a prompt",
		Long: `Run the agent pipeline for one prompt and write index.html, styles.css,
script.js and a self-contained preview.html to the output directory.

With --server the prompt is sent to a running "craftcanvas serve" instead of
running the pipeline in this process.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if strings.TrimSpace(prompt) == "" {
				return orchestrator.ErrEmptyPrompt
			}

			var (
				artifacts   orchestrator.Artifacts
				diagnostics []lint.Diagnostic
				runID       string
			)
			if opts.Server != "" {
				a, err := client.New(opts.Server).Generate(cmd.Context(), prompt)
				if err != nil {
					return err
				}
				artifacts = *a
				diagnostics = lint.All(a.HTML, a.CSS, a.JS)
			} else {
				res, err := generateLocal(cmd.Context(), root, opts, prompt, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				artifacts, diagnostics, runID = res.Artifacts, res.Diagnostics, res.RunID
			}

			for _, d := range diagnostics {
				fmt.Fprintf(cmd.ErrOrStderr(), "lint: %s\n", d)
			}

			if opts.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(artifacts)
			}

			written, err := artifacts.WriteFiles(opts.OutDir)
			if err != nil {
				return err
			}
			if runID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "run %s\n", runID)
			}
			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Server, "server", "", "base URL of a running craftcanvas server")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "craftcanvas-out", "output directory")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the artifacts as JSON instead of writing files")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress progress output")
	return cmd
}

func generateLocal(ctx context.Context, root *rootOptions, opts *generateOptions, prompt string, progress io.Writer) (*orchestrator.Result, error) {
	a, err := loadApp(root)
	if err != nil {
		return nil, err
	}
	shutdown, err := a.tracing(ctx)
	if err != nil {
		return nil, err
	}
	defer a.close(context.Background(), shutdown)

	p, err := a.pipeline(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Quiet {
		return p.Generate(ctx, prompt)
	}

	reporter := orchestrator.NewProgressReporter()
	done := make(chan struct{})
	go func() {
		defer close(done)
		header := false
		for ev := range reporter.Subscribe() {
			if !header {
				fmt.Fprintln(progress, orchestrator.FormatRunHeader(ev.RunID, len(p.Plan().Nodes()), len(p.Plan().Layers())))
				header = true
			}
			fmt.Fprintln(progress, orchestrator.FormatProgress(ev))
		}
	}()

	res, err := p.Generate(ctx, prompt, orchestrator.WithProgress(reporter.Emit))
	reporter.Close()
	<-done
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("run exceeded %s: %w", a.cfg.RunTimeout, err)
	}
	return res, err
}
