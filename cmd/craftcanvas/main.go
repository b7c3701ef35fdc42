package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	ConfigDir string
	Verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "craftcanvas",
		Short: "Turn a prompt into a small HTML/CSS/JS web app",
		Long: `craftcanvas runs a pipeline of specialist LLM agents (understanding,
planning, UI design, UX writing, integration and three code generators)
that turns one natural-language request into HTML, CSS and JavaScript.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", ".", "directory holding craftcanvas.yml")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newDiagramCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
