package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tnt",
		Short: "Render and preview reactive HTML templates",
		Long: `TNT turns an HTML document into a reactive view.

Directives such as <v>, <t-if> and <t-for> inside the mount container are
driven by data from a JSON or YAML file. Render a snapshot once, or serve
a live preview that re-renders as you interact with it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		renderCmd(),
		serveCmd(),
		versionCmd(),
	)

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		tnterrors.DisableColors()
	}
	if err := rootCmd.Execute(); err != nil {
		tnterrors.PrintError(err)
		os.Exit(1)
	}
}

// success prints a success message to stderr, keeping stdout for output.
func success(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
