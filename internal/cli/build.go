package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/mvp-joe/depgraph/internal/config"
	"github.com/mvp-joe/depgraph/internal/depgraph"
	"github.com/mvp-joe/depgraph/internal/render"
	"github.com/spf13/cobra"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Scan the project and write the dependency graph",
	Long: `Build scans <projectDirectory>/<sourceSubdir> for files matching the
include pattern, resolves their imports and writes the graph to the
output directory in every configured format.

Examples:
  # Build with depgraph.config.* from the current directory
  depgraph build

  # Build with an explicit config file and no progress bars
  depgraph build --config ./tools/depgraph.config.yaml --quiet
`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := buildOnce(ctx, cfg, NewCLIProgressReporter(quietFlag)); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("build cancelled")
		}
		return err
	}

	printViewerHint(cmd.OutOrStdout(), cfg)
	return nil
}

// buildOnce scans the project and writes every configured output.
func buildOnce(ctx context.Context, cfg *config.Config, progress depgraph.ProgressReporter) ([]string, error) {
	var opts []depgraph.Option
	if progress != nil {
		opts = append(opts, depgraph.WithProgress(progress))
	}

	g, err := depgraph.BuildDependencyGraph(ctx, cfg.ProjectDirectory, cfg.SourceSubdir, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}

	written, err := render.WriteAll(ctx, cfg.OutputDirectory, cfg.Formats, g)
	if err != nil {
		return nil, err
	}

	if verbose {
		for _, path := range written {
			log.Printf("Wrote %s", path)
		}
	}
	return written, nil
}

// printViewerHint tells the user where the viewer is when html output was written.
func printViewerHint(w io.Writer, cfg *config.Config) {
	if !slices.Contains(cfg.Formats, "html") {
		return
	}
	fmt.Fprintf(w, "Open %s to view the dependency graph\n",
		filepath.Join(cfg.OutputDirectory, render.ViewerFileName))
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
