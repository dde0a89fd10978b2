package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mvp-joe/depgraph/internal/config"
	"github.com/mvp-joe/depgraph/internal/discovery"
	"github.com/mvp-joe/depgraph/internal/watcher"
	"github.com/spf13/cobra"
)

var debounceFlag time.Duration

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the dependency graph whenever a source file changes",
	Long: `Watch performs an initial build, then watches the scan root and rebuilds
every output after included files are created, modified or removed.

Changes are batched: a rebuild starts once no change has been seen for the
debounce period. Press Ctrl+C to stop.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&debounceFlag, "debounce", watcher.DefaultDebounce, "quiet period before rebuilding")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := buildOnce(ctx, cfg, NewCLIProgressReporter(quietFlag)); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}
	printViewerHint(cmd.OutOrStdout(), cfg)

	if !quietFlag {
		log.Printf("Watching %s for changes...", cfg.ScanRoot())
	}

	if err := watchAndRebuild(ctx, cfg, debounceFlag); err != nil {
		return err
	}

	if !quietFlag {
		log.Println("Watch mode stopped")
	}
	return nil
}

// watchAndRebuild rebuilds on every debounced batch of changes until ctx is done.
// Rebuild failures are logged; the watch continues.
func watchAndRebuild(ctx context.Context, cfg *config.Config, debounce time.Duration) error {
	include, exclude, err := cfg.Patterns()
	if err != nil {
		return err
	}
	collector, err := discovery.NewCollector(include, exclude, cfg.IgnoreDirs)
	if err != nil {
		return err
	}

	w, err := watcher.New(cfg.ScanRoot(), collector, watcher.WithDebounce(debounce))
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	err = w.Start(ctx, func(files []string) {
		if !quietFlag {
			log.Printf("%d file(s) changed, rebuilding...", len(files))
		}
		if verbose {
			for _, f := range files {
				log.Printf("  %s", f)
			}
		}

		// No progress bars on rebuilds
		written, err := buildOnce(ctx, cfg, nil)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("Warning: rebuild failed: %v", err)
			}
			return
		}
		if !quietFlag {
			log.Printf("Rebuilt %d output file(s)", len(written))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	<-ctx.Done()
	return nil
}
