package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/mvp-joe/depgraph/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	quietFlag bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "depgraph",
	Short: "Depgraph - TypeScript import dependency graphs",
	Long: `Depgraph scans the TypeScript sources of a project, resolves every
import statement (including tsconfig path aliases) and writes the
resulting module dependency graph for viewing in a browser.

Running depgraph without a subcommand is the same as "depgraph build".`,
	SilenceUsage: true,
	RunE:         runBuild,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./depgraph.config.{json,yaml,yml})")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "disable progress bars and non-error output")
}

// loadConfig loads the configuration for the working directory.
// Missing or malformed config files fall back to defaults with a warning;
// an invalid configuration is returned as an error.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile == "" {
		cfg, err = config.LoadConfig()
	} else {
		var wd string
		if wd, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg, err = config.NewLoader(wd, cfgFile).Load()
	}
	if err != nil {
		if !config.IsSoft(err) {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		if !quietFlag {
			log.Printf("Warning: %v, using defaults", err)
		}
	}

	if verbose {
		log.Printf("Project directory: %s", cfg.ProjectDirectory)
		log.Printf("Scan root: %s", cfg.ScanRoot())
		log.Printf("Output directory: %s", cfg.OutputDirectory)
	}
	return cfg, nil
}
