package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ConfigName is the base name of the project configuration file.
const ConfigName = "depgraph.config"

// ErrConfigNotFound is returned alongside the default configuration when
// no config file exists. Callers should warn and continue.
var ErrConfigNotFound = errors.New("no local depgraph.config found")

// LoadError reports a config file that exists but could not be read or decoded.
// It is non-fatal: Load still returns a usable configuration built from
// defaults and environment variables.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load config: %v", e.Err)
	}
	return fmt.Sprintf("failed to load config %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	//
	// When the returned error is ErrConfigNotFound or a *LoadError the
	// returned Config is still valid and should be used. Any other error
	// means the configuration is invalid and the Config is nil.
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a loader that searches rootDir for depgraph.config.*.
// If configFile is not empty it is used instead of searching.
// Relative directories in the loaded configuration are resolved against rootDir.
func NewLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(l.rootDir)
	}

	// Environment variable overrides (DEPGRAPH_PROJECT_DIRECTORY, ...)
	v.SetEnvPrefix("DEPGRAPH")
	v.BindEnv("projectDirectory", "DEPGRAPH_PROJECT_DIRECTORY")
	v.BindEnv("outputDirectory", "DEPGRAPH_OUTPUT_DIRECTORY")
	v.BindEnv("includePattern", "DEPGRAPH_INCLUDE_PATTERN")
	v.BindEnv("excludePattern", "DEPGRAPH_EXCLUDE_PATTERN")
	v.BindEnv("tsconfig", "DEPGRAPH_TSCONFIG")
	v.BindEnv("sourceSubdir", "DEPGRAPH_SOURCE_SUBDIR")
	v.BindEnv("extension", "DEPGRAPH_EXTENSION")
	v.BindEnv("ignoreDirs", "DEPGRAPH_IGNORE_DIRS")
	v.BindEnv("excludeExternal", "DEPGRAPH_EXCLUDE_EXTERNAL")
	v.BindEnv("workers", "DEPGRAPH_WORKERS")
	v.BindEnv("formats", "DEPGRAPH_FORMATS")

	setDefaults(v)

	var softErr error
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			softErr = ErrConfigNotFound
		case l.configFile != "" && errors.Is(err, os.ErrNotExist):
			softErr = fmt.Errorf("%w: %s", ErrConfigNotFound, l.configFile)
		default:
			softErr = &LoadError{Path: v.ConfigFileUsed(), Err: err}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		// A file with wrongly typed values degrades to defaults like a malformed file.
		cfg = Default()
		softErr = &LoadError{Path: v.ConfigFileUsed(), Err: err}
	}

	cfg.ResolvePaths(l.rootDir)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, softErr
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("projectDirectory", defaults.ProjectDirectory)
	v.SetDefault("outputDirectory", defaults.OutputDirectory)
	v.SetDefault("includePattern", defaults.IncludePattern)
	v.SetDefault("excludePattern", defaults.ExcludePattern)
	v.SetDefault("tsconfig", defaults.Tsconfig)
	v.SetDefault("sourceSubdir", defaults.SourceSubdir)
	v.SetDefault("extension", defaults.Extension)
	v.SetDefault("ignoreDirs", defaults.IgnoreDirs)
	v.SetDefault("excludeExternal", defaults.ExcludeExternal)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("formats", defaults.Formats)
}

// LoadConfig is a convenience function that loads configuration from the
// current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd, "").Load()
}

// IsSoft reports whether err returned by Load leaves a usable configuration.
func IsSoft(err error) bool {
	var loadErr *LoadError
	return errors.Is(err, ErrConfigNotFound) || errors.As(err, &loadErr)
}
