package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidPattern indicates an include or exclude pattern that is not a valid regexp
	ErrInvalidPattern = errors.New("invalid file pattern")

	// ErrInvalidGlob indicates an ignoreDirs entry that is not a valid glob
	ErrInvalidGlob = errors.New("invalid ignore glob")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidExtension indicates an extension without a leading dot
	ErrInvalidExtension = errors.New("invalid extension")
)

// KnownFormats lists the output formats understood by the render package.
var KnownFormats = []string{"html", "json", "dot", "sqlite"}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if _, _, err := cfg.Patterns(); err != nil {
		errs = append(errs, err)
	}

	for _, pattern := range cfg.IgnoreDirs {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidGlob, pattern, err))
		}
	}

	if !strings.HasPrefix(cfg.Extension, ".") || len(cfg.Extension) < 2 {
		errs = append(errs, fmt.Errorf("%w: must start with '.', got '%s'", ErrInvalidExtension, cfg.Extension))
	}

	if cfg.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	if len(cfg.Formats) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one format required", ErrInvalidFormat))
	}
	for _, format := range cfg.Formats {
		if !isKnownFormat(format) {
			errs = append(errs, fmt.Errorf("%w: %s (valid: %s)", ErrInvalidFormat, format, strings.Join(KnownFormats, ", ")))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func isKnownFormat(format string) bool {
	for _, known := range KnownFormats {
		if format == known {
			return true
		}
	}
	return false
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
