// Package config defines grader configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and AUTOGRADER_* environment variables on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/okian/autograder/internal/adapters/analyzers"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Mode selects the executor: parallel or sequential.
	Mode string `koanf:"mode"`

	// MaxWorkers bounds the parallel worker pool. Must be at least 1.
	MaxWorkers int `koanf:"max_workers"`

	// EnableEarlyExit stops a parallel run after a critical security failure.
	EnableEarlyExit bool `koanf:"enable_early_exit"`

	// AnalyzerTimeout bounds each analyzer call; zero disables it.
	AnalyzerTimeout time.Duration `koanf:"analyzer_timeout"`

	FileSizeLimit        int     `koanf:"file_size_limit"`
	MinDocstringCoverage float64 `koanf:"min_docstring_coverage"`
	MinCommits           int     `koanf:"min_commits"`
	CommitHistoryLimit   int     `koanf:"commit_history_limit"`

	// MaxFileSize is a human size such as "2 MiB". Larger files are not read.
	MaxFileSize string `koanf:"max_file_size"`

	// IgnoreDirs replaces the directory names skipped while listing files
	// when non-empty. Glob patterns are allowed.
	IgnoreDirs []string `koanf:"ignore_dirs"`

	// DetectDotGit lets the git analyzer find a repository in a parent
	// directory of the project.
	DetectDotGit bool `koanf:"detect_dot_git"`

	// TestLanguage selects which test files are counted.
	TestLanguage string `koanf:"test_language"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`

	// Addr is the listen address of the serve command.
	Addr string `koanf:"addr"`

	// ProjectsRoot confines served grading requests to one directory tree.
	ProjectsRoot string `koanf:"projects_root"`

	// MaxConcurrentGradings bounds simultaneous served gradings.
	MaxConcurrentGradings int `koanf:"max_concurrent_gradings"`

	// RequiredDocuments overrides the standard document set when non-empty.
	RequiredDocuments []analyzers.DocumentRequirement `koanf:"required_documents"`
}

// New creates a Config with defaults.
func New() *Config {
	d := analyzers.DefaultSettings()
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Mode:                 "parallel",
		MaxWorkers:           4,
		EnableEarlyExit:      true,
		FileSizeLimit:        d.FileSizeLimit,
		MinDocstringCoverage: d.MinDocstringCoverage,
		MinCommits:           d.MinCommits,
		CommitHistoryLimit:   100,
		MaxFileSize:          "2 MiB",
		TestLanguage:         d.TestLanguage,

		Addr:                  ":8080",
		MaxConcurrentGradings: 4,
	}
}

// Validate fails fast on values that would make a run meaningless.
func (c *Config) Validate() error {
	var problems []string
	if c.MaxWorkers < 1 {
		problems = append(problems, fmt.Sprintf("max_workers must be at least 1, got %d", c.MaxWorkers))
	}
	switch strings.ToLower(c.Mode) {
	case "parallel", "sequential":
	default:
		problems = append(problems, fmt.Sprintf("unknown mode %q", c.Mode))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "":
	default:
		problems = append(problems, fmt.Sprintf("unknown log_format %q", c.LogFormat))
	}
	if c.AnalyzerTimeout < 0 {
		problems = append(problems, "analyzer_timeout must not be negative")
	}
	if c.FileSizeLimit < 1 {
		problems = append(problems, "file_size_limit must be positive")
	}
	if c.MinDocstringCoverage < 0 || c.MinDocstringCoverage > 1 {
		problems = append(problems, "min_docstring_coverage must be within [0, 1]")
	}
	if c.CommitHistoryLimit < 1 {
		problems = append(problems, "commit_history_limit must be positive")
	}
	if c.MaxConcurrentGradings < 1 {
		problems = append(problems, "max_concurrent_gradings must be at least 1")
	}
	if _, err := c.MaxFileSizeBytes(); err != nil {
		problems = append(problems, err.Error())
	}
	for _, d := range c.IgnoreDirs {
		if _, err := filepath.Match(d, ""); err != nil {
			problems = append(problems, fmt.Sprintf("ignore_dirs pattern %q: %v", d, err))
		}
	}
	for _, d := range c.RequiredDocuments {
		if d.Name == "" {
			problems = append(problems, "required_documents entries need a name")
			break
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// MaxFileSizeBytes parses MaxFileSize.
func (c *Config) MaxFileSizeBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("max_file_size %q: %w", c.MaxFileSize, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("max_file_size must be positive")
	}
	return int64(n), nil
}

// AnalyzerSettings maps the configuration onto the analyzer tunables.
func (c *Config) AnalyzerSettings() analyzers.Settings {
	s := analyzers.DefaultSettings()
	s.FileSizeLimit = c.FileSizeLimit
	s.MinDocstringCoverage = c.MinDocstringCoverage
	s.MinCommits = c.MinCommits
	s.TestLanguage = c.TestLanguage
	if len(c.RequiredDocuments) > 0 {
		s.RequiredDocuments = c.RequiredDocuments
	}
	return s
}
