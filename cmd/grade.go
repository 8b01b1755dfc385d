package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/autograder/internal/adapters/analyzers"
	"github.com/okian/autograder/internal/adapters/cache"
	"github.com/okian/autograder/internal/adapters/files"
	"github.com/okian/autograder/internal/adapters/gitrepo"
	"github.com/okian/autograder/internal/adapters/report"
	service "github.com/okian/autograder/internal/app"
	"github.com/okian/autograder/internal/config"
	"github.com/okian/autograder/internal/domain/model"
	"github.com/okian/autograder/pkg/logger"
	"github.com/okian/autograder/pkg/metrics"
)

type gradeFlags struct {
	json        bool
	output      string
	sequential  bool
	workers     int
	noEarlyExit bool
	timeout     time.Duration
	metricsFile string
}

func newGradeCmd() *cobra.Command {
	f := &gradeFlags{}
	cmd := &cobra.Command{
		Use:   "grade <path>",
		Short: "Grade a project directory",
		Long: `Grade runs every analyzer over the project at <path> and prints the
summary. The exit status is 0 when the project passes, 1 when it fails
and 2 when the configuration is invalid.

Configuration is read from AUTOGRADER_CONFIG (YAML) and AUTOGRADER_*
environment variables; flags override both.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrade(cmd, args[0], f)
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.json, "json", false, "print the report as JSON")
	fl.StringVarP(&f.output, "output", "o", "", "write the report to a file instead of stdout")
	fl.BoolVar(&f.sequential, "sequential", false, "run analyzers one at a time")
	fl.IntVarP(&f.workers, "workers", "w", service.DefaultMaxWorkers, "parallel worker count")
	fl.BoolVar(&f.noEarlyExit, "no-early-exit", false, "keep grading after a critical security failure")
	fl.DurationVar(&f.timeout, "timeout", 0, "per-analyzer timeout, 0 for none")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	return cmd
}

// apply layers explicitly set flags over the loaded configuration.
func (f *gradeFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if f.sequential {
		cfg.Mode = string(service.ModeSequential)
	}
	if fl.Changed("workers") {
		cfg.MaxWorkers = f.workers
	}
	if f.noEarlyExit {
		cfg.EnableEarlyExit = false
	}
	if fl.Changed("timeout") {
		cfg.AnalyzerTimeout = f.timeout
	}
	if fl.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
}

func runGrade(cmd *cobra.Command, path string, f *gradeFlags) error {
	ctx := cmd.Context()

	cfg, err := setup(cmd, f.apply)
	if err != nil {
		return err
	}
	log := logger.Named("cli")

	mode, err := service.ParseMode(cfg.Mode)
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	svc, err := newService(cfg)
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}

	r, err := svc.Run(ctx, path, mode)
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}

	if err := writeReport(cmd, r, f); err != nil {
		return &exitError{code: exitConfig, err: err}
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error(ctx, "error writing metrics textfile", logger.String("path", cfg.MetricsFile), logger.Error(err))
		}
	}

	if !r.Passed {
		return &exitError{code: exitFailed}
	}
	return nil
}

// setup loads and validates configuration, applies flag overrides and
// initializes logging.
func setup(cmd *cobra.Command, apply func(*cobra.Command, *config.Config)) (*config.Config, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, &exitError{code: exitConfig, err: err}
	}
	apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, &exitError{code: exitConfig, err: err}
	}

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, &exitError{code: exitConfig, err: err}
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// newService builds the executor and analyzer set from cfg.
func newService(cfg *config.Config) (*service.Service, error) {
	maxBytes, err := cfg.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}
	reader := gitrepo.NewReader(
		gitrepo.WithLimit(cfg.CommitHistoryLimit),
		gitrepo.WithDetectDotGit(cfg.DetectDotGit),
	)
	var finderOpts []files.Option
	if len(cfg.IgnoreDirs) > 0 {
		finderOpts = append(finderOpts, files.WithIgnoreDirs(cfg.IgnoreDirs...))
	}
	return service.New(
		service.WithLogger(logger.Named("executor")),
		service.WithMaxWorkers(cfg.MaxWorkers),
		service.WithEarlyExit(cfg.EnableEarlyExit),
		service.WithAnalyzerTimeout(cfg.AnalyzerTimeout),
		service.WithSecurityAnalyzer(analyzers.Security()),
		service.WithAnalyzers(analyzers.Others(cfg.AnalyzerSettings())...),
		service.WithCacheFactory(cache.Factory(
			cache.WithMaxFileSize(maxBytes),
			cache.WithGitReader(reader),
			cache.WithFinder(files.NewFinder(finderOpts...)),
		)),
	), nil
}

func writeReport(cmd *cobra.Command, r model.GradeReport, f *gradeFlags) error {
	var out []byte
	if f.json {
		data, err := report.JSON(r)
		if err != nil {
			return err
		}
		out = data
	} else {
		colored := f.output == "" && !color.NoColor
		out = []byte(report.Text(r, report.WithColor(colored), report.WithErrors(true)))
	}

	if f.output != "" {
		if err := os.WriteFile(f.output, out, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	}
	_, err := cmd.OutOrStdout().Write(out)
	return err
}
