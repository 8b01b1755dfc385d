package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/autograder/internal/adapters/http/api"
	"github.com/okian/autograder/internal/adapters/http/swagger"
	"github.com/okian/autograder/internal/config"
	"github.com/okian/autograder/internal/domain/dedupe"
	"github.com/okian/autograder/pkg/logger"
)

// HTTP server timeout constants. Writes cover a whole grading run.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 5 * time.Minute
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	var (
		addr string
		root string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grading API over HTTP",
		Long: `Serve exposes POST /grade, GET /healthz, GET /metrics and
GET /openapi.yaml. With --projects-root, request paths are resolved
inside that directory and may not leave it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd, func(cmd *cobra.Command, cfg *config.Config) {
				if cmd.Flags().Changed("addr") {
					cfg.Addr = addr
				}
				if cmd.Flags().Changed("projects-root") {
					cfg.ProjectsRoot = root
				}
			})
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&root, "projects-root", "", "directory that request paths are confined to")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Named("server")

	svc, err := newService(cfg)
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	if err := svc.Validate(); err != nil {
		return &exitError{code: exitConfig, err: err}
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc,
		api.WithLogger(logger.Named("api")),
		api.WithProjectsRoot(cfg.ProjectsRoot),
		api.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.MaxConcurrentGradings))),
	).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("projects_root", cfg.ProjectsRoot))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return &exitError{code: exitConfig, err: err}
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
