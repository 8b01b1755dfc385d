// Package api exposes the grader over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/autograder/internal/app"
	"github.com/okian/autograder/internal/domain/dedupe"
	"github.com/okian/autograder/internal/domain/model"
	"github.com/okian/autograder/pkg/logger"
)

// Grader runs one grading. *service.Service satisfies it.
type Grader interface {
	Run(ctx context.Context, projectPath string, mode service.Mode) (model.GradeReport, error)
}

// Server wires HTTP routes for the grading API.
type Server struct {
	grader   Grader
	inflight dedupe.Deduper
	root     string
	logger   logger.Logger

	healthHandler *HealthHandler
	gradeHandler  *GradeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(grader Grader, opts ...Option) *Server {
	s := &Server{grader: grader}
	for _, opt := range opts {
		opt(s)
	}
	if s.inflight == nil {
		s.inflight = dedupe.NewInMemoryDeduper()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}

	s.healthHandler = NewHealthHandler()
	s.gradeHandler = &GradeHandler{grader: s.grader, inflight: s.inflight, root: s.root, logger: s.logger}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/grade", MetricsMiddleware(s.gradeHandler.HandleGrade, "grade"))
	mux.Handle("/metrics", MetricsHandler())
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
