package api

import (
	"github.com/okian/autograder/internal/domain/dedupe"
	"github.com/okian/autograder/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithDeduper sets the in-flight guard. Its size bounds concurrent
// gradings.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Server) {
		if d != nil {
			s.inflight = d
		}
	}
}

// WithProjectsRoot confines request paths to dir. Request paths are then
// resolved relative to it.
func WithProjectsRoot(dir string) Option {
	return func(s *Server) {
		s.root = dir
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
