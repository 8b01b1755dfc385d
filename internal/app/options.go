package service

import (
	"time"

	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMaxWorkers sets the size of the parallel worker pool. Values below 1
// are kept so that Validate can reject them.
func WithMaxWorkers(n int) Option {
	return func(s *Service) {
		s.maxWorkers = n
	}
}

// WithEarlyExit enables or disables stopping after a critical security
// failure.
func WithEarlyExit(enabled bool) Option {
	return func(s *Service) {
		s.earlyExit = enabled
	}
}

// WithAnalyzerTimeout bounds each analyzer call. Zero means no deadline.
func WithAnalyzerTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithSecurityAnalyzer replaces the priority analyzer.
func WithSecurityAnalyzer(a analysis.Analyzer) Option {
	return func(s *Service) {
		if a != nil {
			s.security = a
		}
	}
}

// WithAnalyzers replaces the analyzers run after security.
func WithAnalyzers(as ...analysis.Analyzer) Option {
	return func(s *Service) {
		s.others = as
	}
}

// WithCacheFactory sets how project caches are built.
func WithCacheFactory(f analysis.CacheFactory) Option {
	return func(s *Service) {
		if f != nil {
			s.cacheFactory = f
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
