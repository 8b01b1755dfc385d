package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	service "github.com/okian/autograder/internal/app"
	"github.com/okian/autograder/internal/domain/dedupe"
	"github.com/okian/autograder/pkg/logger"
	"github.com/okian/autograder/pkg/metrics"
)

const maxRequestBytes = 1 << 16

// gradeRequest is the body of POST /grade.
type gradeRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// GradeHandler runs a grading per request. A project is graded by at most
// one request at a time.
type GradeHandler struct {
	grader   Grader
	inflight dedupe.Deduper
	root     string
	logger   logger.Logger
}

// HandleGrade handles POST /grade requests.
func (h *GradeHandler) HandleGrade(w http.ResponseWriter, r *http.Request) {
	const op = "api.grade"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	var req gradeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: missing path", op, ErrBadRequest))
		return
	}
	mode, err := service.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
		return
	}
	path, err := h.resolve(req.Path)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden", fmt.Errorf("%s: %w", op, err))
		return
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		if err == nil {
			err = fs.ErrInvalid
		}
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%s: project %s: %w", op, req.Path, err))
		return
	}
	if path, err = h.confine(path); err != nil {
		writeError(w, http.StatusForbidden, "forbidden", fmt.Errorf("%s: %w", op, err))
		return
	}

	if !h.inflight.Claim(ctx, path) {
		writeError(w, http.StatusConflict, "busy", fmt.Errorf("%s: %w", op, ErrBusy))
		return
	}
	metrics.UpdateGradingsInFlight(h.inflight.Size())
	defer func() {
		h.inflight.Release(ctx, path)
		metrics.UpdateGradingsInFlight(h.inflight.Size())
	}()

	report, err := h.grader.Run(ctx, path, mode)
	if err != nil {
		h.logger.Error(ctx, "grading failed", logger.String("path", path), logger.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidConfig) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "grading_failed", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// resolve maps a request path to an absolute project directory, confined
// to the projects root when one is set. The check is lexical; confine
// repeats it once the path is known to exist.
func (h *GradeHandler) resolve(p string) (string, error) {
	if h.root == "" {
		return filepath.Abs(p)
	}
	root, err := filepath.Abs(h.root)
	if err != nil {
		return "", err
	}
	target := p
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)
	if !within(root, target) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	return target, nil
}

// confine resolves symlinks in an existing project path and checks the
// real directory against the real projects root.
func (h *GradeHandler) confine(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOutsideRoot, err)
	}
	if h.root == "" {
		return resolved, nil
	}
	root, err := filepath.Abs(h.root)
	if err != nil {
		return "", err
	}
	if root, err = filepath.EvalSymlinks(root); err != nil {
		return "", fmt.Errorf("%w: %w", ErrOutsideRoot, err)
	}
	if !within(root, resolved) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return resolved, nil
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
