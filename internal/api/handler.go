// Package api serves stored report snapshots over HTTP and lets an operator trigger a run.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mtlprog/tinkreport/internal/domain"
	"github.com/mtlprog/tinkreport/internal/report"
	"github.com/mtlprog/tinkreport/internal/snapshot"
)

// ReportRunner renders reports on demand.
type ReportRunner interface {
	Run(ctx context.Context, date time.Time, only string) (report.Result, error)
}

// Handler provides HTTP endpoints for the snapshot API.
type Handler struct {
	snapshots *snapshot.Service
	runner    ReportRunner
	now       func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(snapshots *snapshot.Service, runner ReportRunner) *Handler {
	return &Handler{snapshots: snapshots, runner: runner, now: time.Now}
}

// GenerateResult is the response body of a triggered run.
type GenerateResult struct {
	Files  []string          `json:"files"`
	Failed map[string]string `json:"failed,omitempty"`
}

// GetLatestSnapshot handles GET /api/v1/accounts/{account}/snapshots/latest.
func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")
	s, err := h.snapshots.GetLatest(r.Context(), account)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no snapshots found")
			return
		}
		slog.Error("API: failed to get latest snapshot", "account", account, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetSnapshotByDate handles GET /api/v1/accounts/{account}/snapshots/{date}.
func (h *Handler) GetSnapshotByDate(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")
	dateStr := r.PathValue("date")
	date, err := time.ParseInLocation(time.DateOnly, dateStr, domain.MSK)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	s, err := h.snapshots.GetByDate(r.Context(), account, date)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "snapshot not found for date")
			return
		}
		slog.Error("API: failed to get snapshot by date", "account", account, "date", dateStr, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListSnapshots handles GET /api/v1/accounts/{account}/snapshots.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	const maxLimit = 365
	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxLimit)
		}
	}

	account := r.PathValue("account")
	snapshots, err := h.snapshots.List(r.Context(), account, limit)
	if err != nil {
		slog.Error("API: failed to list snapshots", "account", account, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if snapshots == nil {
		snapshots = []snapshot.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// GenerateReports handles POST /api/v1/reports/generate. The optional account query
// parameter limits the run to one account. Partial failures still return 200 with the
// failed accounts listed.
func (h *Handler) GenerateReports(w http.ResponseWriter, r *http.Request) {
	only := r.URL.Query().Get("account")
	res, err := h.runner.Run(r.Context(), h.now(), only)
	if err != nil && len(res.Files) == 0 && len(res.Failed) == 0 {
		slog.Error("API: report run failed", "account", only, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate reports")
		return
	}

	out := GenerateResult{Files: res.Files}
	if out.Files == nil {
		out.Files = []string{}
	}
	if len(res.Failed) > 0 {
		out.Failed = make(map[string]string, len(res.Failed))
		for id, e := range res.Failed {
			out.Failed[id] = e.Error()
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("API: failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("API: failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
