package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mtlprog/tinkreport/internal/report"
	"github.com/mtlprog/tinkreport/internal/snapshot"
)

type mockSnapshotRepo struct {
	snapshots     map[string][]snapshot.Snapshot
	lastListLimit int
	lastDate      time.Time
}

func (m *mockSnapshotRepo) Save(_ context.Context, _ string, _ time.Time, _ json.RawMessage) error {
	return nil
}

func (m *mockSnapshotRepo) GetLatest(_ context.Context, accountID string) (*snapshot.Snapshot, error) {
	list := m.snapshots[accountID]
	if len(list) == 0 {
		return nil, snapshot.ErrNotFound
	}
	return &list[0], nil
}

func (m *mockSnapshotRepo) GetByDate(_ context.Context, accountID string, date time.Time) (*snapshot.Snapshot, error) {
	m.lastDate = date
	for _, s := range m.snapshots[accountID] {
		if s.SnapshotDate.Equal(date) {
			return &s, nil
		}
	}
	return nil, snapshot.ErrNotFound
}

func (m *mockSnapshotRepo) List(_ context.Context, accountID string, limit int) ([]snapshot.Snapshot, error) {
	m.lastListLimit = limit
	list := m.snapshots[accountID]
	if limit > len(list) {
		limit = len(list)
	}
	return list[:limit], nil
}

type mockRunner struct {
	res  report.Result
	err  error
	only string
}

func (m *mockRunner) Run(_ context.Context, _ time.Time, only string) (report.Result, error) {
	m.only = only
	return m.res, m.err
}

func newTestRepo() *mockSnapshotRepo {
	data, _ := json.Marshal(map[string]string{"title": "Main"})
	return &mockSnapshotRepo{snapshots: map[string][]snapshot.Snapshot{
		"A1": {
			{ID: 2, AccountID: "A1", SnapshotDate: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), Data: data},
			{ID: 1, AccountID: "A1", SnapshotDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Data: data},
		},
	}}
}

func serve(t *testing.T, srv *http.Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	return w
}

func TestGetLatestSnapshot(t *testing.T) {
	srv := NewServer("0", snapshot.NewService(newTestRepo()), nil, "")

	tests := []struct {
		name   string
		path   string
		status int
		wantID int64
	}{
		{"found", "/api/v1/accounts/A1/snapshots/latest", http.StatusOK, 2},
		{"unknown account", "/api/v1/accounts/B9/snapshots/latest", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, srv, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.wantID == 0 {
				return
			}
			var result snapshot.Snapshot
			if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if result.ID != tt.wantID {
				t.Errorf("snapshot ID = %d, want %d", result.ID, tt.wantID)
			}
		})
	}
}

func TestGetSnapshotByDate(t *testing.T) {
	repo := newTestRepo()
	srv := NewServer("0", snapshot.NewService(repo), nil, "")

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"found", "/api/v1/accounts/A1/snapshots/2024-01-15", http.StatusOK},
		{"missing day", "/api/v1/accounts/A1/snapshots/2024-01-14", http.StatusNotFound},
		{"invalid date", "/api/v1/accounts/A1/snapshots/not-a-date", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, srv, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}

	if !repo.lastDate.Equal(time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("repo queried with %v, want the calendar day at UTC midnight", repo.lastDate)
	}
}

func TestListSnapshots(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
		wantCount int
	}{
		{"explicit limit", "?limit=1", 1, 1},
		{"capped at 365", "?limit=9999", 365, 2},
		{"negative falls back to default", "?limit=-5", 30, 2},
		{"default", "", 30, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo()
			srv := NewServer("0", snapshot.NewService(repo), nil, "")

			w := serve(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/A1/snapshots"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if repo.lastListLimit != tt.wantLimit {
				t.Errorf("limit passed to repo = %d, want %d", repo.lastListLimit, tt.wantLimit)
			}
			var result []snapshot.Snapshot
			if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(result) != tt.wantCount {
				t.Errorf("snapshot count = %d, want %d", len(result), tt.wantCount)
			}
		})
	}
}

func TestListSnapshotsEmptyIsArray(t *testing.T) {
	srv := NewServer("0", snapshot.NewService(newTestRepo()), nil, "")

	w := serve(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/B9/snapshots", nil))
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", got)
	}
}

func TestGenerateReports(t *testing.T) {
	runner := &mockRunner{res: report.Result{
		Files:  []string{"out/A1.xlsx"},
		Failed: map[string]error{"A4": errors.New("gateway down")},
	}, err: errors.New("account A4: gateway down")}
	srv := NewServer("0", snapshot.NewService(newTestRepo()), runner, "secret-key")

	t.Run("unauthorized", func(t *testing.T) {
		w := serve(t, srv, httptest.NewRequest(http.MethodPost, "/api/v1/reports/generate", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("partial failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/generate?account=A1", nil)
		req.Header.Set("Authorization", "Bearer secret-key")
		w := serve(t, srv, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if runner.only != "A1" {
			t.Errorf("runner called for %q, want A1", runner.only)
		}
		var result GenerateResult
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(result.Files) != 1 || result.Failed["A4"] != "gateway down" {
			t.Errorf("result = %+v", result)
		}
	})
}

func TestGenerateReportsTotalFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("listing accounts: timeout")}
	srv := NewServer("0", snapshot.NewService(newTestRepo()), runner, "")

	w := serve(t, srv, httptest.NewRequest(http.MethodPost, "/api/v1/reports/generate", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestGenerateReportsDisabledWithoutRunner(t *testing.T) {
	srv := NewServer("0", snapshot.NewService(newTestRepo()), nil, "")

	w := serve(t, srv, httptest.NewRequest(http.MethodPost, "/api/v1/reports/generate", nil))
	if w.Code == http.StatusOK {
		t.Error("generate endpoint should not be registered without a runner")
	}
}
