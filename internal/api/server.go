package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/mtlprog/tinkreport/internal/snapshot"
)

// NewServer creates an HTTP server with all routes configured. runner may be nil, which
// leaves the generate endpoint unregistered.
func NewServer(port string, snapshots *snapshot.Service, runner ReportRunner, adminAPIKey string) *http.Server {
	handler := NewHandler(snapshots, runner)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/accounts/{account}/snapshots/latest", handler.GetLatestSnapshot)
	mux.HandleFunc("GET /api/v1/accounts/{account}/snapshots/{date}", handler.GetSnapshotByDate)
	mux.HandleFunc("GET /api/v1/accounts/{account}/snapshots", handler.ListSnapshots)

	if runner != nil {
		generateHandler := http.HandlerFunc(handler.GenerateReports)
		if adminAPIKey != "" {
			mux.Handle("POST /api/v1/reports/generate", requireAuth(adminAPIKey, generateHandler))
		} else {
			mux.Handle("POST /api/v1/reports/generate", generateHandler)
		}
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
