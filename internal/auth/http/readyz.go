package http

import (
	"net/http"
	"time"

	"github.com/Noctuaa/coach-appointment-manager/internal/auth/store"
	"github.com/Noctuaa/coach-appointment-manager/pkg/httpx"
)

type healthChecks struct {
	Database string `json:"database"`
}

// ReadyzHandler is the readiness probe: 200 only while the store answers a
// ping, 503 otherwise so load balancers drain the instance.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := healthChecks{Database: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, healthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
