package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/invitelinks/internal/invites/store"
	"github.com/aussiebroadwan/invitelinks/pkg/httpx"
	"github.com/aussiebroadwan/invitelinks/pkg/jwtx"
	"github.com/aussiebroadwan/invitelinks/pkg/linksdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the database and that verifier keys are loaded
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	linksdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	linksdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	keys *jwtx.KeySet,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &linksdk.HealthChecks{
			Database: "ok",
			Verifier: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if !keys.IsReady() {
			checks.Verifier = "error: no keys loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, linksdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
