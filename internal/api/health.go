// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/bookshelfie/shelfie/internal/platform/constants"
	"github.com/bookshelfie/shelfie/internal/platform/postgres"
	"github.com/bookshelfie/shelfie/internal/platform/redis"
	"github.com/bookshelfie/shelfie/internal/platform/respond"
)

// # Health Probes

type healthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// handleLiveness reports that the process is up. It deliberately checks
// nothing else; a wedged database must not get the process restarted.
func handleLiveness(writer http.ResponseWriter, request *http.Request) {
	respond.JSON(writer, http.StatusOK, healthStatus{
		Status:  "ok",
		Version: constants.AppVersion,
	})
}

// handleReadiness reports whether the server can do useful work: both the
// primary database and the cache must answer a ping.
func handleReadiness(pool *pgxpool.Pool, cache *goredis.Client) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		checks := map[string]string{
			"postgres": "ok",
			"redis":    "ok",
		}
		healthy := true

		if err := postgres.Ping(request.Context(), pool); err != nil {
			checks["postgres"] = err.Error()
			healthy = false
		}
		if err := redis.Ping(request.Context(), cache); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}

		status := http.StatusOK
		body := healthStatus{Status: "ok", Version: constants.AppVersion, Checks: checks}
		if !healthy {
			status = http.StatusServiceUnavailable
			body.Status = "degraded"
		}

		respond.JSON(writer, status, body)
	}
}
