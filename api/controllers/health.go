package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/swiftretail/pos-backend/api/responses"
	"github.com/swiftretail/pos-backend/pkg/config"
	"github.com/swiftretail/pos-backend/pkg/db"
	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
	"github.com/swiftretail/pos-backend/pkg/logger"
	"github.com/swiftretail/pos-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SwiftPOS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the datastore and, when configured, Redis.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SwiftPOS-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"db": "ok"}

		if err := dbP.Ping(ctx); err != nil {
			checks["db"] = "unreachable"
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable").WithDetails(checks))
			return
		}

		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Ping(ctx); err != nil {
				checks["redis"] = "unreachable"
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable").WithDetails(checks))
				return
			}
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
