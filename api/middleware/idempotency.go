package middleware

import (
	"net/http"
	"time"

	"github.com/swiftretail/pos-backend/api/responses"
	pkgerrors "github.com/swiftretail/pos-backend/pkg/errors"
	"github.com/swiftretail/pos-backend/pkg/logger"
	"github.com/swiftretail/pos-backend/pkg/redis"
)

const idempotencyHeader = "X-Idempotency-Key"

// Idempotency rejects a repeated mutation carrying the same X-Idempotency-Key
// within the TTL. The header is optional; requests without it pass through. A
// nil client (Redis not configured) disables the guard entirely.
func Idempotency(client *redis.Client, scope string, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if client == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ok, err := client.SetNX(ctx, client.IdempotencyKey(scope, key), "1", ttl)
			if err != nil {
				// the guard is best-effort; a broken Redis never blocks sales
				if logg != nil {
					logg.Warn(ctx, "idempotency check unavailable, letting request through")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				responses.WriteError(ctx, logg, w,
					pkgerrors.New(pkgerrors.CodeIdempotency, "this request was already processed").
						WithDetails(map[string]any{"idempotency_key": key}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
