package di

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"

	"taskandtime_backend/internal/platform/http/handler"
	"taskandtime_backend/internal/platform/observability"
)

// NewReadyChecks builds the /readyz checks. The database ping is recorded in
// the DB metrics as "ping" when prom is set. rdb may be nil.
func NewReadyChecks(sqlDB *sql.DB, rdb *redis.Client, prom *observability.Prom) []handler.Check {
	dbPing := sqlDB.PingContext
	if prom != nil {
		dbPing = func(ctx context.Context) error {
			return prom.ObserveDB("ping", func() error { return sqlDB.PingContext(ctx) })
		}
	}

	checks := []handler.Check{{Name: "db", Ping: dbPing}}
	if rdb != nil {
		checks = append(checks, handler.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	return checks
}
