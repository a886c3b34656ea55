package di

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskandtime_backend/internal/platform/observability"
)

func TestNewReadyChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("db ping is recorded in the DB metrics", func(t *testing.T) {
		sqlDB, err := setupDB(t).DB()
		require.NoError(t, err)
		prom := observability.NewProm(prometheus.NewRegistry())

		checks := NewReadyChecks(sqlDB, nil, prom)
		require.Len(t, checks, 1)
		assert.Equal(t, "db", checks[0].Name)

		require.NoError(t, checks[0].Ping(ctx))
		assert.Equal(t, 1, testutil.CollectAndCount(prom.DbQueryDuration))
		assert.Equal(t, 0, testutil.CollectAndCount(prom.DbErrorsTotal))

		require.NoError(t, sqlDB.Close())
		assert.Error(t, checks[0].Ping(ctx))
		assert.Equal(t, 1, testutil.CollectAndCount(prom.DbErrorsTotal))
	})

	t.Run("without metrics", func(t *testing.T) {
		sqlDB, err := setupDB(t).DB()
		require.NoError(t, err)

		checks := NewReadyChecks(sqlDB, nil, nil)
		require.Len(t, checks, 1)
		assert.NoError(t, checks[0].Ping(ctx))
	})

	t.Run("redis check is added when a client exists", func(t *testing.T) {
		sqlDB, err := setupDB(t).DB()
		require.NoError(t, err)
		rdb, mock := redismock.NewClientMock()
		defer func() { _ = rdb.Close() }()
		mock.ExpectPing().SetVal("PONG")

		checks := NewReadyChecks(sqlDB, rdb, nil)
		require.Len(t, checks, 2)
		assert.Equal(t, "redis", checks[1].Name)
		assert.NoError(t, checks[1].Ping(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
