package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, "prod").Debug("hidden")
	assert.Zero(t, buf.Len())

	newLogger(&buf, "dev").Debug("shown", "k", "v")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestTraceHandler_AddsIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.InfoContext(ctx, "with span")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rec["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", rec["span_id"])

	buf.Reset()
	log.With("component", "x").InfoContext(context.Background(), "no span")
	rec = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, rec, "trace_id")
	assert.Equal(t, "x", rec["component"])
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "test", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestProm_GinHandleMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewProm(prometheus.NewRegistry())

	r := gin.New()
	r.Use(p.GinHandleMiddleware())
	r.GET("/users/auth/findById/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/users/auth/findById/1", "/users/auth/findById/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "/users/auth/findById/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.InFlight.WithLabelValues("GET", "unmatched")))
}

func TestProm_ObserveDB(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	require.NoError(t, p.ObserveDB("ping", func() error { return nil }))
	err := p.ObserveDB("ping", func() error { return errors.New("connection refused") })
	assert.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("ping", "connection")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.DbQueryDuration))
}

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&pgconn.PgError{Code: "23505"}, "unique_violation"},
		{gorm.ErrDuplicatedKey, "unique_violation"},
		{&pgconn.PgError{Code: "40P01"}, "deadlock"},
		{&pgconn.PgError{Code: "42P01"}, "pg_42P01"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("boom"), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyDBErr(tt.err), tt.err.Error())
	}
}

type widget struct {
	ID   uint
	Name string `gorm:"uniqueIndex"`
}

func TestGormPlugin(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&widget{}))
	require.NoError(t, db.Use(p.GormPlugin()))

	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
	require.Error(t, db.Create(&widget{Name: "a"}).Error)
	var w widget
	require.ErrorIs(t, db.Where("name = ?", "missing").First(&w).Error, gorm.ErrRecordNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("create:widgets", "unique_violation")))
	// not found is an ordinary outcome
	assert.Equal(t, 1, testutil.CollectAndCount(p.DbErrorsTotal))
}
