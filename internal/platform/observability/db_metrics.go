package observability

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const gormStartKey = "observability:start"

// ObserveDB times fn under the logical operation op.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.observe(op, start, err)
	return err
}

func (p *Prom) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		status = "error"
		p.DbErrorsTotal.WithLabelValues(op, classifyDBErr(err)).Inc()
	}
	p.DbQueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}

// GormPlugin records every gorm statement as "<kind>:<table>" in the DB metrics.
func (p *Prom) GormPlugin() gorm.Plugin {
	return &gormMetrics{prom: p}
}

type gormMetrics struct {
	prom *Prom
}

func (g *gormMetrics) Name() string { return "observability:metrics" }

func (g *gormMetrics) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("observability:before_create", g.before),
		cb.Create().After("gorm:create").Register("observability:after_create", g.after("create")),
		cb.Query().Before("gorm:query").Register("observability:before_query", g.before),
		cb.Query().After("gorm:query").Register("observability:after_query", g.after("query")),
		cb.Update().Before("gorm:update").Register("observability:before_update", g.before),
		cb.Update().After("gorm:update").Register("observability:after_update", g.after("update")),
		cb.Delete().Before("gorm:delete").Register("observability:before_delete", g.before),
		cb.Delete().After("gorm:delete").Register("observability:after_delete", g.after("delete")),
		cb.Row().Before("gorm:row").Register("observability:before_row", g.before),
		cb.Row().After("gorm:row").Register("observability:after_row", g.after("row")),
		cb.Raw().Before("gorm:raw").Register("observability:before_raw", g.before),
		cb.Raw().After("gorm:raw").Register("observability:after_raw", g.after("raw")),
	)
}

func (g *gormMetrics) before(tx *gorm.DB) {
	tx.InstanceSet(gormStartKey, time.Now())
}

func (g *gormMetrics) after(kind string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(gormStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		op := kind
		if table := tx.Statement.Table; table != "" {
			op += ":" + table
		}
		g.prom.observe(op, start, tx.Error)
	}
}

func classifyDBErr(err error) string {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "unique_violation"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return "unique_violation"
		case "40001":
			return "serialization_failure"
		case "40P01":
			return "deadlock"
		case "57014":
			return "query_canceled"
		default:
			return "pg_" + pgErr.Code
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}
