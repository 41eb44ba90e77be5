package dbx

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/metrics"
)

// InstrumentedDB wraps a DBTX and records statement counts and latency in
// the Prometheus collectors of package metrics.
type InstrumentedDB struct {
	db DBTX
}

// Instrument returns db wrapped with metrics recording.
func Instrument(db DBTX) *InstrumentedDB {
	return &InstrumentedDB{db: db}
}

func (i *InstrumentedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := i.db.ExecContext(ctx, query, args...)
	observe(query, start, err)
	return res, err
}

func (i *InstrumentedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := i.db.QueryContext(ctx, query, args...)
	observe(query, start, err)
	return rows, err
}

// QueryRowContext records the statement as successful: *sql.Row defers its
// error until Scan.
func (i *InstrumentedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := i.db.QueryRowContext(ctx, query, args...)
	observe(query, start, nil)
	return row
}

func observe(query string, start time.Time, err error) {
	kind := statementKind(query)
	metrics.DBQueryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.DBQueriesTotal.WithLabelValues(kind, statusOf(err)).Inc()
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case IsConstraint(err):
		return metrics.StatusConstraint
	default:
		return metrics.StatusError
	}
}

// statementKind returns the upper-cased leading keyword of query.
func statementKind(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}
