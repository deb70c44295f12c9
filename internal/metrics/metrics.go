// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PartQueries counts listing requests by result: ok, invalid, error.
	PartQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partpal",
		Name:      "part_queries_total",
		Help:      "Parts listing queries by result.",
	}, []string{"result"})

	// MigratedRows counts migration row outcomes: created, updated, failed.
	MigratedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partpal",
		Name:      "migrated_rows_total",
		Help:      "Rows processed by the SQLite to PostgreSQL migration.",
	}, []string{"table", "outcome"})

	DecodeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partpal",
		Name:      "migration_decode_failures_total",
		Help:      "Encoded fields that could not be decoded and were nulled.",
	}, []string{"table", "field"})
)
