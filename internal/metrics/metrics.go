// Package metrics exposes the Prometheus instruments for the settlement
// engine. All instruments register on the default registry; the server
// serves them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestBatches counts bulk-add calls that reached storage.
	IngestBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settleup_ingest_batches_total",
		Help: "Number of bulk participant ingestion batches processed.",
	})

	// IngestEntries counts names submitted after normalization.
	IngestEntries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settleup_ingest_entries_total",
		Help: "Number of normalized entries submitted for ingestion.",
	})

	// LinksCreated counts bucket-participant links actually created,
	// i.e. the sum of every batch's inserted count.
	LinksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settleup_links_created_total",
		Help: "Number of bucket-participant links created by ingestion.",
	})

	// SettledToggles counts settled-flag updates, labeled by direction.
	SettledToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settleup_settled_toggles_total",
		Help: "Number of settled-flag toggles, by resulting state.",
	}, []string{"settled"})
)
