package exporter

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ukwa-discovery/title-export/models"
)

// Metrics bundles Prometheus collectors for the export job.
type Metrics struct {
	Registry    *prometheus.Registry
	RecordCount *prometheus.GaugeVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	recordCount := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "title_export_record_count",
			Help: "Number of records per kind and status for the latest export run.",
		},
		[]string{"kind", "status"},
	)

	registry.MustRegister(recordCount)

	return &Metrics{
		Registry:    registry,
		RecordCount: recordCount,
	}
}

// Set publishes the counters of a completed run.
func (m *Metrics) Set(c models.RunCounters) {
	if m == nil {
		return
	}

	m.RecordCount.WithLabelValues("targets", "_any_").Set(float64(c.Targets))
	m.RecordCount.WithLabelValues("collections", "_any_").Set(float64(c.Collections))
	m.RecordCount.WithLabelValues("collections", "published").Set(float64(c.CollectionsPublished))
	m.RecordCount.WithLabelValues("subjects", "_any_").Set(float64(c.Subjects))
	m.RecordCount.WithLabelValues("subjects", "published").Set(float64(c.SubjectsPublished))

	m.RecordCount.WithLabelValues("title_level", "complete").Set(float64(c.Published))
	m.RecordCount.WithLabelValues("title_level", "blocked").Set(float64(c.Blocked))
	m.RecordCount.WithLabelValues("title_level", "missing").Set(float64(c.Missing))
	m.RecordCount.WithLabelValues("title_level", "embargoed").Set(float64(c.Embargoed))
}
