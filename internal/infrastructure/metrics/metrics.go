// Package metrics exposes allocation results as Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eshaffer321/costshare/internal/domain/allocator"
)

const namespace = "costshare"

// Recorder records allocation runs. A nil *Recorder is valid and records nothing.
type Recorder struct {
	runs          prometheus.Counter
	warnings      *prometheus.CounterVec
	projectCost   *prometheus.GaugeVec
	unassigned    prometheus.Gauge
	totalCost     prometheus.Gauge
	snapshotSaves prometheus.Counter
}

// NewRecorder creates a recorder and registers its collectors.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_runs_total",
			Help:      "Number of billing computations.",
		}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_warnings_total",
			Help:      "Allocation warnings by code.",
		}, []string{"code"}),
		projectCost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "project_allocated_dollars",
			Help:      "Monthly cost allocated to each project in the last run.",
		}, []string{"project"}),
		unassigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unassigned_dollars",
			Help:      "Monthly cost with no project in the last run.",
		}),
		totalCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_dollars",
			Help:      "Total monthly cost in the last run.",
		}),
		snapshotSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_recorded_total",
			Help:      "Number of monthly snapshots recorded.",
		}),
	}

	reg.MustRegister(r.runs, r.warnings, r.projectCost, r.unassigned, r.totalCost, r.snapshotSaves)
	return r
}

// ObserveRun records one ComputeBilling result and its summary.
func (r *Recorder) ObserveRun(result *allocator.Result, summary allocator.Summary) {
	if r == nil {
		return
	}

	r.runs.Inc()
	for _, w := range result.Warnings {
		r.warnings.WithLabelValues(string(w.Code)).Inc()
	}

	r.projectCost.Reset()
	for id, pb := range result.Projects {
		if id == allocator.UnassignedProjectID {
			continue
		}
		r.projectCost.WithLabelValues(id).Set(pb.Total)
	}
	r.unassigned.Set(summary.Unassigned)
	r.totalCost.Set(summary.Total)
}

// ObserveSnapshot counts a recorded snapshot.
func (r *Recorder) ObserveSnapshot() {
	if r == nil {
		return
	}
	r.snapshotSaves.Inc()
}
