package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// comparisonsTotal counts comparisons by test and outcome
	comparisonsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qastats_comparisons_total",
		Help: "Total two-sample comparisons by test and outcome",
	}, []string{"test", "outcome"})

	// sampleSize tracks the size of each group that reached the engine
	sampleSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "qastats_sample_size",
		Help:    "Observations per group passed to the statistics engine",
		Buckets: prometheus.ExponentialBuckets(2, 2, 12), // 2 to 4096
	})

	// workbooksStored tracks uploaded workbooks currently held in memory
	workbooksStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qastats_workbooks_stored",
		Help: "Uploaded workbooks currently held in memory",
	})
)

// Outcome labels
const (
	OutcomeSignificant    = "significant"
	OutcomeNotSignificant = "not_significant"
	OutcomeInterval       = "interval"
	OutcomeError          = "error"
)

// ObserveComparison records one finished comparison
func ObserveComparison(test, outcome string) {
	comparisonsTotal.WithLabelValues(test, outcome).Inc()
}

// ObserveSamples records the two group sizes of a comparison
func ObserveSamples(n1, n2 int) {
	sampleSize.Observe(float64(n1))
	sampleSize.Observe(float64(n2))
}

// SetWorkbooksStored records the current workbook store size
func SetWorkbooksStored(n int) {
	workbooksStored.Set(float64(n))
}
