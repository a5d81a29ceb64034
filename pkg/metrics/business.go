package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const businessSubsystem = "paygate"

var (
	bpOnce sync.Once
	bpDur  *prometheus.HistogramVec
)

func businessProcess() *prometheus.HistogramVec {
	bpOnce.Do(func() {
		metric, _ := register(NewMetric(MetricsBusinessProcess, businessSubsystem))
		bpDur = metric.(*prometheus.HistogramVec)
	})
	return bpDur
}

// ObserveBusinessProcess records the time spent in a business step since start.
func ObserveBusinessProcess(typ, subtype string, start time.Time) {
	businessProcess().WithLabelValues(typ, subtype).Observe(MillisecondsSince(start))
}
