package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records attendance and summary activity. It satisfies app.Observer.
type Metrics struct {
	// Attendance writes by result ("ok", "rejected")
	AttendanceUpserts *prometheus.CounterVec

	// Stored statuses outside the vocabulary, read back as unmarked
	StatusNormalizationFailures prometheus.Counter

	// Groups skipped because their schedule spec does not parse
	ScheduleParseFailures prometheus.Counter

	SummaryDuration prometheus.Histogram
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AttendanceUpserts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jimpitan_attendance_upserts_total",
			Help: "Total attendance upserts by result",
		}, []string{"result"}),

		StatusNormalizationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "jimpitan_status_normalization_failures_total",
			Help: "Stored attendance statuses that could not be mapped to a canonical status",
		}),

		ScheduleParseFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "jimpitan_schedule_parse_failures_total",
			Help: "Duty group schedule specs that could not be parsed",
		}),

		SummaryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jimpitan_summary_duration_seconds",
			Help:    "Duration of group participation summaries",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) AttendanceUpserted(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "rejected"
	}
	m.AttendanceUpserts.WithLabelValues(result).Inc()
}

func (m *Metrics) StatusNormalizationFailed() {
	if m != nil {
		m.StatusNormalizationFailures.Inc()
	}
}

func (m *Metrics) ScheduleParseFailed() {
	if m != nil {
		m.ScheduleParseFailures.Inc()
	}
}

func (m *Metrics) SummaryComputed(d time.Duration) {
	if m != nil {
		m.SummaryDuration.Observe(d.Seconds())
	}
}
