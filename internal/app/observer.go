package app

import "time"

// Observer receives counters for the non-fatal conditions the services degrade on.
// The prometheus implementation lives in infra/metrics.
type Observer interface {
	AttendanceUpserted(ok bool)
	StatusNormalizationFailed()
	ScheduleParseFailed()
	SummaryComputed(elapsed time.Duration)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) AttendanceUpserted(bool)       {}
func (NopObserver) StatusNormalizationFailed()    {}
func (NopObserver) ScheduleParseFailed()          {}
func (NopObserver) SummaryComputed(time.Duration) {}
