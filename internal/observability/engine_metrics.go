package observability

import (
	"sync/atomic"
)

// EngineMetrics tracks registration-engine outcomes in-process, mirroring
// the atomic-counter shape the teacher used for background job outcomes
// (claimed/done/failed/retried), retargeted at register/unregister
// results instead of job results.
type EngineMetrics struct {
	confirmed    atomic.Uint64
	waitlisted   atomic.Uint64
	eventFull    atomic.Uint64
	contention   atomic.Uint64
	promoted     atomic.Uint64
	unregistered atomic.Uint64

	retryCount atomic.Uint64
	retryMax   atomic.Int64
}

func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{}
}

func (m *EngineMetrics) IncConfirmed()    { m.confirmed.Add(1) }
func (m *EngineMetrics) IncWaitlisted()   { m.waitlisted.Add(1) }
func (m *EngineMetrics) IncEventFull()    { m.eventFull.Add(1) }
func (m *EngineMetrics) IncContention()   { m.contention.Add(1) }
func (m *EngineMetrics) IncPromoted()     { m.promoted.Add(1) }
func (m *EngineMetrics) IncUnregistered() { m.unregistered.Add(1) }

// ObserveRetries records how many ConditionFailed re-decisions an
// operation needed before committing (0 means it succeeded on the first
// attempt).
func (m *EngineMetrics) ObserveRetries(attempts int) {
	m.retryCount.Add(1)
	for {
		curr := m.retryMax.Load()
		if int64(attempts) <= curr {
			return
		}
		if m.retryMax.CompareAndSwap(curr, int64(attempts)) {
			return
		}
	}
}

type EngineMetricsSnapshot struct {
	Confirmed    uint64
	Waitlisted   uint64
	EventFull    uint64
	Contention   uint64
	Promoted     uint64
	Unregistered uint64
	Operations   uint64
	MaxRetries   int64
}

func (m *EngineMetrics) Snapshot() EngineMetricsSnapshot {
	return EngineMetricsSnapshot{
		Confirmed:    m.confirmed.Load(),
		Waitlisted:   m.waitlisted.Load(),
		EventFull:    m.eventFull.Load(),
		Contention:   m.contention.Load(),
		Promoted:     m.promoted.Load(),
		Unregistered: m.unregistered.Load(),
		Operations:   m.retryCount.Load(),
		MaxRetries:   m.retryMax.Load(),
	}
}
