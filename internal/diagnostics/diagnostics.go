// Package diagnostics periodically samples lightweight runtime counters
// and feeds them into the trace recorder as EventCounter records, the way
// cmd/monitor's status-poll loop samples a device on an interval and logs
// what it finds.
package diagnostics

import (
	"time"

	"domes/internal/taskmanager"
	"domes/internal/trace"
)

// DefaultPeriod is how often Sampler takes a reading.
const DefaultPeriod = 10 * time.Second

// Counter IDs, carried in a trace.Event's Arg1/TaskID fields (arg2 holds
// the sampled value). These are process-local identifiers, not part of
// the pod-to-pod wire protocol.
const (
	CounterTraceDropped uint16 = iota
	CounterTasksRunning
	CounterUptimeS
)

// Source supplies the values a Sampler reads each tick. Implementations
// must be safe to call from the sampler's own task.
type Source interface {
	TraceDropped() uint32
	TasksRunning() int
}

// Clock returns monotonic microseconds, matching the clock shape used
// throughout (mode.Clock, game.Clock, peer.Clock).
type Clock func() int64

// Sampler owns the periodic counter-sampling task.
type Sampler struct {
	recorder *trace.Recorder
	source   Source
	clock    Clock
	period   time.Duration

	startedAtUs int64
}

// NewSampler returns a Sampler that records into recorder every period
// (DefaultPeriod if period <= 0).
func NewSampler(recorder *trace.Recorder, source Source, clock Clock, period time.Duration) *Sampler {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Sampler{recorder: recorder, source: source, clock: clock, period: period, startedAtUs: clock()}
}

// Run is a taskmanager.TaskFunc: it samples once every period until
// shouldRun returns false.
func (s *Sampler) Run(shouldRun func() bool) {
	ticker := time.NewTicker(pollSlice)
	defer ticker.Stop()

	next := s.clock() + microseconds(s.period)
	for shouldRun() {
		<-ticker.C
		now := s.clock()
		if now < next {
			continue
		}
		next = now + microseconds(s.period)
		s.sample(now)
	}
}

// pollSlice bounds how often Run wakes to check shouldRun/elapsed time;
// it is independent of the sampling period itself.
const pollSlice = 200 * time.Millisecond

func microseconds(d time.Duration) int64 { return int64(d / time.Microsecond) }

func (s *Sampler) sample(nowUs int64) {
	uptimeS := uint32((nowUs - s.startedAtUs) / 1_000_000)

	s.record(CounterTraceDropped, s.source.TraceDropped(), nowUs)
	s.record(CounterTasksRunning, uint32(s.source.TasksRunning()), nowUs)
	s.record(CounterUptimeS, uptimeS, nowUs)
}

func (s *Sampler) record(counter uint16, value uint32, nowUs int64) {
	s.recorder.Record(trace.Event{
		TimestampUs: uint32(nowUs),
		TaskID:      counter,
		EventType:   trace.EventCounter,
		Flags:       trace.NewFlags(trace.CategoryKernel),
		Arg1:        uint32(counter),
		Arg2:        value,
	})
}

// TaskManagerSource adapts a *taskmanager.Manager and *trace.Recorder to
// the Source interface.
type TaskManagerSource struct {
	Tasks    *taskmanager.Manager
	Recorder *trace.Recorder
}

func (t TaskManagerSource) TraceDropped() uint32 { return t.Recorder.DroppedCount() }
func (t TaskManagerSource) TasksRunning() int    { return len(t.Tasks.Running()) }
