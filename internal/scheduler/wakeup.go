package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/planit/planit/pkg/entity"
)

// ErrExactDenied reports that the platform refused exact wake-up
// scheduling. It is always recovered locally via the best-effort path,
// never surfaced to callers as a hard failure.
var ErrExactDenied = errors.New("exact wake-up scheduling denied by platform")

// Handle identifies one pending wake-up at the platform boundary.
type Handle string

// FirePayload is the denormalized data delivered back on a fired wake-up,
// enough to present the reminder without a store read.
type FirePayload struct {
	ReminderID   uuid.UUID
	Title        string
	Body         string
	HasVibration bool
	Repetition   entity.Repetition
	At           time.Time
}

// WakeUp is the opaque platform wake-up primitive.
type WakeUp interface {
	ScheduleExactAt(at time.Time, p FirePayload) (Handle, error)
	ScheduleBestEffortAt(at time.Time, p FirePayload) (Handle, error)
	Cancel(h Handle)
	CanScheduleExact() bool
}

// TimerWakeUp is the in-process implementation over time.AfterFunc.
// Exactness is gated by configuration so deployments without precise
// timer guarantees exercise the best-effort path end to end.
type TimerWakeUp struct {
	exactEnabled bool

	mu     sync.Mutex
	sink   func(FirePayload)
	seq    uint64
	timers map[Handle]*time.Timer
}

func NewTimerWakeUp(exactEnabled bool) *TimerWakeUp {
	return &TimerWakeUp{
		exactEnabled: exactEnabled,
		timers:       make(map[Handle]*time.Timer),
	}
}

// Bind installs the fired-wake-up sink. Must be called before scheduling.
func (tw *TimerWakeUp) Bind(sink func(FirePayload)) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.sink = sink
}

func (tw *TimerWakeUp) CanScheduleExact() bool {
	return tw.exactEnabled
}

func (tw *TimerWakeUp) ScheduleExactAt(at time.Time, p FirePayload) (Handle, error) {
	if !tw.exactEnabled {
		return "", ErrExactDenied
	}
	return tw.schedule(at, p)
}

// ScheduleBestEffortAt arms a wake-up with no exactness promise; delivery
// happens at timer granularity some time at or after the instant.
func (tw *TimerWakeUp) ScheduleBestEffortAt(at time.Time, p FirePayload) (Handle, error) {
	return tw.schedule(at, p)
}

func (tw *TimerWakeUp) schedule(at time.Time, p FirePayload) (Handle, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.sink == nil {
		return "", errors.New("wake-up sink is not bound")
	}
	tw.seq++
	h := Handle(fmt.Sprintf("%s/%d", p.ReminderID, tw.seq))
	tw.timers[h] = time.AfterFunc(time.Until(at), func() {
		tw.mu.Lock()
		delete(tw.timers, h)
		sink := tw.sink
		tw.mu.Unlock()
		sink(p)
	})
	return h, nil
}

func (tw *TimerWakeUp) Cancel(h Handle) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if t, ok := tw.timers[h]; ok {
		t.Stop()
		delete(tw.timers, h)
	}
}

// Close stops every pending timer. Registered as a shutdown cleanup job.
func (tw *TimerWakeUp) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	for h, t := range tw.timers {
		t.Stop()
		delete(tw.timers, h)
	}
	return nil
}
