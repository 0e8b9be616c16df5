package service

import (
	"sync"

	"github.com/google/uuid"
)

type changeKind int

const (
	reminderChanged changeKind = iota
	activityChanged
)

type changeEvent struct {
	Kind       changeKind
	ReminderID uuid.UUID
}

// ChangeBus fans store change events out to live query subscribers.
// Push-based invalidation: any delivered event makes a watcher re-evaluate
// its whole query, so dropping an event while another one is already queued
// for the same subscriber loses nothing.
type ChangeBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan changeEvent
}

func NewChangeBus() *ChangeBus {
	return &ChangeBus{
		subs: make(map[int]chan changeEvent),
	}
}

func (b *ChangeBus) subscribe() (int, <-chan changeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	ch := make(chan changeEvent, 1)
	b.subs[b.nextID] = ch
	return b.nextID, ch
}

func (b *ChangeBus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *ChangeBus) publish(ev changeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
