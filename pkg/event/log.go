package event

import "sync"

// Log is the append-only event log for one session. It stores events in
// delivery order and does no interpretation or validation of content.
// The mutex makes the transport goroutine's appends safe against
// concurrent snapshot reads from the UI; the projection itself is pure
// and needs no locking.
type Log struct {
	mu     sync.RWMutex
	events []GameEvent
}

// NewLog creates an empty event log.
func NewLog() *Log {
	return &Log{events: make([]GameEvent, 0)}
}

// Append adds events to the end of the log, preserving argument order.
func (l *Log) Append(events ...GameEvent) {
	if len(events) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
}

// Snapshot returns a copy of the full ordered log. Callers may read or
// replay it freely without holding up appends.
func (l *Log) Snapshot() []GameEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]GameEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Since returns a copy of the events appended at or after index n.
// Used for incremental projection on top of a cached state.
func (l *Log) Since(n int) []GameEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(l.events) {
		return nil
	}
	out := make([]GameEvent, len(l.events)-n)
	copy(out, l.events[n:])
	return out
}

// Len returns the number of events currently in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Clear empties the log. Invoked on logout or forced disconnect; there
// is no partial clear.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = l.events[:0]
}
