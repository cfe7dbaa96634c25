package multibuf

// subscriber pairs a handler with its registration id so handlers fire
// in subscription order.
type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers a handler for aggregate edit events. Handlers run
// synchronously, in emission order, after the mutation that produced
// the event has been committed; a handler therefore observes the
// post-event state through Snapshot. Handlers must not call mutation
// methods on the same MultiBuffer. The returned function unsubscribes.
func (m *MultiBuffer) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// Events returns a channel carrying aggregate edit events in order,
// plus a cancel function. The channel is buffered (see WithEventBuffer);
// when it fills, event delivery blocks until the consumer drains or
// cancels. The channel is never closed; stop reading after cancel.
func (m *MultiBuffer) Events() (<-chan Event, func()) {
	m.mu.Lock()
	size := m.eventBuffer
	m.mu.Unlock()

	ch := make(chan Event, size)
	done := make(chan struct{})
	unsubscribe := m.Subscribe(func(e Event) {
		select {
		case ch <- e:
		case <-done:
		}
	})
	return ch, func() {
		unsubscribe()
		close(done)
	}
}

// handlersLocked snapshots the current subscriber list. Callers hold mu.
func (m *MultiBuffer) handlersLocked() []subscriber {
	out := make([]subscriber, len(m.subs))
	copy(out, m.subs)
	return out
}

// deliver fans events out to handlers, one event at a time, preserving
// order for every subscriber. Called with emitMu held and mu released.
func deliver(handlers []subscriber, events []Event) {
	for _, e := range events {
		for _, h := range handlers {
			h.fn(e)
		}
	}
}
