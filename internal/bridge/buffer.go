package bridge

import (
	"sync"

	"github.com/hightidelight/osc-bridge/internal/highlight"
)

// Buffer is an unbounded FIFO of events shared by one producer and one
// consumer. The lock is held only to append or to swap out the whole queue.
type Buffer struct {
	mu     sync.Mutex
	events []highlight.Event

	// onDepth, if set, sees every new queue length while the lock is held.
	onDepth func(n int)
}

// Push appends ev and returns the queue length after the append.
func (b *Buffer) Push(ev highlight.Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	b.depthChanged()
	return len(b.events)
}

// Drain removes and returns every queued event in enqueue order. It returns
// nil when the buffer is empty.
func (b *Buffer) Drain() []highlight.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	events := b.events
	b.events = nil
	b.depthChanged()
	return events
}

func (b *Buffer) depthChanged() {
	if b.onDepth != nil {
		b.onDepth(len(b.events))
	}
}

// Len returns the number of queued events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
