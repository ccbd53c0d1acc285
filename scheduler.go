package desim

import "container/heap"

// Priority determines tie-breaking among events scheduled for the same
// virtual time. Smaller values run first.
type Priority int

const (
	// Urgent is used for the engine's own bookkeeping events (Process
	// Initialize, Interruption) so they pre-empt ordinary events scheduled
	// for the same instant.
	Urgent Priority = 0
	// Normal is the default priority for Event.Succeed/Event.Fail and
	// Timeout.
	Normal Priority = 1
)

// scheduleEntry is the scheduler's heap element: a 4-tuple of
// (time, priority, seq, event). seq is a strictly increasing insertion
// counter that breaks ties within equal (time, priority), giving FIFO
// semantics, exactly as spec.md §3 requires.
type scheduleEntry struct {
	time  Time
	prio  Priority
	seq   uint64
	event *Event
}

// scheduleHeap is a min-heap of scheduleEntry ordered by
// (time, priority, seq). Grounded on eventloop/loop.go's timerHeap, which
// orders by deadline alone; this adds the priority and seq tiebreakers
// spec.md's scheduled-entry model requires.
type scheduleHeap []*scheduleEntry

func (h scheduleHeap) Len() int { return len(h) }

func (h scheduleHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	if h[i].prio != h[j].prio {
		return h[i].prio < h[j].prio
	}
	return h[i].seq < h[j].seq
}

func (h scheduleHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scheduleHeap) Push(x any) {
	*h = append(*h, x.(*scheduleEntry))
}

func (h *scheduleHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}

var _ heap.Interface = (*scheduleHeap)(nil)
