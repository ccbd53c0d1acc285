package resource

import (
	"container/heap"
	"sort"

	desim "github.com/cristiklein/simpy"
)

// Request is the Event returned by Resource.Request (and the Priority and
// Preemptive variants' Request methods). It succeeds once a slot is
// available; the caller then holds the resource until it calls Release.
type Request struct {
	*desim.Event

	priority  int
	preempt   bool
	requestAt desim.Time
	seq       uint64
	proc      *desim.Process

	index int // position in the owning Resource's queue heap, or -1 once admitted
}

// Priority returns the key the request was queued with (0 for a plain
// Resource, which only ever uses priority 0).
func (req *Request) Priority() int { return req.priority }

// Preempt reports whether the request is allowed to bump a lower-priority
// user of a PreemptiveResource.
func (req *Request) Preempt() bool { return req.preempt }

// RequestedAt returns the simulation time the request was made.
func (req *Request) RequestedAt() desim.Time { return req.requestAt }

func (req *Request) lessThan(other *Request) bool {
	if req.priority != other.priority {
		return req.priority < other.priority
	}
	if req.requestAt != other.requestAt {
		return req.requestAt < other.requestAt
	}
	return req.seq < other.seq
}

// requestHeap orders pending Requests by (priority, requestAt, seq), the
// policy PriorityResource and PreemptiveResource use; a plain Resource
// queues every Request at priority 0, under which this degenerates to
// plain FIFO. Grounded on the core scheduler's scheduleHeap, applied here
// to a second ordering key.
type requestHeap []*Request

func (h requestHeap) Len() int            { return len(h) }
func (h requestHeap) Less(i, j int) bool  { return h[i].lessThan(h[j]) }
func (h requestHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *requestHeap) Push(x any) {
	req := x.(*Request)
	req.index = len(*h)
	*h = append(*h, req)
}
func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	req := old[n-1]
	old[n-1] = nil
	req.index = -1
	*h = old[:n-1]
	return req
}

var _ heap.Interface = (*requestHeap)(nil)

// PreemptionCause is the Interrupt cause delivered to a PreemptiveResource
// user that has been bumped by a higher-priority, preempt-flagged
// request. Grounded on spec.md §4.6's `{by, usage_since}` payload.
type PreemptionCause struct {
	By         *Request
	UsageSince desim.Time
}

// Resource is an N-slot semaphore: Request succeeds once fewer than
// Capacity users hold it, queueing otherwise; Release frees a slot and
// re-runs the service loop so a waiter can be admitted. Grounded on
// spec.md §4.6.
type Resource struct {
	env        *desim.Environment
	capacity   int
	users      []*Request
	queue      requestHeap
	preemptive bool
	seq        uint64
}

// NewResource creates a Resource with the given number of slots.
func NewResource(env *desim.Environment, capacity int) *Resource {
	return &Resource{env: env, capacity: capacity}
}

// Capacity returns the total number of slots.
func (r *Resource) Capacity() int { return r.capacity }

// Count returns the number of slots currently in use.
func (r *Resource) Count() int { return len(r.users) }

// Users returns the requests currently holding the resource, in
// admission order.
func (r *Resource) Users() []*Request {
	out := make([]*Request, len(r.users))
	copy(out, r.users)
	return out
}

// Queue returns the requests currently waiting, in policy order.
func (r *Resource) Queue() []*Request {
	out := make([]*Request, len(r.queue))
	copy(out, r.queue)
	sort.Slice(out, func(i, j int) bool { return out[i].lessThan(out[j]) })
	return out
}

// Request queues a plain (priority-0, non-preempting) acquisition
// request and returns its Event.
func (r *Resource) Request() *Request {
	return r.request(0, false)
}

// Release frees req's slot, or removes it from the queue if it was still
// waiting (e.g. abandoned via an Interrupt), then re-runs the service
// loop.
func (r *Resource) Release(req *Request) {
	r.removeUser(req)
	if req.index >= 0 {
		heap.Remove(&r.queue, req.index)
	}
	r.runService()
}

func (r *Resource) request(priority int, preempt bool) *Request {
	r.seq++
	req := &Request{
		Event:     r.env.NewEvent(),
		priority:  priority,
		preempt:   preempt,
		requestAt: r.env.Now(),
		seq:       r.seq,
		proc:      r.env.ActiveProcess(),
	}
	heap.Push(&r.queue, req)
	r.runService()
	return req
}

func (r *Resource) removeUser(req *Request) {
	for i, u := range r.users {
		if u == req {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return
		}
	}
}

// runService admits queued requests while slots are free; once full, a
// PreemptiveResource additionally tries to bump its worst user on behalf
// of the best queued preempt-flagged request.
func (r *Resource) runService() {
	runService(func() bool {
		if len(r.users) < r.capacity && len(r.queue) > 0 {
			req := heap.Pop(&r.queue).(*Request)
			r.users = append(r.users, req)
			_ = req.Succeed(nil)
			r.env.Logger().Log(desim.LogEntry{
				Level:    desim.LevelDebug,
				Category: "resource",
				Time:     r.env.Now(),
				Message:  "resource admitted request",
				Fields:   map[string]any{"priority": req.priority, "in_use": len(r.users), "capacity": r.capacity},
			})
			return true
		}
		if r.preemptive && len(r.users) >= r.capacity {
			return r.tryPreempt()
		}
		return false
	})
}

// tryPreempt bumps the worst current user on behalf of the best queued
// request, if that request is preempt-flagged and its key is strictly
// better than the worst user's. The candidate is always the queue's
// current head, never a later waiter, so preemption cannot cut in front
// of an earlier, higher-priority queued request (spec.md §4.6).
func (r *Resource) tryPreempt() bool {
	if len(r.queue) == 0 {
		return false
	}
	candidate := r.queue[0]
	if !candidate.preempt {
		return false
	}
	worst := r.worstUser()
	if worst == nil || worst.proc == nil || !candidate.lessThan(worst) {
		return false
	}
	heap.Pop(&r.queue)
	r.removeUser(worst)
	r.users = append(r.users, candidate)
	_ = candidate.Succeed(nil)
	r.env.Logger().Log(desim.LogEntry{
		Level:    desim.LevelInfo,
		Category: "resource",
		Time:     r.env.Now(),
		Message:  "resource preempted worst user",
		Fields:   map[string]any{"preempted_priority": worst.priority, "by_priority": candidate.priority},
	})
	worst.proc.Interrupt(&PreemptionCause{By: candidate, UsageSince: worst.requestAt})
	return true
}

func (r *Resource) worstUser() *Request {
	if len(r.users) == 0 {
		return nil
	}
	worst := r.users[0]
	for _, u := range r.users[1:] {
		if worst.lessThan(u) {
			worst = u
		}
	}
	return worst
}

// PriorityResource is a Resource whose Request method takes an explicit
// priority key; equal-priority waiters are still served FIFO by arrival.
// Grounded on spec.md §4.6.
type PriorityResource struct {
	*Resource
}

// NewPriorityResource creates a PriorityResource with the given number of
// slots.
func NewPriorityResource(env *desim.Environment, capacity int) *PriorityResource {
	return &PriorityResource{Resource: &Resource{env: env, capacity: capacity}}
}

// Request queues a priority-ordered, non-preempting acquisition request.
func (r *PriorityResource) Request(priority int) *Request {
	return r.request(priority, false)
}

// PreemptiveResource is a PriorityResource whose Request additionally
// accepts a preempt flag: when the resource is full, a preempt-flagged
// request with a strictly better key than the worst current user bumps
// that user instead of queueing behind it. Grounded on spec.md §4.6.
type PreemptiveResource struct {
	*PriorityResource
}

// NewPreemptiveResource creates a PreemptiveResource with the given
// number of slots.
func NewPreemptiveResource(env *desim.Environment, capacity int) *PreemptiveResource {
	res := &Resource{env: env, capacity: capacity, preemptive: true}
	return &PreemptiveResource{PriorityResource: &PriorityResource{Resource: res}}
}

// Request queues an acquisition request with the given priority and
// preempt flag.
func (r *PreemptiveResource) Request(priority int, preempt bool) *Request {
	return r.request(priority, preempt)
}
