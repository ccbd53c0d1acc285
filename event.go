package desim

// Time is the type of the simulation's virtual clock. It is a plain
// floating-point count of simulation-defined units, matching the
// fractional delays used throughout spec examples (e.g. a tick of 0.5).
type Time = float64

// Awaitable is anything a Process can Yield: an Event, or any type that
// embeds *Event (Timeout, Process, Condition all do, so the method below
// is promoted automatically).
type Awaitable interface {
	baseEvent() *Event
}

// callback is invoked when the Event it was registered on is processed.
type callback func(*Event)

// callbackEntry pairs a callback with a handle so it can be removed again
// (Go function values are not comparable, so identity is tracked via an
// explicit monotonically increasing id instead).
type callbackEntry struct {
	id uint64
	fn callback
}

// CallbackHandle identifies a previously registered callback, returned by
// Event.AddCallback and accepted by Event.RemoveCallback.
type CallbackHandle uint64

// Event is a triggerable value-or-failure carrier with an ordered list of
// callbacks. It is the base of every other event-like type in this
// package (Timeout, Process, Condition) via struct embedding.
//
// Lifecycle: untriggered -> triggered (scheduled) -> processed. Once
// processed, callbacks is nil and no further callback may be attached or
// trigger attempted; both are programming errors reported as UserError.
type Event struct {
	env *Environment

	value any
	ok    bool
	err   error

	triggered bool
	processed bool
	defused   bool

	callbacks []callbackEntry
	nextCBID  uint64
}

var _ Awaitable = (*Event)(nil)

// newEvent creates an Event owned by env, untriggered.
func newEvent(env *Environment) *Event {
	return &Event{env: env}
}

// NewEvent creates a new, untriggered Event owned by the Environment. It
// is exported for user code that wants to hand out a bare signal (e.g. a
// "done" flag) without the baggage of a Timeout, Process, or Condition.
func (env *Environment) NewEvent() *Event {
	return newEvent(env)
}

func (e *Event) baseEvent() *Event { return e }

// Triggered reports whether Succeed/Fail has been called (equivalently,
// whether the Event is scheduled or already processed).
func (e *Event) Triggered() bool { return e.triggered }

// Processed reports whether the Environment has already fired every
// callback registered on this Event.
func (e *Event) Processed() bool { return e.processed }

// OK reports whether a triggered Event succeeded (true) or failed
// (false). It is meaningless before the Event is triggered.
func (e *Event) OK() bool { return e.ok }

// Value returns the success value (meaningless, and likely nil, before
// the Event is triggered, or if the Event failed).
func (e *Event) Value() any { return e.value }

// Err returns the failure value, or nil if the Event has not failed.
func (e *Event) Err() error { return e.err }

// Defuse marks a failed Event so that an unhandled failure is not
// re-raised at process time. It is a no-op on a successful Event.
func (e *Event) Defuse() { e.defused = true }

// AddCallback appends cb to the Event's callback list, returning a handle
// that can later be passed to RemoveCallback. It is a UserError to call
// this once the Event has been processed.
func (e *Event) AddCallback(cb callback) (CallbackHandle, error) {
	if e.processed {
		return 0, newUserError("cannot add a callback to a processed event")
	}
	e.nextCBID++
	id := e.nextCBID
	e.callbacks = append(e.callbacks, callbackEntry{id: id, fn: cb})
	return CallbackHandle(id), nil
}

// RemoveCallback removes a previously registered callback. It is a no-op
// if the handle is unknown or the Event has already been processed
// (processed Events have already nilled their callback list).
func (e *Event) RemoveCallback(h CallbackHandle) {
	for i, entry := range e.callbacks {
		if entry.id == uint64(h) {
			e.callbacks = append(e.callbacks[:i], e.callbacks[i+1:]...)
			return
		}
	}
}

// Succeed marks the Event triggered with a success value, scheduling it
// at the owning Environment's current time with Normal priority. It is a
// UserError to call Succeed or Fail more than once on the same Event.
func (e *Event) Succeed(value any) error {
	if e.triggered {
		return newUserError("event has already been triggered")
	}
	e.triggered = true
	e.ok = true
	e.value = value
	e.env.schedule(e, Normal, 0)
	return nil
}

// Fail marks the Event triggered with a failure, scheduling it at the
// owning Environment's current time with Normal priority. It is a
// UserError to call Succeed or Fail more than once on the same Event.
func (e *Event) Fail(err error) error {
	if e.triggered {
		return newUserError("event has already been triggered")
	}
	if err == nil {
		err = newUserError("fail called with a nil error")
	}
	e.triggered = true
	e.ok = false
	e.err = err
	e.env.schedule(e, Normal, 0)
	return nil
}

// mustSucceed/mustFail are used internally where the caller has already
// guaranteed the Event is untriggered (e.g. Timeout/Process/Condition
// construction), so a UserError here would indicate an engine bug.
func (e *Event) mustSucceed(value any) {
	if err := e.Succeed(value); err != nil {
		panic(err)
	}
}

func (e *Event) mustFail(err error) {
	if ferr := e.Fail(err); ferr != nil {
		panic(ferr)
	}
}

// process marks the Event processed, then fires every callback that was
// registered on it, in insertion order. Called exactly once by the
// scheduler.
func (e *Event) process() {
	cbs := e.callbacks
	e.callbacks = nil
	e.processed = true
	for _, entry := range cbs {
		entry.fn(e)
	}
}

// Or builds an AnyOf condition from e and other, per spec.md's
// disjunction shorthand.
func (e *Event) Or(other Awaitable) *Condition {
	return e.env.AnyOf(e, other)
}

// And builds an AllOf condition from e and other, per spec.md's
// conjunction shorthand.
func (e *Event) And(other Awaitable) *Condition {
	return e.env.AllOf(e, other)
}
