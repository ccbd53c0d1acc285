package desim

// ConditionEntry is one child's contribution to a Condition's result,
// preserved in the declared order of the child list regardless of the
// order the children actually fired in.
type ConditionEntry struct {
	Event Awaitable
	Value any
}

// ConditionResult is the value a Condition succeeds with: one entry per
// child that had already fired by the time the Condition resolved, in
// declared order. Grounded on spec.md §4.2's "mapping from child-event to
// its value, in iteration order of the child-event list".
type ConditionResult []ConditionEntry

// Get returns the value contributed by child, and whether child had fired
// by the time the Condition resolved.
func (r ConditionResult) Get(child Awaitable) (any, bool) {
	target := child.baseEvent()
	for _, entry := range r {
		if entry.Event.baseEvent() == target {
			return entry.Value, true
		}
	}
	return nil, false
}

// conditionPredicate decides, given the number of children that have
// fired so far and the total child count, whether the Condition should
// now succeed.
type conditionPredicate func(fired, total int) bool

// Condition is an Event that aggregates a fixed set of child Events under
// a predicate over how many of them have fired. AllOf and AnyOf are the
// only exported constructors; newCondition accepts a general predicate
// (e.g. "at least 2 of 3") but is internal to this package. Grounded on
// eventloop/promise.go's All/Race/AllSettled combinators, which likewise
// attach one observer per child and race a shared completion predicate.
type Condition struct {
	*Event
	children  []Awaitable
	predicate conditionPredicate
	fired     int
	results   []ConditionEntry // indexed parallel to children; nil entry until fired
	haveValue []bool
}

// newCondition wires up a Condition over children under predicate. Any
// child already processed at construction time contributes to the result
// immediately; if the predicate already holds, the Condition succeeds
// right away (scheduled at now, per spec.md §4.2). Otherwise an observer
// callback is attached to every not-yet-processed child.
func newCondition(env *Environment, children []Awaitable, predicate conditionPredicate) *Condition {
	c := &Condition{
		Event:     newEvent(env),
		children:  children,
		predicate: predicate,
		results:   make([]ConditionEntry, len(children)),
		haveValue: make([]bool, len(children)),
	}

	for i, child := range children {
		base := child.baseEvent()
		if base.processed {
			if c.handleFired(i, base) {
				return c
			}
		}
	}

	for i, child := range children {
		base := child.baseEvent()
		if base.processed {
			continue
		}
		idx := i
		// AddCallback cannot fail here: base is, by construction, not yet
		// processed.
		_, _ = base.AddCallback(func(fired *Event) {
			if c.triggered {
				// The Condition already resolved without this child; a late
				// failure is still ours to handle, not to re-raise.
				if !fired.ok {
					fired.Defuse()
				}
				return
			}
			c.handleFired(idx, fired)
		})
	}

	return c
}

// handleFired records child idx's outcome and, if it resolves the
// Condition (by failure short-circuit or by satisfying the predicate),
// triggers it and reports true.
func (c *Condition) handleFired(idx int, fired *Event) bool {
	if c.haveValue[idx] {
		return c.triggered
	}
	c.haveValue[idx] = true
	c.fired++
	c.results[idx] = ConditionEntry{Event: c.children[idx], Value: fired.value}

	if !fired.ok {
		fired.Defuse()
		c.env.logger.Log(LogEntry{
			Level:    LevelWarn,
			Category: "condition",
			Time:     c.env.now,
			Message:  "condition failed on child",
			Err:      fired.err,
			Fields:   map[string]any{"child_index": idx},
		})
		c.mustFail(fired.err)
		return true
	}
	if c.predicate(c.fired, len(c.children)) {
		c.succeedWithResult()
		return true
	}
	return false
}

func (c *Condition) succeedWithResult() {
	out := make(ConditionResult, 0, len(c.results))
	for i, got := range c.haveValue {
		if got {
			out = append(out, c.results[i])
		}
	}
	c.env.logger.Log(LogEntry{
		Level:    LevelDebug,
		Category: "condition",
		Time:     c.env.now,
		Message:  "condition resolved",
		Fields:   map[string]any{"fired": c.fired, "total": len(c.children)},
	})
	c.mustSucceed(out)
}

// AllOf builds a Condition that succeeds once every one of events has
// fired, with its result holding every child's value in declared order.
func (env *Environment) AllOf(events ...Awaitable) *Condition {
	return newCondition(env, events, func(fired, total int) bool { return fired == total })
}

// AnyOf builds a Condition that succeeds once at least one of events has
// fired, with its result holding the value(s) of whichever child(ren) had
// already fired at that instant, in declared order.
func (env *Environment) AnyOf(events ...Awaitable) *Condition {
	return newCondition(env, events, func(fired, total int) bool { return fired >= 1 })
}
