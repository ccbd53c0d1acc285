package desim

// Routine is the body of a Process: it runs on a dedicated goroutine and
// suspends by calling Process.Yield. Its return value (or error) becomes
// the Process Event's outcome.
type Routine func(p *Process) (any, error)

type processDone struct {
	value any
	err   error
}

type processResume struct {
	value any
	err   error
}

// Process drives a Routine, resuming it each time the Event it is
// currently waiting on fires. Grounded on spec.md §4.3, implemented as a
// dedicated goroutine handed off across two unbuffered channels so that
// exactly one of {driver, routine} is ever doing work at a time --- the
// nearest Go equivalent of the suspendable-coroutine facility spec.md §9
// calls for.
type Process struct {
	*Event
	env     *Environment
	routine Routine

	target       *Event
	targetHandle CallbackHandle

	yieldCh  chan *Event
	doneCh   chan processDone
	resumeCh chan processResume
}

// Process constructs a Process wrapping routine. Construction schedules a
// private Initialize event at now, Urgent priority, which performs the
// routine's first step when it fires.
func (env *Environment) Process(routine Routine) *Process {
	p := &Process{
		Event:    newEvent(env),
		env:      env,
		routine:  routine,
		yieldCh:  make(chan *Event),
		doneCh:   make(chan processDone),
		resumeCh: make(chan processResume),
	}

	init := newEvent(env)
	init.triggered = true
	init.ok = true
	env.schedule(init, Urgent, 0)
	p.target = init

	_, _ = init.AddCallback(func(*Event) {
		env.activeProcess = p
		go p.run()
		p.awaitSuspension()
		env.activeProcess = nil
	})

	return p
}

// IsAlive reports whether the Process's underlying Event has not yet been
// processed. A routine that has just returned stays alive until its
// Event is processed.
func (p *Process) IsAlive() bool { return !p.processed }

// Target returns the Event the Process is currently suspended on, or the
// private Initialize event before the routine has taken its first step.
func (p *Process) Target() *Event { return p.target }

// Yield suspends the calling routine until awaitable fires, returning its
// success value or failure. It must be called only from within the
// Process's own Routine. Yielding an already-processed Event is a
// programming error (spec.md §4.3's deferred-value rule): the routine
// should use the Event's Value()/Err() directly instead.
func (p *Process) Yield(awaitable Awaitable) (any, error) {
	target := awaitable.baseEvent()
	if target.processed {
		panic(newUserError("cannot yield a processed event"))
	}
	p.yieldCh <- target
	resp := <-p.resumeCh
	return resp.value, resp.err
}

// run executes the routine on its own goroutine. A panic inside the
// routine (including Yield's own programming-error panics) is converted
// into the Process's failure rather than crashing the program.
func (p *Process) run() {
	defer func() {
		if r := recover(); r != nil {
			var err error
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = &PanicError{Value: r}
			}
			p.doneCh <- processDone{err: err}
		}
	}()
	v, err := p.routine(p)
	p.doneCh <- processDone{value: v, err: err}
}

// awaitSuspension blocks until the routine either yields a new target or
// terminates, and reacts accordingly. It is called by the driver
// goroutine (whichever goroutine is currently inside Environment.Step)
// and never overlaps with the routine goroutine doing work, preserving
// the single-active-execution-context invariant.
func (p *Process) awaitSuspension() {
	select {
	case target := <-p.yieldCh:
		p.target = target
		p.targetHandle, _ = target.AddCallback(p.onTargetFired)
	case msg := <-p.doneCh:
		p.finish(msg)
	}
}

// onTargetFired is the resume callback attached to whatever Event the
// Process is currently waiting on.
func (p *Process) onTargetFired(fired *Event) {
	p.env.activeProcess = p
	if fired.ok {
		p.resumeCh <- processResume{value: fired.value}
	} else {
		fired.Defuse()
		p.resumeCh <- processResume{err: fired.err}
	}
	p.awaitSuspension()
	p.env.activeProcess = nil
}

// finish records the routine's terminal outcome on the Process's own
// Event: success on normal return, failure (left un-defused, so Step
// surfaces it when nobody is awaiting the Process) on error or panic.
func (p *Process) finish(msg processDone) {
	if msg.err != nil {
		p.env.logger.Log(LogEntry{
			Level:    LevelWarn,
			Category: "process",
			Time:     p.env.now,
			Message:  "process terminated with failure",
			Err:      msg.err,
		})
		p.mustFail(msg.err)
		return
	}
	p.env.logger.Log(LogEntry{
		Level:    LevelDebug,
		Category: "process",
		Time:     p.env.now,
		Message:  "process terminated",
	})
	p.mustSucceed(msg.value)
}
