package desim

import (
	"fmt"
	"time"
)

// RealtimeEnvironment wraps an Environment and paces Step/Run so that
// virtual time advances no faster than wall-clock time, per factor
// seconds of wall-clock per unit of virtual time. Grounded on spec.md
// §6's real-time collaborator paragraph: the core exposes Step as a
// single extensibility point, and this type is exactly that --- a thin
// decorator, not a core change.
//
// Supplemented beyond spec.md's one paragraph (per SPEC_FULL.md §C.1):
// a strict mode that surfaces slippage as an error instead of silently
// letting the simulation fall behind wall-clock time.
type RealtimeEnvironment struct {
	*Environment
	factor float64
	strict bool

	wallStart time.Time
	simStart  Time
}

// RealtimeOption configures a RealtimeEnvironment.
type RealtimeOption func(*RealtimeEnvironment)

// WithFactor sets the wall-clock seconds per unit of virtual time.
// The default, if omitted, is 1.0.
func WithFactor(factor float64) RealtimeOption {
	return func(r *RealtimeEnvironment) { r.factor = factor }
}

// WithStrict causes Step to return a SlippageError instead of silently
// running behind schedule when a step's deadline has already passed.
func WithStrict() RealtimeOption {
	return func(r *RealtimeEnvironment) { r.strict = true }
}

// NewRealtimeEnvironment wraps a freshly constructed Environment (built
// with envOpts) in real-time pacing.
func NewRealtimeEnvironment(envOpts []EnvOption, opts ...RealtimeOption) *RealtimeEnvironment {
	env := NewEnvironment(envOpts...)
	r := &RealtimeEnvironment{
		Environment: env,
		factor:      1.0,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.wallStart = time.Now()
	r.simStart = env.Now()
	return r
}

// SlippageError reports that a real-time Step fell behind the wall-clock
// deadline its virtual time implied, under strict pacing.
type SlippageError struct {
	Expected time.Duration
	Actual   time.Duration
}

func (e *SlippageError) Error() string {
	return fmt.Sprintf(
		"desim: real-time step fell behind: expected to run by %v, took %v",
		e.Expected, e.Actual,
	)
}

// Step paces itself to wall-clock time before delegating to the wrapped
// Environment's Step: it sleeps, if necessary, until the next scheduled
// entry's virtual time is due according to factor. Under strict pacing,
// a step whose deadline has already elapsed returns a *SlippageError
// instead of running immediately.
func (r *RealtimeEnvironment) Step() error {
	deadline := r.Peek()
	if !isFinite(deadline) {
		return r.Environment.Step()
	}

	target := r.wallStart.Add(time.Duration(float64(time.Second) * r.factor * (deadline - r.simStart)))
	now := time.Now()
	if now.After(target) {
		if r.strict {
			return &SlippageError{Expected: target.Sub(r.wallStart), Actual: now.Sub(r.wallStart)}
		}
	} else {
		time.Sleep(target.Sub(now))
	}
	return r.Environment.Step()
}

// Run drives Step in a loop until the schedule is empty, exactly like
// Environment.Run, but through the paced Step above.
func (r *RealtimeEnvironment) Run() error {
	for {
		err := r.Step()
		if err == ErrEmptySchedule {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func isFinite(t Time) bool {
	return t == t && t < 1e308 && t > -1e308
}
