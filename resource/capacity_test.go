package resource

import (
	"errors"
	"testing"

	desim "github.com/cristiklein/simpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_CapacitySafety(t *testing.T) {
	env := desim.NewEnvironment()
	res := NewResource(env, 2)

	var trace []string
	car := func(name string, arrival, duration desim.Time) desim.Routine {
		return func(p *desim.Process) (any, error) {
			if _, err := p.Yield(env.Timeout(arrival, nil)); err != nil {
				return nil, err
			}
			req := res.Request()
			if _, err := p.Yield(req); err != nil {
				return nil, err
			}
			trace = append(trace, name+" charge")
			require.LessOrEqual(t, res.Count(), res.Capacity())
			if _, err := p.Yield(env.Timeout(duration, nil)); err != nil {
				res.Release(req)
				return nil, err
			}
			res.Release(req)
			trace = append(trace, name+" leave")
			return nil, nil
		}
	}

	for i, arrival := range []desim.Time{0, 2, 4, 6} {
		env.Process(car(charName(i), arrival, 5))
	}

	require.NoError(t, env.Run())
	assert.Equal(t, []string{
		"car0 charge",
		"car1 charge",
		"car0 leave",
		"car2 charge",
		"car1 leave",
		"car3 charge",
		"car2 leave",
		"car3 leave",
	}, trace)
}

func charName(i int) string {
	return "car" + string(rune('0'+i))
}

func TestPriorityResource_EqualPriorityIsFIFO(t *testing.T) {
	env := desim.NewEnvironment()
	res := NewPriorityResource(env, 1)

	var order []string
	worker := func(name string, priority int) desim.Routine {
		return func(p *desim.Process) (any, error) {
			req := res.Request(priority)
			if _, err := p.Yield(req); err != nil {
				return nil, err
			}
			order = append(order, name)
			res.Release(req)
			return nil, nil
		}
	}

	env.Process(worker("first", 0))
	env.Process(worker("second", 0))

	require.NoError(t, env.Run())
	assert.Equal(t, []string{"first", "second"}, order)
}

// A preempt-flagged request with a strictly better priority than the
// worst current user bumps that user even if another, non-preempting
// request has been queued longer: C (priority -1, preempting) arrives
// after B (priority 0, non-preempting) but still cuts in ahead of it,
// because the queue is ordered by priority first, so C heads the queue
// and, as the head, is compared against the current user A. B's earlier
// arrival only wins it FIFO position among equal-priority requests.
func TestPreemptiveResource_BetterPriorityPreemptsCurrentUser(t *testing.T) {
	env := desim.NewEnvironment()
	res := NewPreemptiveResource(env, 1)

	var served []string
	var preemptedBy *Request
	user := func(name string, arrival, duration desim.Time, priority int, preempt bool) desim.Routine {
		return func(p *desim.Process) (any, error) {
			if _, err := p.Yield(env.Timeout(arrival, nil)); err != nil {
				return nil, err
			}
			started := false
			remaining := duration
			for remaining > 0 {
				req := res.Request(priority, preempt)
				if _, err := p.Yield(req); err != nil {
					return nil, err
				}
				if !started {
					served = append(served, name)
					started = true
				}
				start := env.Now()
				_, err := p.Yield(env.Timeout(remaining, nil))
				var interrupt *desim.Interrupt
				if errors.As(err, &interrupt) {
					if cause, ok := interrupt.Cause.(*PreemptionCause); ok {
						preemptedBy = cause.By
					}
					remaining -= env.Now() - start
					continue
				}
				if err != nil {
					res.Release(req)
					return nil, err
				}
				remaining = 0
				res.Release(req)
			}
			return nil, nil
		}
	}

	env.Process(user("A", 0, 3, 0, false))
	env.Process(user("B", 1, 3, 0, false))
	env.Process(user("C", 2, 1, -1, true))

	require.NoError(t, env.Run())
	assert.Equal(t, []string{"A", "C", "B"}, served)
	require.NotNil(t, preemptedBy)
	assert.Equal(t, -1, preemptedBy.Priority())
}
