package desim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterrupt_DeliversBeforeOriginalTimeout(t *testing.T) {
	env := NewEnvironment()
	var gotInterrupt bool
	var interruptedAt Time

	victim := env.Process(func(p *Process) (any, error) {
		_, err := p.Yield(env.Timeout(5, nil))
		var interrupt *Interrupt
		if errors.As(err, &interrupt) {
			gotInterrupt = true
			interruptedAt = env.Now()
			return "interrupted", nil
		}
		return "timed out", nil
	})

	env.Process(func(p *Process) (any, error) {
		if _, err := p.Yield(env.Timeout(3, nil)); err != nil {
			return nil, err
		}
		victim.Interrupt("driver wants the slot")
		return nil, nil
	})

	require.NoError(t, env.Run())
	assert.True(t, gotInterrupt)
	assert.Equal(t, Time(3), interruptedAt)
	assert.Equal(t, "interrupted", victim.Value())
}

func TestInterrupt_CauseIsPreserved(t *testing.T) {
	env := NewEnvironment()
	cause := "because"
	var seenCause any

	victim := env.Process(func(p *Process) (any, error) {
		_, err := p.Yield(env.Timeout(1, nil))
		var interrupt *Interrupt
		if errors.As(err, &interrupt) {
			seenCause = interrupt.Cause
		}
		return nil, nil
	})

	victim.Interrupt(cause)

	require.NoError(t, env.Run())
	assert.Equal(t, cause, seenCause)
}

func TestInterrupt_OnTerminatedProcessIsNoOp(t *testing.T) {
	env := NewEnvironment()
	p := env.Process(func(p *Process) (any, error) {
		return "done", nil
	})
	require.NoError(t, env.RunUntilEvent(p))

	assert.NotPanics(t, func() {
		p.Interrupt("too late")
	})
	require.NoError(t, env.Run())
}
