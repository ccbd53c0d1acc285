package desim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnyOf_ResolvesWithFirstFirer(t *testing.T) {
	env := NewEnvironment()
	t1 := env.Timeout(1, "spam")
	t2 := env.Timeout(2, "eggs")

	cond := env.AnyOf(t1, t2)
	require.NoError(t, env.RunUntilEvent(cond))
	assert.Equal(t, Time(1), env.Now())

	result := cond.Value().(ConditionResult)
	require.Len(t, result, 1)
	assert.Equal(t, Awaitable(t1), result[0].Event)
	assert.Equal(t, "spam", result[0].Value)
}

func TestAllOf_ResolvesWithDeclaredOrderRegardlessOfFiringOrder(t *testing.T) {
	env := NewEnvironment()
	t1 := env.Timeout(2, "eggs")
	t2 := env.Timeout(1, "spam")

	all := env.AllOf(t1, t2)
	require.NoError(t, env.RunUntilEvent(all))
	assert.Equal(t, Time(2), env.Now())

	result := all.Value().(ConditionResult)
	require.Len(t, result, 2)
	assert.Equal(t, Awaitable(t1), result[0].Event)
	assert.Equal(t, "eggs", result[0].Value)
	assert.Equal(t, Awaitable(t2), result[1].Event)
	assert.Equal(t, "spam", result[1].Value)
}

func TestAllOf_ShortCircuitsOnFailure(t *testing.T) {
	env := NewEnvironment()
	ok := env.NewEvent()
	fails := env.NewEvent()

	all := env.AllOf(ok, fails)
	require.NoError(t, fails.Fail(nil))
	require.NoError(t, env.Step()) // process fails
	require.Error(t, env.Step())   // process all; nothing handles its failure

	assert.True(t, all.Processed())
	assert.False(t, all.OK())
	assert.False(t, ok.Processed())
}

func TestConditionResult_Get(t *testing.T) {
	env := NewEnvironment()
	t1 := env.Timeout(1, "spam")
	t2 := env.Timeout(2, "eggs")

	all := env.AllOf(t1, t2)
	require.NoError(t, env.RunUntilEvent(all))

	result := all.Value().(ConditionResult)
	v, ok := result.Get(t1)
	require.True(t, ok)
	assert.Equal(t, "spam", v)
}

func TestAnyOf_LateFailingChildDoesNotSurfaceFromStep(t *testing.T) {
	env := NewEnvironment()
	winner := env.Timeout(1, "spam")
	failing := env.NewEvent()

	cond := env.AnyOf(winner, failing)
	require.NoError(t, env.RunUntilEvent(cond))
	assert.True(t, cond.OK())

	require.NoError(t, failing.Fail(errors.New("late")))
	require.NoError(t, env.Step()) // failing fires after cond already resolved
	assert.True(t, failing.Processed())
}

func TestAnyOf_AlreadyProcessedChildResolvesImmediately(t *testing.T) {
	env := NewEnvironment()
	ev := env.NewEvent()
	require.NoError(t, ev.Succeed("now"))
	require.NoError(t, env.Step())
	require.True(t, ev.Processed())

	cond := env.AnyOf(ev)
	assert.True(t, cond.Triggered())
}
