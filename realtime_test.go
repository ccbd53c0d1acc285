package desim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealtimeEnvironment_PacesStepsByFactor(t *testing.T) {
	r := NewRealtimeEnvironment(nil, WithFactor(0.01))
	r.Timeout(2, nil)

	start := time.Now()
	require.NoError(t, r.Run())
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	assert.Equal(t, Time(2), r.Now())
}

func TestRealtimeEnvironment_StrictModeReportsSlippage(t *testing.T) {
	r := NewRealtimeEnvironment(nil, WithFactor(0.001), WithStrict())
	r.Timeout(1, nil)

	time.Sleep(20 * time.Millisecond) // fall behind the (factor*1s) deadline before the first Step

	err := r.Step()
	var slippage *SlippageError
	require.ErrorAs(t, err, &slippage)
	assert.Greater(t, slippage.Actual, slippage.Expected)
}

func TestRealtimeEnvironment_DefaultFactorIsOne(t *testing.T) {
	r := NewRealtimeEnvironment(nil)
	assert.Equal(t, 1.0, r.factor)
	assert.False(t, r.strict)
}
