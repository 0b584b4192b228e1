package opt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBudgetChargeStopsAtMax(t *testing.T) {
	b, err := NewBudget(3)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.True(t, b.Charge())
	}
	require.False(t, b.Charge())
	require.Equal(t, 3, b.Consumed)
	require.True(t, b.Exhausted())
	require.Zero(t, b.Remaining())
	require.True(t, errors.Is(b.Err(), ErrBudgetExhausted))
}

func TestNewBudgetRejectsNonPositive(t *testing.T) {
	_, err := NewBudget(0)
	require.Error(t, err)
}
