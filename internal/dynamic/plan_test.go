package dynamic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"optlis/internal/opt"
)

func requireInfeasible(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, opt.ErrInfeasibleOperationSequence), "got %v", err)
	var ie *InfeasibleError
	require.True(t, errors.As(err, &ie))
	require.Equal(t, reason, ie.Reason)
}

func TestCheckPlanWarmUp(t *testing.T) {
	inst := loadExample(t)

	pl := NewPlan(inst)
	pl.SetRemove(1, 1, true)
	requireInfeasible(t, CheckPlan(inst, pl), "operation before t=2")

	pl = NewPlan(inst)
	pl.SetNeutralize(2, 1, 1, true)
	requireInfeasible(t, CheckPlan(inst, pl), "operation before t=2")

	pl = NewPlan(inst)
	pl.SetRemove(1, 2, true)
	require.NoError(t, CheckPlan(inst, pl))
}

func TestCheckPlanProductZero(t *testing.T) {
	inst := loadExample(t)
	pl := NewPlan(inst)
	pl.SetNeutralize(1, 0, 5, true)
	requireInfeasible(t, CheckPlan(inst, pl), "product 0 neutralized")
}

func TestCheckPlanDepot(t *testing.T) {
	inst := loadExample(t)
	pl := NewPlan(inst)
	pl.SetRemove(0, 5, true)
	requireInfeasible(t, CheckPlan(inst, pl), "operation at a depot")
}

func TestCheckPlanRemovalWindow(t *testing.T) {
	inst := loadExample(t)

	// Удаление на площадке 1 длится 3 момента: 2, 3, 4
	pl := NewPlan(inst)
	pl.SetRemove(1, 2, true)
	pl.SetNeutralize(1, 1, 4, true)
	requireInfeasible(t, CheckPlan(inst, pl), "overlapping operations")

	pl.SetNeutralize(1, 1, 4, false)
	pl.SetNeutralize(1, 1, 5, true)
	require.NoError(t, CheckPlan(inst, pl))

	pl = NewPlan(inst)
	pl.SetNeutralize(1, 1, 3, true)
	pl.SetNeutralize(1, 2, 3, true)
	requireInfeasible(t, CheckPlan(inst, pl), "overlapping operations")
}

func TestCheckPlanCrewCapacity(t *testing.T) {
	inst := loadExample(t)

	pl := NewPlan(inst)
	pl.SetRemove(1, 2, true)
	pl.SetRemove(2, 4, true)
	requireInfeasible(t, CheckPlan(inst, pl), "remove crews")

	pl.SetRemove(2, 4, false)
	pl.SetRemove(2, 5, true)
	require.NoError(t, CheckPlan(inst, pl))

	pl = NewPlan(inst)
	pl.SetNeutralize(1, 1, 3, true)
	pl.SetNeutralize(2, 2, 3, true)
	requireInfeasible(t, CheckPlan(inst, pl), "neutralize crews")

	// Нейтрализация и удаление используют разные бригады
	pl = NewPlan(inst)
	pl.SetNeutralize(1, 1, 3, true)
	pl.SetRemove(2, 3, true)
	require.NoError(t, CheckPlan(inst, pl))
}

func TestPlanOperations(t *testing.T) {
	inst := loadExample(t)
	pl := NewPlan(inst)
	pl.SetRemove(3, 2, true)
	pl.SetNeutralize(1, 2, 6, true)
	pl.Apply(Operation{Kind: OpNeutralize, Task: 1, Product: 1, Time: 4}, true)

	require.Equal(t, []Operation{
		{Kind: OpNeutralize, Task: 1, Product: 1, Time: 4},
		{Kind: OpNeutralize, Task: 1, Product: 2, Time: 6},
		{Kind: OpRemove, Task: 3, Time: 2},
	}, pl.Operations())

	clone := pl.Clone()
	pl.Apply(Operation{Kind: OpRemove, Task: 3, Time: 2}, false)
	require.True(t, clone.Remove(3, 2))
	require.False(t, pl.Remove(3, 2))
	require.False(t, pl.Remove(3, 99))
}
