package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"optlis/internal/dynamic"
	"optlis/internal/opt"
)

func TestDynamicInitGreedyRemoval(t *testing.T) {
	inst := dynamicExample(t)
	e, err := NewDynamic(DefaultConfig(), inst)
	require.NoError(t, err)

	b, err := opt.NewBudget(10)
	require.NoError(t, err)
	require.NoError(t, e.Init(b))

	// Площадки по убыванию риска 3 (0.90), 1 (0.77), 2 (0.66); одна бригада удаления
	require.Equal(t, []dynamic.Operation{
		{Kind: dynamic.OpRemove, Task: 3, Time: 2},
		{Kind: dynamic.OpRemove, Task: 1, Time: 6},
		{Kind: dynamic.OpRemove, Task: 2, Time: 9},
	}, e.Snapshot())
	require.NoError(t, dynamic.CheckPlan(inst, e.Plan()))

	empty := dynamic.NewSimulator(inst).Simulate(dynamic.NewPlan(inst))
	require.Less(t, e.Objective(), empty)
	require.Equal(t, 1, b.Consumed)
}

func TestDynamicSearchMatchesFullSimulation(t *testing.T) {
	inst := dynamic.RandomInstance(7, 4, 2, 1, 4, 30, newRng(21))
	e, err := NewDynamic(DefaultConfig(), inst)
	require.NoError(t, err)
	rng := newRng(22)

	b, err := opt.NewBudget(3000)
	require.NoError(t, err)
	require.NoError(t, e.Init(b))
	before := e.Objective()
	e.Descend(b, rng)
	require.LessOrEqual(t, e.Objective(), before)

	for round := 0; round < 10 && !b.Exhausted(); round++ {
		require.True(t, e.Perturb(0.5, b, rng))
		e.Descend(b, rng)

		rep, err := dynamic.NewSimulator(inst).Evaluate(e.Plan())
		require.NoError(t, err)
		require.InDelta(t, rep.GlobalRisk, e.Objective(), 1e-9)
		require.Equal(t, rep.Makespan, e.Report().Makespan)
	}
}

func TestDynamicBudgetIsNeverExceeded(t *testing.T) {
	inst := dynamicExample(t)
	e, err := NewDynamic(DefaultConfig(), inst)
	require.NoError(t, err)
	rng := newRng(5)

	b, err := opt.NewBudget(150)
	require.NoError(t, err)
	require.NoError(t, e.Init(b))
	e.Descend(b, rng)
	for e.Perturb(0.5, b, rng) {
		e.Descend(b, rng)
		require.LessOrEqual(t, b.Consumed, b.Max)
	}
	require.Equal(t, b.Max, b.Consumed)
}

func TestDynamicRestoreIsFree(t *testing.T) {
	inst := dynamicExample(t)
	e, err := NewDynamic(DefaultConfig(), inst)
	require.NoError(t, err)
	rng := newRng(6)

	b, err := opt.NewBudget(400)
	require.NoError(t, err)
	require.NoError(t, e.Init(b))
	e.Descend(b, rng)
	snap, cost := e.Snapshot(), e.Objective()

	e.Perturb(1, b, rng)
	used := b.Consumed
	e.Restore(snap)
	require.Equal(t, used, b.Consumed)
	require.ElementsMatch(t, snap, e.Snapshot())
	require.InDelta(t, cost, e.Objective(), 1e-9)
	require.NoError(t, dynamic.CheckPlan(inst, e.Plan()))
}

func TestDynamicWithoutRemovalCrewsNeutralizes(t *testing.T) {
	products := []dynamic.Product{
		{Metabolization: []float64{0, 0, 0}},
		{Risk: 0.9, Degradation: 0.05, Metabolization: []float64{0, 0, 0}},
		{Risk: 0.3, Degradation: 0.05, Metabolization: []float64{0, 0, 0}},
	}
	nodes := []dynamic.Node{
		{ID: 0, Type: dynamic.Depot, NeutralizeCrews: 1},
		{ID: 1, Type: dynamic.Task, RemovalDuration: 2},
	}
	inst, err := dynamic.NewInstance(products, nodes, [][]float64{{0, 0, 0}, {0, 0.5, 0.8}}, 10)
	require.NoError(t, err)

	e, err := NewDynamic(DefaultConfig(), inst)
	require.NoError(t, err)
	b, err := opt.NewBudget(5)
	require.NoError(t, err)
	require.NoError(t, e.Init(b))
	// 0.9·0.5 > 0.3·0.8
	require.Equal(t, []dynamic.Operation{{Kind: dynamic.OpNeutralize, Task: 1, Product: 1, Time: 2}}, e.Snapshot())
}
