package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"optlis/internal/opt"
	"optlis/internal/static"
)

func newStaticEngine(t *testing.T, inst *static.Instance, d float64, cfg Config) *StaticEngine {
	t.Helper()
	prec, err := inst.Precedence(d)
	require.NoError(t, err)
	e, err := NewStatic(cfg, inst, prec, static.ObjectiveWeightedCompletion)
	require.NoError(t, err)
	return e
}

func TestStaticInitSortsByRisk(t *testing.T) {
	inst := staticExample(t)
	e := newStaticEngine(t, inst, 0, DefaultConfig())

	b, err := opt.NewBudget(10)
	require.NoError(t, err)
	require.NoError(t, e.Init(b))

	require.Equal(t, []int{8, 7, 5, 6, 4, 3, 2, 1}, e.Snapshot())
	require.Equal(t, 1, b.Consumed)
	require.Equal(t, 1, e.LastImprovedAt())
	require.True(t, e.Totals().Feasible)
}

func TestStaticInitWithoutBudget(t *testing.T) {
	inst := staticExample(t)
	e := newStaticEngine(t, inst, 0, DefaultConfig())
	b := &opt.Budget{Max: 0}
	require.ErrorIs(t, e.Init(b), opt.ErrBudgetExhausted)
}

func TestStaticDescendMatchesFullEvaluation(t *testing.T) {
	for _, nb := range []Neighborhood{NeighborhoodSwap, NeighborhoodInsert, NeighborhoodBoth} {
		t.Run(string(nb), func(t *testing.T) {
			grid := static.RandomInstance(3, 4, 2, 9, newRng(1))
			inst, err := static.NewInstance(grid.Nodes, grid.Edges, 500, true)
			require.NoError(t, err)
			cfg := DefaultConfig()
			cfg.Neighborhood = nb
			e := newStaticEngine(t, inst, 0.2, cfg)
			prec, err := inst.Precedence(0.2)
			require.NoError(t, err)

			b, err := opt.NewBudget(2000)
			require.NoError(t, err)
			require.NoError(t, e.Init(b))
			before := e.Objective()
			rng := newRng(2)
			e.Descend(b, rng)
			require.LessOrEqual(t, e.Objective(), before)

			for round := 0; round < 5 && !b.Exhausted(); round++ {
				require.True(t, e.Perturb(0.3, b, rng))
				e.Descend(b, rng)

				perm := e.Snapshot()
				require.True(t, prec.IsLinearExtension(perm))

				dec, err := static.NewDecoder(inst, prec)
				require.NoError(t, err)
				s := static.NewSchedule(len(inst.Nodes))
				tot, err := dec.Decode(perm, s)
				require.NoError(t, err)
				require.InDelta(t, tot.Value(static.ObjectiveWeightedCompletion), e.Objective(), 1e-9)
				require.Equal(t, s.Start, e.Schedule().Start)

				eval, err := static.NewEvaluator(inst, prec, static.ObjectiveWeightedCompletion)
				require.NoError(t, err)
				rep, err := eval.Evaluate(e.Schedule())
				require.NoError(t, err)
				require.InDelta(t, rep.Objective, e.Objective(), 1e-9)
			}
		})
	}
}

func TestStaticBudgetIsNeverExceeded(t *testing.T) {
	inst := staticExample(t)
	e := newStaticEngine(t, inst, 0.1, DefaultConfig())
	rng := newRng(3)

	b, err := opt.NewBudget(37)
	require.NoError(t, err)
	require.NoError(t, e.Init(b))
	e.Descend(b, rng)
	for e.Perturb(0.5, b, rng) {
		e.Descend(b, rng)
		require.LessOrEqual(t, b.Consumed, b.Max)
	}
	require.Equal(t, b.Max, b.Consumed)
	require.False(t, e.Descend(b, rng))
}

func TestStaticRestoreIsFree(t *testing.T) {
	inst := staticExample(t)
	e := newStaticEngine(t, inst, 0, DefaultConfig())
	rng := newRng(4)

	b, err := opt.NewBudget(500)
	require.NoError(t, err)
	require.NoError(t, e.Init(b))
	e.Descend(b, rng)
	snap, cost := e.Snapshot(), e.Objective()

	e.Perturb(1, b, rng)
	used := b.Consumed
	e.Restore(snap)
	require.Equal(t, used, b.Consumed)
	require.Equal(t, snap, e.Snapshot())
	require.InDelta(t, cost, e.Objective(), 1e-9)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Neighborhood = "ring"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Neighbors = 0
	require.Error(t, cfg.Validate())
}

// В локальном оптимуме проход спуска оценивает каждый допустимый ход ровно
// один раз; откат отклонённых ходов бюджет не расходует.
func TestStaticRevertIsFree(t *testing.T) {
	inst := staticExample(t)
	e := newStaticEngine(t, inst, 0.3, DefaultConfig())

	big, err := opt.NewBudget(1_000_000)
	require.NoError(t, err)
	require.NoError(t, e.Init(big))
	e.Descend(big, newRng(1))
	require.False(t, big.Exhausted())
	snap := e.Snapshot()

	valid := 0
	for _, m := range e.moves {
		if e.keepsOrder(m) {
			valid++
		}
	}
	require.Positive(t, valid)

	b, err := opt.NewBudget(1_000_000)
	require.NoError(t, err)
	require.False(t, e.Descend(b, newRng(2)))
	require.Equal(t, valid, b.Consumed)
	require.Equal(t, snap, e.Snapshot())
}
