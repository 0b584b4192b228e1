package dynamic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"optlis/internal/solution"
)

func TestSolutionValuesRoundTrip(t *testing.T) {
	inst := loadExample(t)
	pl := NewPlan(inst)
	pl.SetRemove(3, 2, true)
	pl.SetNeutralize(1, 1, 2, true)
	pl.SetNeutralize(2, 1, 3, true)
	pl.SetRemove(2, 6, true)

	sim := NewSimulator(inst)
	rep, err := sim.Evaluate(pl)
	require.NoError(t, err)

	entries := SolutionValues(inst, pl, rep)
	require.Equal(t, "global_risk", entries[0].Name)
	require.Equal(t, "makespan", entries[1].Name)
	require.Equal(t, "c_1", entries[2].Name)

	var buf bytes.Buffer
	require.NoError(t, solution.Export(&buf, "example.dat", entries))
	values, err := solution.Import(&buf)
	require.NoError(t, err)
	require.Equal(t, 1.0, values["y_3_2"])
	require.Equal(t, 1.0, values["x_2_1_3"])

	back, err := PlanFromValues(inst, values)
	require.NoError(t, err)
	require.Equal(t, pl.Operations(), back.Operations())

	again, err := NewSimulator(inst).Evaluate(back)
	require.NoError(t, err)
	require.InDelta(t, rep.GlobalRisk, again.GlobalRisk, 1e-9)
	require.Equal(t, rep.Completion, again.Completion)
}

func TestPlanFromValuesRejectsOutOfRange(t *testing.T) {
	inst := loadExample(t)

	_, err := PlanFromValues(inst, solution.Values{"y_9_2": 1})
	require.Error(t, err)
	_, err = PlanFromValues(inst, solution.Values{"x_1_7_2": 1})
	require.Error(t, err)

	// Прочие переменные модели и нулевые значения пропускаются
	pl, err := PlanFromValues(inst, solution.Values{"w_1_1_2": 0.4, "y_1_3": 0, "z_1_3": 1})
	require.NoError(t, err)
	require.Empty(t, pl.Operations())
}
