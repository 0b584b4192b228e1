package static

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"optlis/internal/opt"
	"optlis/internal/solution"
)

func exampleSchedule(t *testing.T, inst *Instance) *Schedule {
	t.Helper()
	values, err := solution.ImportFile("testdata/example.sol")
	require.NoError(t, err)
	s, err := ScheduleFromValues(inst, values)
	require.NoError(t, err)
	return s
}

func TestEvaluateReferenceSolution(t *testing.T) {
	inst := loadExample(t)
	prec, err := inst.Precedence(0)
	require.NoError(t, err)
	s := exampleSchedule(t, inst)

	eval, err := NewEvaluator(inst, prec, ObjectiveWeightedCompletion)
	require.NoError(t, err)
	rep, err := eval.Evaluate(s)
	require.NoError(t, err)

	require.Equal(t, 56, rep.Makespan)
	require.InDelta(t, 85.2, rep.WeightedCompletion, 1e-9)
	require.InDelta(t, 85.2, rep.Objective, 1e-9)
	require.InDelta(t, 81.9, rep.AccumulatedRisk, 1e-9)
	require.Equal(t, 10, rep.Completion[8])
	require.Equal(t, 56, rep.Completion[1])

	require.Equal(t, float64(56), rep.Value(ObjectiveMakespan))
	require.InDelta(t, 81.9, rep.Value(ObjectiveAccumulatedRisk), 1e-9)
}

func TestSolutionValuesMatchReferenceFile(t *testing.T) {
	inst := loadExample(t)
	prec, err := inst.Precedence(0)
	require.NoError(t, err)
	s := exampleSchedule(t, inst)
	eval, err := NewEvaluator(inst, prec, ObjectiveWeightedCompletion)
	require.NoError(t, err)
	rep, err := eval.Evaluate(s)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, solution.Export(&buf, "example.dat", SolutionValues(inst, s, rep)))
	got, err := solution.Import(&buf)
	require.NoError(t, err)

	want, err := solution.ImportFile("testdata/example.sol")
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for name, v := range want {
		require.InDelta(t, v, got[name], 1e-9, name)
	}
}

func TestEvaluateResourceViolation(t *testing.T) {
	inst := loadExample(t)
	prec, err := inst.Precedence(1)
	require.NoError(t, err)
	s := exampleSchedule(t, inst)
	// Задача 7 стартует вместе с 8: одна бригада не может делать обе
	s.Start[7] = 1

	eval, err := NewEvaluator(inst, prec, ObjectiveMakespan)
	require.NoError(t, err)
	_, err = eval.Evaluate(s)
	require.True(t, errors.Is(err, opt.ErrInfeasibleSchedule))
	var ie *InfeasibleError
	require.True(t, errors.As(err, &ie))
	require.Equal(t, "resource", ie.Reason)
}

func TestEvaluatePrecedenceViolation(t *testing.T) {
	inst := loadExample(t)
	prec, err := inst.Precedence(0)
	require.NoError(t, err)

	// Две бригады снимают ресурсный конфликт, остаётся только порядок
	nodes := append([]Node(nil), inst.Nodes...)
	nodes[0].Crews = 8
	wide, err := NewInstance(nodes, inst.Edges, 56, true)
	require.NoError(t, err)
	widePrec, err := wide.Precedence(0)
	require.NoError(t, err)
	require.Equal(t, len(prec.Pairs), len(widePrec.Pairs))

	s := exampleSchedule(t, wide)
	s.Start[8], s.Start[7] = 10, 1
	eval, err := NewEvaluator(wide, widePrec, ObjectiveWeightedCompletion)
	require.NoError(t, err)
	_, err = eval.Evaluate(s)
	var ie *InfeasibleError
	require.True(t, errors.As(err, &ie))
	require.Equal(t, "precedence", ie.Reason)
	require.Equal(t, 8, ie.Task)
	require.Equal(t, 7, ie.Other)
}

func TestEvaluateIncompleteAndHorizon(t *testing.T) {
	inst := loadExample(t)
	prec, err := inst.Precedence(1)
	require.NoError(t, err)
	eval, err := NewEvaluator(inst, prec, ObjectiveWeightedCompletion)
	require.NoError(t, err)

	s := exampleSchedule(t, inst)
	s.Start[3] = Unscheduled
	_, err = eval.Evaluate(s)
	require.True(t, errors.Is(err, opt.ErrIncompleteSchedule))

	s = exampleSchedule(t, inst)
	s.Start[1] = 52
	_, err = eval.Evaluate(s)
	require.True(t, errors.Is(err, opt.ErrInfeasibleSchedule))

	s = exampleSchedule(t, inst)
	s.Start[8] = 0
	_, err = eval.Evaluate(s)
	require.True(t, errors.Is(err, opt.ErrInfeasibleSchedule))
}

func TestScheduleFromValuesMissingStart(t *testing.T) {
	inst := loadExample(t)
	_, err := ScheduleFromValues(inst, solution.Values{"makespan": 56})
	require.True(t, errors.Is(err, opt.ErrIncompleteSchedule))
}
