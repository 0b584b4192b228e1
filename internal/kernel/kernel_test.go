package kernel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"optlis/internal/dynamic"
	"optlis/internal/opt"
	"optlis/internal/search"
	"optlis/internal/static"
)

func staticExample(t *testing.T) *static.Instance {
	t.Helper()
	inst, err := static.LoadFile("../static/testdata/example.dat")
	require.NoError(t, err)
	return inst
}

func dynamicExample(t *testing.T) *dynamic.Instance {
	t.Helper()
	inst, err := dynamic.LoadFile("../dynamic/testdata/example.dat")
	require.NoError(t, err)
	return inst
}

func TestStaticLayoutRoundTrip(t *testing.T) {
	inst := staticExample(t)
	flat := FromStatic(inst, 0.3, static.ObjectiveMakespan)
	require.Equal(t, 9, flat.NNodes)
	require.Equal(t, 8, flat.NTasks)
	require.Equal(t, 57, flat.NTimeUnits)
	require.Equal(t, []int32{1}, flat.Resources)
	require.Equal(t, int32(4), flat.Distances[0*9+8])

	raw, err := json.Marshal(flat)
	require.NoError(t, err)
	var decoded Instance
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, *flat, decoded)

	back, err := decoded.ToStatic()
	require.NoError(t, err)
	require.Equal(t, inst.Nodes, back.Nodes)
	require.Equal(t, inst.Distances(), back.Distances())
	require.Equal(t, inst.TimeHorizon(), back.TimeHorizon())
	require.Len(t, back.Edges, len(inst.Edges))
}

func TestDynamicLayoutRoundTrip(t *testing.T) {
	inst := dynamicExample(t)
	flat := FromDynamic(inst)
	require.Equal(t, 21, flat.NTimeUnits)
	require.Len(t, flat.NeutralizingStartTimes, 4*3*21)
	require.Len(t, flat.CleaningStartTimes, 4*21)
	require.Equal(t, int32(6), flat.CleaningStartTimes[3*21+20])

	raw, err := json.Marshal(flat)
	require.NoError(t, err)
	var decoded Instance
	require.NoError(t, json.Unmarshal(raw, &decoded))

	back, err := decoded.ToDynamic()
	require.NoError(t, err)
	var want, got bytes.Buffer
	require.NoError(t, inst.Export(&want))
	require.NoError(t, back.Export(&got))
	require.Equal(t, want.String(), got.String())
}

func TestOperationsEncoding(t *testing.T) {
	ops := []dynamic.Operation{
		{Kind: dynamic.OpRemove, Task: 3, Time: 2},
		{Kind: dynamic.OpNeutralize, Task: 1, Product: 2, Time: 7},
	}
	back, err := DecodeOperations(EncodeOperations(ops))
	require.NoError(t, err)
	require.Equal(t, ops, back)

	_, err = DecodeOperations([]int32{1, 2, 3})
	require.Error(t, err)
}

func TestNativeStaticImproves(t *testing.T) {
	file := staticExample(t)
	inst, err := static.NewInstance(file.Nodes, file.Edges, 0, true)
	require.NoError(t, err)
	flat := FromStatic(inst, 0.1, static.ObjectiveWeightedCompletion)

	k := Native{Cfg: search.DefaultConfig(), Seed: 1}
	sol := &Solution{}
	b := &Budget{Max: 300}
	require.NoError(t, k.LocalSearch(context.Background(), flat, sol, b))
	require.Len(t, sol.Permutation, 8)
	require.LessOrEqual(t, b.Consumed, b.Max)
	require.GreaterOrEqual(t, b.FoundAt, 1)
	first := sol.Objective

	// Повторный вызов продолжает с переданного решения
	require.NoError(t, k.LocalSearch(context.Background(), flat, sol, b))
	require.LessOrEqual(t, sol.Objective, first)
	require.LessOrEqual(t, b.Consumed, b.Max)

	bad := &Solution{Permutation: []int32{1, 2, 3, 4, 5, 6, 7, 8}}
	require.Error(t, k.LocalSearch(context.Background(), flat, bad, &Budget{Max: 10}))
}

func TestNativeDynamic(t *testing.T) {
	inst := dynamicExample(t)
	flat := FromDynamic(inst)

	k := Native{Cfg: search.DefaultConfig(), Seed: 2}
	sol := &Solution{}
	b := &Budget{Max: 200}
	require.NoError(t, k.LocalSearch(context.Background(), flat, sol, b))
	require.LessOrEqual(t, b.Consumed, b.Max)

	ops, err := DecodeOperations(sol.Operations)
	require.NoError(t, err)
	pl := dynamic.NewPlan(inst)
	for _, op := range ops {
		pl.Apply(op, true)
	}
	rep, err := dynamic.NewSimulator(inst).Evaluate(pl)
	require.NoError(t, err)
	require.InDelta(t, rep.GlobalRisk, sol.Objective, 1e-9)

	// Недопустимый план отвергается до поиска
	bad := &Solution{Operations: EncodeOperations([]dynamic.Operation{{Kind: dynamic.OpRemove, Task: 1, Time: 1}})}
	err = k.LocalSearch(context.Background(), flat, bad, &Budget{Max: 10})
	require.True(t, errors.Is(err, opt.ErrInfeasibleOperationSequence), "got %v", err)
}

func TestExecMissingBinary(t *testing.T) {
	k := Exec{Path: "optlis-kernel-that-does-not-exist"}
	err := k.LocalSearch(context.Background(), FromStatic(staticExample(t), 0, static.ObjectiveMakespan), &Solution{}, &Budget{Max: 1})
	require.True(t, errors.Is(err, opt.ErrSolverUnavailable), "got %v", err)
}

func TestExecEchoKernel(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat is not available")
	}
	// cat возвращает запрос без изменений: решение и бюджет не меняются
	k := Exec{Path: "cat"}
	sol := &Solution{Permutation: []int32{8, 7, 6, 5, 4, 3, 2, 1}, Objective: 85.2}
	b := &Budget{Max: 10, Consumed: 3, FoundAt: 2}
	require.NoError(t, k.LocalSearch(context.Background(), FromStatic(staticExample(t), 0, static.ObjectiveWeightedCompletion), sol, b))
	require.Equal(t, []int32{8, 7, 6, 5, 4, 3, 2, 1}, sol.Permutation)
	require.Equal(t, 85.2, sol.Objective)
	require.Equal(t, Budget{Max: 10, Consumed: 3, FoundAt: 2}, *b)
}
