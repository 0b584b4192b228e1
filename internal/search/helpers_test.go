package search

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"optlis/internal/dynamic"
	"optlis/internal/static"
)

func newRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// staticExample — пример 3x3 с оценённым горизонтом (76).
func staticExample(t *testing.T) *static.Instance {
	t.Helper()
	inst, err := static.LoadFile("../static/testdata/example.dat")
	require.NoError(t, err)
	open, err := static.NewInstance(inst.Nodes, inst.Edges, 0, true)
	require.NoError(t, err)
	return open
}

func dynamicExample(t *testing.T) *dynamic.Instance {
	t.Helper()
	inst, err := dynamic.LoadFile("../dynamic/testdata/example.dat")
	require.NoError(t, err)
	return inst
}
