package dynamic

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func loadExample(t *testing.T) *Instance {
	t.Helper()
	inst, err := LoadFile("testdata/example.dat")
	require.NoError(t, err)
	return inst
}

// singleSite — одна площадка с продуктом 1 (риск 1) и безопасным продуктом 0.
func singleSite(t *testing.T, degradation, conc float64, removal, horizon int) *Instance {
	t.Helper()
	products := []Product{
		{Risk: 0, Degradation: 0, Metabolization: []float64{0, 0}},
		{Risk: 1, Degradation: degradation, Metabolization: []float64{0, 0}},
	}
	nodes := []Node{
		{ID: 0, Type: Depot, NeutralizeCrews: 1, CleanCrews: 1},
		{ID: 1, Type: Task, RemovalDuration: removal},
	}
	inst, err := NewInstance(products, nodes, [][]float64{{0, 0}, {0, conc}}, horizon)
	require.NoError(t, err)
	return inst
}
