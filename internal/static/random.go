package static

import (
	"math"
	"math/rand"
)

// RandomInstance генерирует экземпляр на решётке rows×cols: узел 0 — депо
// с crews бригадами, остальные узлы — задачи со случайной длительностью
// [1, maxDuration] и риском из [0.01, 1.00] с двумя знаками.
func RandomInstance(rows, cols, crews, maxDuration int, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("nil random number generator")
	}
	if rows <= 0 || cols <= 0 || rows*cols < 2 || crews <= 0 || maxDuration <= 0 {
		panic("invalid grid parameters")
	}
	n := rows * cols
	nodes := make([]Node, n)
	nodes[0] = Node{ID: 0, Type: Depot, Crews: crews}
	for i := 1; i < n; i++ {
		risk := float64(1+rng.Intn(100)) / 100
		nodes[i] = Node{
			ID:       i,
			Type:     Task,
			Duration: 1 + rng.Intn(maxDuration),
			Risk:     math.Round(risk*100) / 100,
		}
	}

	var edges []Edge
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := r*cols + c
			if r+1 < rows {
				edges = append(edges, Edge{From: id, To: id + cols})
			}
			if c+1 < cols {
				edges = append(edges, Edge{From: id, To: id + 1})
			}
		}
	}

	inst, err := NewInstance(nodes, edges, 0, true)
	if err != nil {
		panic(err)
	}
	return inst
}
