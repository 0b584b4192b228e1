package dynamic

import (
	"math"
	"math/rand"
)

// RandomInstance генерирует экземпляр: узел 0 — депо с neutralizeCrews и
// cleanCrews бригадами, остальные tasks узлов — площадки с длительностью
// удаления [1, maxRemoval]. Продукт 0 — безопасный сток с нулевым риском,
// каждый продукт p ≥ 1 может метаболизироваться в продукт p+1.
func RandomInstance(tasks, products, neutralizeCrews, cleanCrews, maxRemoval, horizon int, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("nil random number generator")
	}
	if tasks <= 0 || products < 2 || neutralizeCrews < 0 || cleanCrews < 0 || maxRemoval <= 0 || horizon < 1 {
		panic("invalid instance parameters")
	}

	prods := make([]Product, products)
	for p := range prods {
		prods[p].Metabolization = make([]float64, products)
		if p == 0 {
			continue
		}
		prods[p].Risk = round2(0.1 + 0.9*rng.Float64())
		prods[p].Degradation = round2(0.2 * rng.Float64())
		if p+1 < products {
			prods[p].Metabolization[p+1] = round2(0.3 * rng.Float64())
		}
	}

	nodes := make([]Node, tasks+1)
	conc := make([][]float64, tasks+1)
	nodes[0] = Node{ID: 0, Type: Depot, NeutralizeCrews: neutralizeCrews, CleanCrews: cleanCrews}
	conc[0] = make([]float64, products)
	for i := 1; i <= tasks; i++ {
		nodes[i] = Node{ID: i, Type: Task, RemovalDuration: 1 + rng.Intn(maxRemoval)}
		conc[i] = make([]float64, products)
		for p := 1; p < products; p++ {
			if rng.Intn(2) == 0 {
				conc[i][p] = round2(rng.Float64())
			}
		}
	}

	inst, err := NewInstance(prods, nodes, conc, horizon)
	if err != nil {
		panic(err)
	}
	return inst
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
