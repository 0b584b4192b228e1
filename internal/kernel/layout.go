// Package kernel описывает плоский (structure-of-arrays) формат обмена с
// ядром локального поиска и реализации порта: встроенную и внешнюю.
package kernel

import (
	"fmt"

	"optlis/internal/dynamic"
	"optlis/internal/static"
)

const (
	VariantStatic  = "static"
	VariantDynamic = "dynamic"
)

// Instance — экземпляр в плоском виде. Многомерные массивы хранятся
// построчно: Distances[i*NNodes+j], NeutralizingStartTimes[(i*NProducts+p)*NTimeUnits+t].
type Instance struct {
	Variant    string  `json:"variant"`
	NNodes     int     `json:"nnodes"`
	NTasks     int     `json:"ntasks"`
	NProducts  int     `json:"nproducts,omitempty"`
	NTimeUnits int     `json:"ntime_units"`
	Resources  []int32 `json:"resources"`
	Tasks      []int32 `json:"tasks"`

	// Статический вариант
	Durations  []int32   `json:"durations,omitempty"`
	Risk       []float64 `json:"risk,omitempty"`
	Distances  []int32   `json:"distances,omitempty"`
	CrewHomes  []int32   `json:"crew_homes,omitempty"`
	Relaxation float64   `json:"relaxation,omitempty"`
	Objective  string    `json:"objective,omitempty"`
	NoTravel   bool      `json:"no_travel,omitempty"`

	// Динамический вариант
	CleaningStartTimes     []int32   `json:"cleaning_start_times,omitempty"`
	NeutralizingStartTimes []int32   `json:"neutralizing_start_times,omitempty"`
	ProductsRisk           []float64 `json:"products_risk,omitempty"`
	DegradationRates       []float64 `json:"degradation_rates,omitempty"`
	MetabolizingRates      []float64 `json:"metabolizing_rates,omitempty"`
	RemovalDurations       []int32   `json:"removal_durations,omitempty"`
	InitialConcentration   []float64 `json:"initial_concentration,omitempty"`
}

// Solution — решение в плоском виде: список приоритетов задач (статика)
// или четвёрки (kind, task, product, time) операций (динамика).
type Solution struct {
	Permutation []int32 `json:"permutation,omitempty"`
	Operations  []int32 `json:"operations,omitempty"`
	Objective   float64 `json:"objective"`
}

// PermutationSolution упаковывает список приоритетов статического варианта.
func PermutationSolution(perm []int, objective float64) *Solution {
	return &Solution{Permutation: toInt32(perm), Objective: objective}
}

// OperationsSolution упаковывает план динамического варианта.
func OperationsSolution(ops []dynamic.Operation, objective float64) *Solution {
	return &Solution{Operations: EncodeOperations(ops), Objective: objective}
}

// Priorities возвращает список приоритетов в виде []int.
func (s *Solution) Priorities() []int { return toInt(s.Permutation) }

// Budget — бюджет оценок; ядро увеличивает Consumed и выставляет FoundAt.
type Budget struct {
	Max      int `json:"max"`
	Consumed int `json:"consumed"`
	FoundAt  int `json:"found_at"`
}

// FromStatic переводит статический экземпляр в плоский вид.
func FromStatic(inst *static.Instance, relaxation float64, objective static.Objective) *Instance {
	n := len(inst.Nodes)
	out := &Instance{
		Variant:    VariantStatic,
		NNodes:     n,
		NTasks:     len(inst.Tasks()),
		NTimeUnits: inst.TimeHorizon() + 1,
		Resources:  []int32{int32(inst.Crews())},
		Tasks:      toInt32(inst.Tasks()),
		Durations:  make([]int32, n),
		Risk:       make([]float64, n),
		Distances:  make([]int32, n*n),
		CrewHomes:  toInt32(inst.CrewHomes()),
		Relaxation: relaxation,
		Objective:  string(objective),
		NoTravel:   !inst.TravelTimes,
	}
	for i, nd := range inst.Nodes {
		out.Durations[i] = int32(nd.Duration)
		out.Risk[i] = nd.Risk
	}
	dist := inst.Distances()
	for i := range dist {
		for j, d := range dist[i] {
			out.Distances[i*n+j] = int32(d)
		}
	}
	return out
}

// FromDynamic переводит динамический экземпляр в плоский вид.
func FromDynamic(inst *dynamic.Instance) *Instance {
	n, np, units := len(inst.Nodes), len(inst.Products), inst.Horizon+1
	res := inst.Resources()
	out := &Instance{
		Variant:                VariantDynamic,
		NNodes:                 n,
		NTasks:                 len(inst.Tasks()),
		NProducts:              np,
		NTimeUnits:             units,
		Resources:              []int32{int32(res.Neutralize), int32(res.Remove)},
		Tasks:                  toInt32(inst.Tasks()),
		CleaningStartTimes:     make([]int32, 0, n*units),
		NeutralizingStartTimes: make([]int32, 0, n*np*units),
		ProductsRisk:           make([]float64, np),
		DegradationRates:       make([]float64, np),
		MetabolizingRates:      make([]float64, 0, np*np),
		RemovalDurations:       make([]int32, n),
		InitialConcentration:   make([]float64, 0, n*np),
	}
	for p, pr := range inst.Products {
		out.ProductsRisk[p] = pr.Risk
		out.DegradationRates[p] = pr.Degradation
		out.MetabolizingRates = append(out.MetabolizingRates, pr.Metabolization...)
	}
	for i, nd := range inst.Nodes {
		out.RemovalDurations[i] = int32(nd.RemovalDuration)
		out.InitialConcentration = append(out.InitialConcentration, inst.Concentration[i]...)
	}
	for _, row := range inst.CleaningStartTimes() {
		out.CleaningStartTimes = append(out.CleaningStartTimes, toInt32(row)...)
	}
	for _, node := range inst.NeutralizingStartTimes() {
		for _, row := range node {
			out.NeutralizingStartTimes = append(out.NeutralizingStartTimes, toInt32(row)...)
		}
	}
	return out
}

// ToStatic восстанавливает статический экземпляр. Граф площадок
// восстанавливается по парам на расстоянии 1; все бригады одного депо
// сохраняют своё депо.
func (k *Instance) ToStatic() (*static.Instance, error) {
	if k.Variant != VariantStatic {
		return nil, fmt.Errorf("kernel instance variant %q is not %q", k.Variant, VariantStatic)
	}
	n := k.NNodes
	if len(k.Durations) != n || len(k.Risk) != n || len(k.Distances) != n*n {
		return nil, fmt.Errorf("kernel instance: array sizes do not match %d nodes", n)
	}
	nodes := make([]static.Node, n)
	for i := range nodes {
		nodes[i] = static.Node{ID: i, Type: static.Depot, Duration: int(k.Durations[i]), Risk: k.Risk[i]}
	}
	for _, t := range k.Tasks {
		if t < 0 || int(t) >= n {
			return nil, fmt.Errorf("kernel instance: task %d out of range", t)
		}
		nodes[t].Type = static.Task
	}
	for _, h := range k.CrewHomes {
		if h < 0 || int(h) >= n {
			return nil, fmt.Errorf("kernel instance: crew home %d out of range", h)
		}
		nodes[h].Crews++
	}
	var edges []static.Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if k.Distances[i*n+j] == 1 {
				edges = append(edges, static.Edge{From: i, To: j})
			}
		}
	}
	return static.NewInstance(nodes, edges, k.NTimeUnits-1, !k.NoTravel)
}

// ToDynamic восстанавливает динамический экземпляр; все бригады
// приписываются первому депо (ёмкости суммарные).
func (k *Instance) ToDynamic() (*dynamic.Instance, error) {
	if k.Variant != VariantDynamic {
		return nil, fmt.Errorf("kernel instance variant %q is not %q", k.Variant, VariantDynamic)
	}
	n, np := k.NNodes, k.NProducts
	if len(k.ProductsRisk) != np || len(k.DegradationRates) != np || len(k.MetabolizingRates) != np*np ||
		len(k.RemovalDurations) != n || len(k.InitialConcentration) != n*np || len(k.Resources) != 2 {
		return nil, fmt.Errorf("kernel instance: array sizes do not match %d nodes, %d products", n, np)
	}
	products := make([]dynamic.Product, np)
	for p := range products {
		products[p] = dynamic.Product{
			Risk:           k.ProductsRisk[p],
			Degradation:    k.DegradationRates[p],
			Metabolization: append([]float64(nil), k.MetabolizingRates[p*np:(p+1)*np]...),
		}
	}
	nodes := make([]dynamic.Node, n)
	conc := make([][]float64, n)
	for i := range nodes {
		nodes[i] = dynamic.Node{ID: i, Type: dynamic.Depot, RemovalDuration: int(k.RemovalDurations[i])}
		conc[i] = append([]float64(nil), k.InitialConcentration[i*np:(i+1)*np]...)
	}
	for _, t := range k.Tasks {
		if t < 0 || int(t) >= n {
			return nil, fmt.Errorf("kernel instance: task %d out of range", t)
		}
		nodes[t].Type = dynamic.Task
	}
	home := -1
	for i, nd := range nodes {
		if nd.Type == dynamic.Depot {
			home = i
			break
		}
	}
	if home < 0 && (k.Resources[0] > 0 || k.Resources[1] > 0) {
		return nil, fmt.Errorf("kernel instance: crews without a depot")
	}
	if home >= 0 {
		nodes[home].NeutralizeCrews = int(k.Resources[0])
		nodes[home].CleanCrews = int(k.Resources[1])
	}
	return dynamic.NewInstance(products, nodes, conc, k.NTimeUnits-1)
}

// EncodeOperations / DecodeOperations — плоская запись плана.
func EncodeOperations(ops []dynamic.Operation) []int32 {
	out := make([]int32, 0, 4*len(ops))
	for _, op := range ops {
		out = append(out, int32(op.Kind), int32(op.Task), int32(op.Product), int32(op.Time))
	}
	return out
}

func DecodeOperations(flat []int32) ([]dynamic.Operation, error) {
	if len(flat)%4 != 0 {
		return nil, fmt.Errorf("operations array length %d is not a multiple of 4", len(flat))
	}
	ops := make([]dynamic.Operation, 0, len(flat)/4)
	for k := 0; k < len(flat); k += 4 {
		ops = append(ops, dynamic.Operation{
			Kind:    dynamic.OpKind(flat[k]),
			Task:    int(flat[k+1]),
			Product: int(flat[k+2]),
			Time:    int(flat[k+3]),
		})
	}
	return ops, nil
}

func toInt32(xs []int) []int32 {
	out := make([]int32, len(xs))
	for i, x := range xs {
		out[i] = int32(x)
	}
	return out
}

func toInt(xs []int32) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = int(x)
	}
	return out
}
