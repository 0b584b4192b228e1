// Package dynamic описывает динамический вариант задачи: концентрации
// продуктов на площадках меняются во времени (распад, метаболизация),
// бригады нейтрализуют продукты или удаляют загрязнение целиком.
package dynamic

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"optlis/internal/opt"
)

// Константы кинетики операций: порог «чистой» площадки и скорости
// очистки/нейтрализации, по которым строятся таблицы последних стартов.
const (
	Epsilon           = 0.01
	NeutralizingSpeed = 0.3
	CleaningSpeed     = 0.075
)

// rateEps поглощает погрешность сумм коэффициентов, заданных с двумя знаками.
const rateEps = 1e-9

type NodeType int

const (
	Depot NodeType = 0
	Task  NodeType = 1
)

// Node — узел динамического экземпляра. Бригады (Qn, Qc) приписаны к узлам,
// RemovalDuration — длительность удаления загрязнения на площадке.
type Node struct {
	ID              int
	Type            NodeType
	NeutralizeCrews int
	CleanCrews      int
	RemovalDuration int
}

// Product — загрязняющий продукт. Metabolization[s] — доля массы,
// переходящей за единицу времени в продукт s. Продукт 0 — сток нейтрализации.
type Product struct {
	Risk           float64
	Degradation    float64
	Metabolization []float64
}

// Resources — суммарные ёмкости бригад, постоянные на горизонте.
type Resources struct {
	Neutralize int
	Remove     int
}

// Instance — неизменяемое описание динамического экземпляра.
type Instance struct {
	Products []Product
	Nodes    []Node
	// Concentration[i][p] — начальная концентрация продукта p на узле i (момент t=1).
	Concentration [][]float64
	// Horizon — последний момент времени T; моменты 0..T, моделируются 1..T.
	Horizon int

	viewsOnce sync.Once
	depots    []int
	tasks     []int
	taskIndex []int
	resources Resources
	products  []int
	units     []int

	startsOnce   sync.Once
	cleanStarts  [][]int
	neutralStart [][][]int
}

func NewInstance(products []Product, nodes []Node, conc [][]float64, horizon int) (*Instance, error) {
	inst := &Instance{Products: products, Nodes: nodes, Concentration: conc, Horizon: horizon}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	np := len(inst.Products)
	if np == 0 {
		return fmt.Errorf("%w: instance has no products", opt.ErrMalformedInstance)
	}
	for p, pr := range inst.Products {
		if pr.Risk < 0 || math.IsNaN(pr.Risk) {
			return fmt.Errorf("%w: product %d: risk must be >= 0 (got %g)", opt.ErrMalformedInstance, p, pr.Risk)
		}
		if !inUnit(pr.Degradation) {
			return fmt.Errorf("%w: product %d: degradation rate must be in [0,1] (got %g)", opt.ErrMalformedInstance, p, pr.Degradation)
		}
		if len(pr.Metabolization) != np {
			return fmt.Errorf("%w: product %d: metabolization row has %d rates, want %d", opt.ErrMalformedInstance, p, len(pr.Metabolization), np)
		}
		sum := 0.0
		for s, r := range pr.Metabolization {
			if !inUnit(r) {
				return fmt.Errorf("%w: product %d: metabolization rate to %d must be in [0,1] (got %g)", opt.ErrMalformedInstance, p, s, r)
			}
			if s != 0 && s != p {
				sum += r
			}
		}
		if sum > 1+rateEps {
			return fmt.Errorf("%w: product %d: metabolization rates sum to %g > 1", opt.ErrMalformedInstance, p, sum)
		}
	}

	n := len(inst.Nodes)
	if n == 0 {
		return fmt.Errorf("%w: instance has no nodes", opt.ErrMalformedInstance)
	}
	for i, nd := range inst.Nodes {
		if nd.ID != i {
			return fmt.Errorf("%w: node at position %d has id %d", opt.ErrMalformedInstance, i, nd.ID)
		}
		if nd.Type != Depot && nd.Type != Task {
			return fmt.Errorf("%w: node %d: unknown type %d", opt.ErrMalformedInstance, i, nd.Type)
		}
		if nd.NeutralizeCrews < 0 || nd.CleanCrews < 0 || nd.RemovalDuration < 0 {
			return fmt.Errorf("%w: node %d: crews and duration must be >= 0", opt.ErrMalformedInstance, i)
		}
		if nd.Type == Task && nd.RemovalDuration < 1 {
			return fmt.Errorf("%w: task %d: removal duration must be >= 1 (got %d)", opt.ErrMalformedInstance, i, nd.RemovalDuration)
		}
	}

	if len(inst.Concentration) != n {
		return fmt.Errorf("%w: %d concentration rows for %d nodes", opt.ErrMalformedInstance, len(inst.Concentration), n)
	}
	for i, row := range inst.Concentration {
		if len(row) != np {
			return fmt.Errorf("%w: node %d: %d concentrations, want %d", opt.ErrMalformedInstance, i, len(row), np)
		}
		for p, c := range row {
			if c < 0 || math.IsNaN(c) {
				return fmt.Errorf("%w: node %d: concentration of product %d must be >= 0 (got %g)", opt.ErrMalformedInstance, i, p, c)
			}
		}
	}
	if inst.Horizon < 1 {
		return fmt.Errorf("%w: time horizon must be >= 1 (got %d)", opt.ErrMalformedInstance, inst.Horizon)
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

func (inst *Instance) initViews() {
	inst.viewsOnce.Do(func() {
		inst.taskIndex = make([]int, len(inst.Nodes))
		for i, nd := range inst.Nodes {
			inst.taskIndex[i] = -1
			if nd.Type == Task {
				inst.taskIndex[i] = len(inst.tasks)
				inst.tasks = append(inst.tasks, i)
			} else {
				inst.depots = append(inst.depots, i)
			}
			inst.resources.Neutralize += nd.NeutralizeCrews
			inst.resources.Remove += nd.CleanCrews
		}
		inst.products = make([]int, len(inst.Products))
		for p := range inst.products {
			inst.products[p] = p
		}
		inst.units = make([]int, inst.Horizon+1)
		for t := range inst.units {
			inst.units[t] = t
		}
	})
}

func (inst *Instance) Depots() []int {
	inst.initViews()
	return inst.depots
}

func (inst *Instance) Tasks() []int {
	inst.initViews()
	return inst.tasks
}

// TaskIndex — позиция задачи в Tasks(); -1 для депо.
func (inst *Instance) TaskIndex(node int) int {
	inst.initViews()
	return inst.taskIndex[node]
}

// Resources — суммарные Qn и Qc по всем узлам.
func (inst *Instance) Resources() Resources {
	inst.initViews()
	return inst.resources
}

// ProductIDs — номера продуктов 0..n-1.
func (inst *Instance) ProductIDs() []int {
	inst.initViews()
	return inst.products
}

// TimeUnits — моменты 0..T.
func (inst *Instance) TimeUnits() []int {
	inst.initViews()
	return inst.units
}

// CleaningStartTimes[i][t] — последний момент старта очистки площадки i,
// при котором она завершается ровно в t (0, если это невозможно).
func (inst *Instance) CleaningStartTimes() [][]int {
	inst.initStarts()
	return inst.cleanStarts
}

// NeutralizingStartTimes[i][p][t] — то же для нейтрализации продукта p.
func (inst *Instance) NeutralizingStartTimes() [][][]int {
	inst.initStarts()
	return inst.neutralStart
}

func (inst *Instance) initStarts() {
	inst.startsOnce.Do(func() {
		n, np, T := len(inst.Nodes), len(inst.Products), inst.Horizon
		inst.cleanStarts = make([][]int, n)
		inst.neutralStart = make([][][]int, n)
		for i := 0; i < n; i++ {
			peak := 0.0
			for _, c := range inst.Concentration[i] {
				peak = math.Max(peak, c)
			}
			inst.cleanStarts[i] = latestStarts(cleaningSteps(peak), T)
			inst.neutralStart[i] = make([][]int, np)
			for p := 0; p < np; p++ {
				inst.neutralStart[i][p] = latestStarts(neutralizingSteps(inst.Concentration[i][p]), T)
			}
		}
	})
}

// cleaningSteps — число единиц времени, за которые очистка с постоянной
// скоростью опускает концентрацию до Epsilon.
func cleaningSteps(v float64) int {
	k := 0
	for v > Epsilon {
		v -= CleaningSpeed
		k++
	}
	return k
}

func neutralizingSteps(v float64) int {
	k := 0
	for v > Epsilon {
		v -= v * NeutralizingSpeed
		k++
	}
	return k
}

func latestStarts(steps, T int) []int {
	out := make([]int, T+1)
	for t := steps; t <= T; t++ {
		out[t] = t - steps
	}
	return out
}
