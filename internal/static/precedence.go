package static

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// precedenceEps поглощает погрешность вычитания рисков, заданных с двумя знаками.
const precedenceEps = 1e-9

// Pair — упорядоченная пара задач: Before должна начаться не позже After.
type Pair struct {
	Before, After int
}

// PrecedenceGraph — частичный порядок задач для порога ослабления d.
// Рёбра идут только от строго более рискованной задачи к менее рискованной,
// поэтому граф ацикличен при любом d.
type PrecedenceGraph struct {
	Threshold float64
	Pairs     []Pair

	n      int
	succ   [][]int
	pred   [][]int
	before []bool
	order  []int
}

// NewPrecedenceGraph строит порядок: i → j, если нормированная разница
// рисков r_i − r_j превышает d. Депо в порядке не участвуют.
func NewPrecedenceGraph(inst *Instance, d float64) (*PrecedenceGraph, error) {
	if d < 0 || d > 1 {
		return nil, fmt.Errorf("relaxation threshold must be in [0,1] (got %g)", d)
	}
	n := len(inst.Nodes)
	g := &PrecedenceGraph{
		Threshold: d,
		n:         n,
		succ:      make([][]int, n),
		pred:      make([][]int, n),
		before:    make([]bool, n*n),
	}

	tasks := inst.Tasks()
	scale := 1.0
	for _, t := range tasks {
		if r := inst.Nodes[t].Risk; r > scale {
			scale = r
		}
	}

	if d < 1 {
		for _, i := range tasks {
			for _, j := range tasks {
				if i == j {
					continue
				}
				gap := (inst.Nodes[i].Risk - inst.Nodes[j].Risk) / scale
				if gap > d+precedenceEps {
					g.add(i, j)
				}
			}
		}
	}

	order, err := linearExtension(tasks, g.Pairs)
	if err != nil {
		return nil, err
	}
	g.order = order
	return g, nil
}

func (g *PrecedenceGraph) add(i, j int) {
	g.Pairs = append(g.Pairs, Pair{Before: i, After: j})
	g.succ[i] = append(g.succ[i], j)
	g.pred[j] = append(g.pred[j], i)
	g.before[i*g.n+j] = true
}

// Before сообщает, есть ли пара i → j.
func (g *PrecedenceGraph) Before(i, j int) bool {
	return g.before[i*g.n+j]
}

func (g *PrecedenceGraph) Successors(i int) []int   { return g.succ[i] }
func (g *PrecedenceGraph) Predecessors(i int) []int { return g.pred[i] }

// Order возвращает линейное расширение порядка (при равенстве — по возрастанию id).
func (g *PrecedenceGraph) Order() []int {
	out := make([]int, len(g.order))
	copy(out, g.order)
	return out
}

// IsLinearExtension проверяет, что перестановка задач не нарушает порядок.
func (g *PrecedenceGraph) IsLinearExtension(perm []int) bool {
	pos := make([]int, g.n)
	for i := range pos {
		pos[i] = -1
	}
	for k, t := range perm {
		pos[t] = k
	}
	for _, p := range g.Pairs {
		if pos[p.Before] < 0 || pos[p.After] < 0 || pos[p.Before] > pos[p.After] {
			return false
		}
	}
	return true
}

func linearExtension(tasks []int, pairs []Pair) ([]int, error) {
	dg := simple.NewDirectedGraph()
	for _, t := range tasks {
		dg.AddNode(simple.Node(t))
	}
	for _, p := range pairs {
		dg.SetEdge(simple.Edge{F: simple.Node(p.Before), T: simple.Node(p.After)})
	}
	sorted, err := topo.SortStabilized(dg, func(nodes []graph.Node) {
		sort.Slice(nodes, func(a, b int) bool { return nodes[a].ID() < nodes[b].ID() })
	})
	if err != nil {
		return nil, fmt.Errorf("precedence relation is cyclic: %w", err)
	}
	order := make([]int, len(sorted))
	for k, nd := range sorted {
		order[k] = int(nd.ID())
	}
	return order, nil
}
