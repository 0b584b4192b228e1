package static

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"optlis/internal/opt"
)

// NodeType — тип узла: депо (источник бригад) или задача (площадка для очистки).
type NodeType int

const (
	Depot NodeType = 0
	Task  NodeType = 1
)

type Node struct {
	ID       int
	Type     NodeType
	Duration int
	// Crews — число бригад, базирующихся в депо.
	Crews int
	Risk  float64
}

// Edge — неориентированное ребро графа площадок (единичное время переезда).
type Edge struct {
	From, To int
}

// Instance — неизменяемое описание статического экземпляра.
// Производные представления вычисляются один раз и безопасны для
// одновременного чтения из нескольких запусков.
type Instance struct {
	Nodes []Node
	Edges []Edge
	// Horizon — горизонт из файла; 0 означает оценку по верхней границе.
	Horizon int
	// TravelTimes включает времена переезда бригад между узлами.
	TravelTimes bool

	viewsOnce sync.Once
	depots    []int
	tasks     []int
	crews     int
	homes     []int
	dist      [][]int
	horizon   int
	periods   []int

	precMu sync.Mutex
	prec   map[float64]*PrecedenceGraph
}

func NewInstance(nodes []Node, edges []Edge, horizon int, travelTimes bool) (*Instance, error) {
	inst := &Instance{Nodes: nodes, Edges: edges, Horizon: horizon, TravelTimes: travelTimes}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// WithTravelTimes возвращает копию экземпляра с включёнными или отключёнными временами переезда.
func (inst *Instance) WithTravelTimes(on bool) (*Instance, error) {
	nodes := make([]Node, len(inst.Nodes))
	copy(nodes, inst.Nodes)
	edges := make([]Edge, len(inst.Edges))
	copy(edges, inst.Edges)
	return NewInstance(nodes, edges, inst.Horizon, on)
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	n := len(inst.Nodes)
	if n == 0 {
		return fmt.Errorf("%w: instance has no nodes", opt.ErrMalformedInstance)
	}
	if inst.Horizon < 0 {
		return fmt.Errorf("%w: horizon must be >= 0 (got %d)", opt.ErrMalformedInstance, inst.Horizon)
	}
	crews, tasks := 0, 0
	for i, nd := range inst.Nodes {
		if nd.ID != i {
			return fmt.Errorf("%w: node at position %d has id %d", opt.ErrMalformedInstance, i, nd.ID)
		}
		switch nd.Type {
		case Depot:
			if nd.Crews < 0 {
				return fmt.Errorf("%w: depot %d: crews must be >= 0 (got %d)", opt.ErrMalformedInstance, i, nd.Crews)
			}
			crews += nd.Crews
		case Task:
			tasks++
			if nd.Duration < 0 {
				return fmt.Errorf("%w: task %d: duration must be >= 0 (got %d)", opt.ErrMalformedInstance, i, nd.Duration)
			}
			if nd.Risk < 0 {
				return fmt.Errorf("%w: task %d: risk must be >= 0 (got %g)", opt.ErrMalformedInstance, i, nd.Risk)
			}
		default:
			return fmt.Errorf("%w: node %d: unknown type %d", opt.ErrMalformedInstance, i, nd.Type)
		}
	}
	if tasks > 0 && crews == 0 {
		return fmt.Errorf("%w: %d tasks but no crews at depots", opt.ErrMalformedInstance, tasks)
	}
	for k, e := range inst.Edges {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			return fmt.Errorf("%w: edge %d (%d,%d) out of range [0,%d)", opt.ErrMalformedInstance, k, e.From, e.To, n)
		}
		if e.From == e.To {
			return fmt.Errorf("%w: edge %d is a self-loop on %d", opt.ErrMalformedInstance, k, e.From)
		}
	}
	if inst.TravelTimes {
		dist := allPairs(inst.Nodes, inst.Edges)
		for _, t := range inst.taskIDs() {
			reachable := false
			for _, d := range inst.depotIDs() {
				if inst.Nodes[d].Crews > 0 && dist[d][t] >= 0 {
					reachable = true
					break
				}
			}
			if !reachable {
				return fmt.Errorf("%w: task %d is not reachable from any depot with crews", opt.ErrMalformedInstance, t)
			}
		}
	}
	return nil
}

func (inst *Instance) initViews() {
	inst.viewsOnce.Do(func() {
		inst.depots = inst.depotIDs()
		inst.tasks = inst.taskIDs()
		for _, d := range inst.depots {
			for k := 0; k < inst.Nodes[d].Crews; k++ {
				inst.homes = append(inst.homes, d)
			}
		}
		inst.crews = len(inst.homes)
		inst.dist = allPairs(inst.Nodes, inst.Edges)

		inst.horizon = inst.Horizon
		if inst.horizon == 0 {
			inst.horizon = inst.estimateHorizon()
		}
		inst.periods = make([]int, inst.horizon)
		for t := range inst.periods {
			inst.periods[t] = t + 1
		}
	})
}

// estimateHorizon — верхняя граница: сумма длительностей плюс переезд
// туда и обратно от ближайшего депо для каждой задачи.
func (inst *Instance) estimateHorizon() int {
	total := 0
	for _, t := range inst.tasks {
		total += inst.Nodes[t].Duration
		if !inst.TravelTimes {
			continue
		}
		nearest := -1
		for _, d := range inst.depots {
			if dd := inst.dist[d][t]; dd >= 0 && (nearest < 0 || dd < nearest) {
				nearest = dd
			}
		}
		if nearest > 0 {
			total += 2 * nearest
		}
	}
	if total < 1 {
		total = 1
	}
	return total
}

func (inst *Instance) depotIDs() []int {
	var out []int
	for _, nd := range inst.Nodes {
		if nd.Type == Depot {
			out = append(out, nd.ID)
		}
	}
	return out
}

func (inst *Instance) taskIDs() []int {
	var out []int
	for _, nd := range inst.Nodes {
		if nd.Type == Task {
			out = append(out, nd.ID)
		}
	}
	return out
}

// Depots возвращает идентификаторы депо по возрастанию.
func (inst *Instance) Depots() []int {
	inst.initViews()
	return inst.depots
}

// Tasks возвращает идентификаторы задач по возрастанию.
func (inst *Instance) Tasks() []int {
	inst.initViews()
	return inst.tasks
}

// Crews — ёмкость ресурса: суммарное число бригад во всех депо.
func (inst *Instance) Crews() int {
	inst.initViews()
	return inst.crews
}

// CrewHomes возвращает депо каждой бригады (длина равна Crews()).
func (inst *Instance) CrewHomes() []int {
	inst.initViews()
	return inst.homes
}

// Distances — кратчайшие расстояния (в рёбрах) между всеми парами узлов; -1 — недостижимо.
func (inst *Instance) Distances() [][]int {
	inst.initViews()
	return inst.dist
}

// Setup — время переезда из узла i в узел j.
func (inst *Instance) Setup(i, j int) int {
	if !inst.TravelTimes || i == j {
		return 0
	}
	inst.initViews()
	return inst.dist[i][j]
}

// TimeHorizon — горизонт T: из файла или оценка, если в файле 0.
func (inst *Instance) TimeHorizon() int {
	inst.initViews()
	return inst.horizon
}

// TimePeriods — моменты 1..T.
func (inst *Instance) TimePeriods() []int {
	inst.initViews()
	return inst.periods
}

// Precedence возвращает граф предшествования для порога d, кэшируя его.
func (inst *Instance) Precedence(d float64) (*PrecedenceGraph, error) {
	inst.precMu.Lock()
	defer inst.precMu.Unlock()
	if g, ok := inst.prec[d]; ok {
		return g, nil
	}
	g, err := NewPrecedenceGraph(inst, d)
	if err != nil {
		return nil, err
	}
	if inst.prec == nil {
		inst.prec = make(map[float64]*PrecedenceGraph)
	}
	inst.prec[d] = g
	return g, nil
}

// allPairs считает кратчайшие пути по графу площадок.
func allPairs(nodes []Node, edges []Edge) [][]int {
	g := simple.NewUndirectedGraph()
	for _, nd := range nodes {
		g.AddNode(simple.Node(nd.ID))
	}
	for _, e := range edges {
		g.SetEdge(simple.Edge{F: simple.Node(e.From), T: simple.Node(e.To)})
	}
	paths := path.DijkstraAllPaths(g)

	n := len(nodes)
	backing := make([]int, n*n)
	dist := make([][]int, n)
	for i := range dist {
		dist[i] = backing[i*n : (i+1)*n]
		for j := range dist[i] {
			w := paths.Weight(int64(i), int64(j))
			if math.IsInf(w, 1) {
				dist[i][j] = -1
				continue
			}
			dist[i][j] = int(w)
		}
	}
	return dist
}
