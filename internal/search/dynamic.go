package search

import (
	"math"
	"math/rand"
	"sort"

	"optlis/internal/dynamic"
	"optlis/internal/opt"
)

type moveKind int

const (
	moveShift moveKind = iota
	moveRetarget
	moveAdd
	moveDrop
)

type opMove struct {
	kind     moveKind
	old, new dynamic.Operation
}

// task и from — площадка и первый момент, которые затрагивает ход.
func (m opMove) task() int {
	if m.kind == moveAdd {
		return m.new.Task
	}
	return m.old.Task
}

func (m opMove) from() int {
	switch m.kind {
	case moveAdd:
		return m.new.Time
	case moveDrop:
		return m.old.Time
	}
	return min(m.old.Time, m.new.Time)
}

// DynamicEngine ищет план операций. Допустимость хода проверяется по
// счётчикам занятых бригад и занятости площадки до его применения; оценка
// хода — перемоделирование одной площадки с первого изменённого момента.
type DynamicEngine struct {
	Cfg Config

	inst *dynamic.Instance
	sim  *dynamic.Simulator
	res  dynamic.Resources
	T    int
	np   int

	plan         *dynamic.Plan
	ops          []dynamic.Operation
	removing     []int
	neutralizing []int
	busy         []bool // [node][t]

	cost float64
	at   int

	touched []int
}

func NewDynamic(cfg Config, inst *dynamic.Instance) (*DynamicEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	T := inst.Horizon
	return &DynamicEngine{
		Cfg:          cfg,
		inst:         inst,
		sim:          dynamic.NewSimulator(inst),
		res:          inst.Resources(),
		T:            T,
		np:           len(inst.Products),
		plan:         dynamic.NewPlan(inst),
		removing:     make([]int, T+1),
		neutralizing: make([]int, T+1),
		busy:         make([]bool, len(inst.Nodes)*(T+1)),
		touched:      make([]int, len(inst.Nodes)),
	}, nil
}

// window — моменты, которые операция занимает на площадке.
func (e *DynamicEngine) window(op dynamic.Operation) (int, int) {
	if op.Kind == dynamic.OpRemove {
		return op.Time, min(e.T, op.Time+e.inst.Nodes[op.Task].RemovalDuration-1)
	}
	return op.Time, op.Time
}

func (e *DynamicEngine) fits(op dynamic.Operation) bool {
	if op.Time < 2 || op.Time > e.T || e.inst.TaskIndex(op.Task) < 0 {
		return false
	}
	counter, capacity := e.removing, e.res.Remove
	if op.Kind == dynamic.OpNeutralize {
		if op.Product < 1 || op.Product >= e.np {
			return false
		}
		counter, capacity = e.neutralizing, e.res.Neutralize
	}
	lo, hi := e.window(op)
	row := op.Task * (e.T + 1)
	for t := lo; t <= hi; t++ {
		if e.busy[row+t] || counter[t] >= capacity {
			return false
		}
	}
	return true
}

func (e *DynamicEngine) mark(op dynamic.Operation, on bool) {
	counter := e.removing
	if op.Kind == dynamic.OpNeutralize {
		counter = e.neutralizing
	}
	delta := 1
	if !on {
		delta = -1
	}
	lo, hi := e.window(op)
	row := op.Task * (e.T + 1)
	for t := lo; t <= hi; t++ {
		e.busy[row+t] = on
		counter[t] += delta
	}
	e.plan.Apply(op, on)
}

func (e *DynamicEngine) place(op dynamic.Operation) {
	e.mark(op, true)
	e.ops = append(e.ops, op)
}

func (e *DynamicEngine) unplace(idx int) dynamic.Operation {
	op := e.ops[idx]
	e.mark(op, false)
	last := len(e.ops) - 1
	e.ops[idx] = e.ops[last]
	e.ops = e.ops[:last]
	return op
}

// Init — жадный план: площадки по убыванию начального риска получают
// удаление в самый ранний свободный момент. Без бригад удаления площадка
// получает нейтрализацию самого опасного продукта.
func (e *DynamicEngine) Init(b *opt.Budget) error {
	e.reset()
	tasks := append([]int(nil), e.inst.Tasks()...)
	risk := make(map[int]float64, len(tasks))
	for _, i := range tasks {
		for p, pr := range e.inst.Products {
			risk[i] += pr.Risk * e.inst.Concentration[i][p]
		}
	}
	sort.SliceStable(tasks, func(x, y int) bool { return risk[tasks[x]] > risk[tasks[y]] })

	for _, i := range tasks {
		if risk[i] <= dynamic.Epsilon {
			continue
		}
		op := dynamic.Operation{Kind: dynamic.OpRemove, Task: i}
		if e.res.Remove == 0 {
			if e.res.Neutralize == 0 {
				break
			}
			best := -1.0
			for p := 1; p < e.np; p++ {
				if v := e.inst.Products[p].Risk * e.inst.Concentration[i][p]; v > best {
					best, op = v, dynamic.Operation{Kind: dynamic.OpNeutralize, Task: i, Product: p}
				}
			}
		}
		for t := 2; t <= e.T; t++ {
			op.Time = t
			if e.fits(op) {
				e.place(op)
				break
			}
		}
	}

	if !b.Charge() {
		return b.Err()
	}
	e.cost = e.sim.Simulate(e.plan)
	e.at = b.Consumed
	return nil
}

func (e *DynamicEngine) reset() {
	for len(e.ops) > 0 {
		e.unplace(len(e.ops) - 1)
	}
}

func (e *DynamicEngine) Objective() float64  { return e.cost }
func (e *DynamicEngine) LastImprovedAt() int { return e.at }

// Plan — текущий план (общий буфер движка).
func (e *DynamicEngine) Plan() *dynamic.Plan { return e.plan }

// Report — итог моделирования текущего плана.
func (e *DynamicEngine) Report() dynamic.Report { return e.sim.Report() }

// randomMove выбирает случайный ход; ok == false, если ход вырожден.
func (e *DynamicEngine) randomMove(rng *rand.Rand) (opMove, bool) {
	tasks := e.inst.Tasks()
	if len(tasks) == 0 || e.T < 2 {
		return opMove{}, false
	}
	kind := moveAdd
	if len(e.ops) > 0 {
		kind = moveKind(rng.Intn(4))
	}
	m := opMove{kind: kind}
	if kind != moveAdd {
		m.old = e.ops[rng.Intn(len(e.ops))]
		m.new = m.old
	}
	switch kind {
	case moveShift:
		m.new.Time = 2 + rng.Intn(e.T-1)
		return m, m.new.Time != m.old.Time
	case moveRetarget:
		if m.old.Kind != dynamic.OpNeutralize || e.np < 3 {
			return m, false
		}
		m.new.Product = 1 + rng.Intn(e.np-1)
		return m, m.new.Product != m.old.Product
	case moveAdd:
		m.new = dynamic.Operation{Task: tasks[rng.Intn(len(tasks))], Time: 2 + rng.Intn(e.T-1)}
		removeOK, neutralizeOK := e.res.Remove > 0, e.res.Neutralize > 0 && e.np > 1
		switch {
		case removeOK && neutralizeOK:
			if rng.Intn(2) == 0 {
				m.new.Kind = dynamic.OpRemove
			}
		case removeOK:
			m.new.Kind = dynamic.OpRemove
		case !neutralizeOK:
			return m, false
		}
		if m.new.Kind == dynamic.OpNeutralize {
			m.new.Product = 1 + rng.Intn(e.np-1)
		}
		return m, true
	}
	return m, true
}

func (e *DynamicEngine) indexOf(op dynamic.Operation) int {
	for k, o := range e.ops {
		if o == op {
			return k
		}
	}
	return -1
}

// applyMove применяет ход, если он допустим; иначе план не меняется.
func (e *DynamicEngine) applyMove(m opMove) bool {
	switch m.kind {
	case moveAdd:
		if !e.fits(m.new) {
			return false
		}
		e.place(m.new)
	case moveDrop:
		e.unplace(e.indexOf(m.old))
	default:
		e.unplace(e.indexOf(m.old))
		if !e.fits(m.new) {
			e.place(m.old)
			return false
		}
		e.place(m.new)
	}
	return true
}

func (e *DynamicEngine) undoMove(m opMove) {
	switch m.kind {
	case moveAdd:
		e.unplace(e.indexOf(m.new))
	case moveDrop:
		e.place(m.old)
	default:
		e.unplace(e.indexOf(m.new))
		e.place(m.old)
	}
}

// Descend — первое улучшение среди Cfg.Neighbors случайных соседей за проход.
func (e *DynamicEngine) Descend(b *opt.Budget, rng *rand.Rand) bool {
	improved := false
	for {
		found := false
		for tries := 0; tries < e.Cfg.Neighbors; tries++ {
			if b.Exhausted() {
				return improved
			}
			m, ok := e.randomMove(rng)
			if !ok || !e.applyMove(m) {
				continue
			}
			b.Charge()
			task, from := m.task(), m.from()
			e.sim.SimulateTask(e.plan, task, from)
			if v := e.sim.GlobalRisk(); v < e.cost-improveEps {
				e.cost = v
				e.at = b.Consumed
				improved, found = true, true
				break
			}
			e.undoMove(m)
			e.sim.SimulateTask(e.plan, task, from)
		}
		if !found {
			return improved
		}
	}
}

// Perturb делает round(strength·|ops|) случайных допустимых ходов и
// перемоделирует затронутые площадки.
func (e *DynamicEngine) Perturb(strength float64, b *opt.Budget, rng *rand.Rand) bool {
	if b.Exhausted() {
		return false
	}
	for i := range e.touched {
		e.touched[i] = math.MaxInt
	}
	k := perturbMoves(strength, max(1, len(e.ops)))
	for done, tries := 0, 0; done < k && tries < 20*k; tries++ {
		m, ok := e.randomMove(rng)
		if !ok || !e.applyMove(m) {
			continue
		}
		e.touched[m.task()] = min(e.touched[m.task()], m.from())
		done++
	}
	b.Charge()
	for i, from := range e.touched {
		if from != math.MaxInt {
			e.sim.SimulateTask(e.plan, i, from)
		}
	}
	e.cost = e.sim.GlobalRisk()
	e.at = b.Consumed
	return true
}

func (e *DynamicEngine) Snapshot() []dynamic.Operation {
	out := make([]dynamic.Operation, len(e.ops))
	copy(out, e.ops)
	return out
}

// Restore возвращает ранее оценённый план.
func (e *DynamicEngine) Restore(ops []dynamic.Operation) {
	e.reset()
	for _, op := range ops {
		e.place(op)
	}
	e.cost = e.sim.Simulate(e.plan)
}
