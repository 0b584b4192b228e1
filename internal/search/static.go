package search

import (
	"fmt"
	"math/rand"
	"sort"

	"optlis/internal/opt"
	"optlis/internal/static"
)

type permMove struct {
	insert   bool
	from, to int
}

// StaticEngine ищет список приоритетов задач; расписание строит декодер.
// Ход, нарушающий линейное расширение порядка предшествования, отбрасывается
// до применения и не оценивается.
type StaticEngine struct {
	Cfg Config

	inst      *static.Instance
	prec      *static.PrecedenceGraph
	dec       *static.Decoder
	objective static.Objective

	perm   []int
	sched  *static.Schedule
	totals static.Totals
	cost   float64
	at     int

	moves []permMove
}

func NewStatic(cfg Config, inst *static.Instance, prec *static.PrecedenceGraph, objective static.Objective) (*StaticEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := objective.Validate(); err != nil {
		return nil, err
	}
	dec, err := static.NewDecoder(inst, prec)
	if err != nil {
		return nil, err
	}
	e := &StaticEngine{
		Cfg:       cfg,
		inst:      inst,
		prec:      prec,
		dec:       dec,
		objective: objective,
		perm:      make([]int, len(inst.Tasks())),
		sched:     static.NewSchedule(len(inst.Nodes)),
	}
	n := len(e.perm)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if a == b {
				continue
			}
			if a < b && cfg.Neighborhood != NeighborhoodInsert {
				e.moves = append(e.moves, permMove{from: a, to: b})
			}
			// Перенос на соседнюю позицию совпадает с обменом
			if cfg.Neighborhood == NeighborhoodInsert || (cfg.Neighborhood == NeighborhoodBoth && (b-a > 1 || a-b > 1)) {
				e.moves = append(e.moves, permMove{insert: true, from: a, to: b})
			}
		}
	}
	return e, nil
}

// Init — задачи по убыванию риска, при равенстве по возрастанию id.
// Такой порядок всегда является линейным расширением предшествования.
func (e *StaticEngine) Init(b *opt.Budget) error {
	copy(e.perm, e.inst.Tasks())
	sort.SliceStable(e.perm, func(x, y int) bool {
		return e.inst.Nodes[e.perm[x]].Risk > e.inst.Nodes[e.perm[y]].Risk
	})
	if !b.Charge() {
		return b.Err()
	}
	tot, err := e.dec.Decode(e.perm, e.sched)
	if err != nil {
		return fmt.Errorf("initial priority list: %w", err)
	}
	e.set(tot, b.Consumed)
	return nil
}

func (e *StaticEngine) set(tot static.Totals, at int) {
	e.totals = tot
	e.cost = tot.Value(e.objective)
	e.at = at
}

func (e *StaticEngine) Objective() float64  { return e.cost }
func (e *StaticEngine) LastImprovedAt() int { return e.at }

// Totals — величины текущего расписания.
func (e *StaticEngine) Totals() static.Totals { return e.totals }

// Schedule — текущее расписание (общий буфер движка).
func (e *StaticEngine) Schedule() *static.Schedule { return e.sched }

func (e *StaticEngine) keepsOrder(m permMove) bool {
	if m.insert {
		return static.InsertKeepsOrder(e.prec, e.perm, m.from, m.to)
	}
	return static.SwapKeepsOrder(e.prec, e.perm, m.from, m.to)
}

func (e *StaticEngine) apply(m permMove) {
	if m.insert {
		static.ApplyInsert(e.perm, m.from, m.to)
		return
	}
	static.ApplySwap(e.perm, m.from, m.to)
}

func (e *StaticEngine) revert(m permMove) {
	if m.insert {
		static.ApplyInsert(e.perm, m.to, m.from)
		return
	}
	static.ApplySwap(e.perm, m.from, m.to)
}

// Descend — первое улучшение по перемешанной окрестности; после принятого
// хода окрестность просматривается заново.
func (e *StaticEngine) Descend(b *opt.Budget, rng *rand.Rand) bool {
	improved := false
	for {
		rng.Shuffle(len(e.moves), func(i, j int) { e.moves[i], e.moves[j] = e.moves[j], e.moves[i] })
		found := false
		for _, m := range e.moves {
			if !e.keepsOrder(m) {
				continue
			}
			if !b.Charge() {
				return improved
			}
			from := min(m.from, m.to)
			e.apply(m)
			tot := e.dec.DecodeFrom(e.perm, from, e.sched)
			if v := tot.Value(e.objective); v < e.cost-improveEps {
				e.set(tot, b.Consumed)
				improved, found = true, true
				break
			}
			e.revert(m)
			e.dec.DecodeFrom(e.perm, from, e.sched)
		}
		if !found {
			return improved
		}
	}
}

// Perturb делает round(strength·n) случайных допустимых обменов.
func (e *StaticEngine) Perturb(strength float64, b *opt.Budget, rng *rand.Rand) bool {
	n := len(e.perm)
	if b.Exhausted() {
		return false
	}
	from := n
	if n >= 2 {
		k := perturbMoves(strength, n)
		for done, tries := 0, 0; done < k && tries < 20*k; tries++ {
			m := permMove{from: rng.Intn(n), to: rng.Intn(n)}
			if m.from == m.to || !e.keepsOrder(m) {
				continue
			}
			e.apply(m)
			from = min(from, m.from, m.to)
			done++
		}
	}
	b.Charge()
	if from < n {
		e.set(e.dec.DecodeFrom(e.perm, from, e.sched), b.Consumed)
	} else {
		e.at = b.Consumed
	}
	return true
}

func (e *StaticEngine) Snapshot() []int {
	out := make([]int, len(e.perm))
	copy(out, e.perm)
	return out
}

// Restore возвращает ранее оценённый список приоритетов.
func (e *StaticEngine) Restore(perm []int) {
	copy(e.perm, perm)
	tot := e.dec.DecodeFrom(e.perm, 0, e.sched)
	e.totals = tot
	e.cost = tot.Value(e.objective)
}
