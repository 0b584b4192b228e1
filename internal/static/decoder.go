package static

import (
	"fmt"
	"math"
)

type crewState struct {
	loc  int
	free int
}

// Totals — целевые величины, накопленные декодером.
type Totals struct {
	Makespan           int
	WeightedCompletion float64
	AccumulatedRisk    float64
	// Feasible == false, если какая-то задача заняла момент позже горизонта.
	Feasible bool
}

func (t Totals) Value(o Objective) float64 {
	if !t.Feasible {
		return math.Inf(1)
	}
	return Report{
		Makespan:           t.Makespan,
		WeightedCompletion: t.WeightedCompletion,
		AccumulatedRisk:    t.AccumulatedRisk,
	}.Value(o)
}

// Decoder превращает список приоритетов (линейное расширение порядка
// предшествования) в расписание: каждая задача достаётся бригаде, которая
// завершит её раньше всех. Состояния бригад и частичные суммы сохраняются
// перед каждой позицией, поэтому после хода, затронувшего позиции >= p,
// перестраивается только суффикс.
type Decoder struct {
	inst  *Instance
	prec  *PrecedenceGraph
	homes []int
	n     int
	k     int

	states   []crewState // (n+1)*k
	sumW     []float64
	maxC     []int
	overflow []bool
	riskSum  float64
}

func NewDecoder(inst *Instance, prec *PrecedenceGraph) (*Decoder, error) {
	if prec == nil {
		return nil, fmt.Errorf("nil precedence graph")
	}
	n := len(inst.Tasks())
	k := inst.Crews()
	d := &Decoder{
		inst:     inst,
		prec:     prec,
		homes:    inst.CrewHomes(),
		n:        n,
		k:        k,
		states:   make([]crewState, (n+1)*k),
		sumW:     make([]float64, n+1),
		maxC:     make([]int, n+1),
		overflow: make([]bool, n+1),
	}
	for _, t := range inst.Tasks() {
		d.riskSum += inst.Nodes[t].Risk
	}
	for c := 0; c < k; c++ {
		d.states[c] = crewState{loc: d.homes[c], free: 1}
	}
	return d, nil
}

// Decode строит расписание целиком, проверяя перестановку.
func (d *Decoder) Decode(perm []int, s *Schedule) (Totals, error) {
	if len(perm) != d.n {
		return Totals{}, fmt.Errorf("permutation length must be %d (got %d)", d.n, len(perm))
	}
	if err := ValidatePermutation(d.inst, perm); err != nil {
		return Totals{}, err
	}
	if !d.prec.IsLinearExtension(perm) {
		return Totals{}, fmt.Errorf("permutation violates precedence (d=%g)", d.prec.Threshold)
	}
	s.Reset()
	return d.DecodeFrom(perm, 0, s), nil
}

// DecodeFrom перестраивает позиции from..n-1. Позиции до from должны
// совпадать с последним декодированием этой перестановки.
func (d *Decoder) DecodeFrom(perm []int, from int, s *Schedule) Totals {
	if from < 0 {
		from = 0
	}
	T := d.inst.TimeHorizon()
	// Рабочее состояние бригад копируется из контрольной точки позиции from
	cur := make([]crewState, d.k)
	copy(cur, d.states[from*d.k:(from+1)*d.k])

	for pos := from; pos < d.n; pos++ {
		task := perm[pos]
		release := 1
		for _, p := range d.prec.Predecessors(task) {
			if s.Start[p] > release {
				release = s.Start[p]
			}
		}

		bestCrew, bestStart, bestSetup := -1, 0, 0
		bestComp := math.MaxInt
		dur := d.inst.Nodes[task].Duration
		for c := range cur {
			start := cur[c].free
			if release > start {
				start = release
			}
			setup := d.inst.Setup(cur[c].loc, task)
			if setup < 0 {
				continue
			}
			if comp := start + setup + dur; comp < bestComp {
				bestCrew, bestStart, bestSetup, bestComp = c, start, setup, comp
			}
		}

		s.Start[task] = bestStart
		s.Setup[task] = bestSetup
		s.Crew[task] = bestCrew
		s.Prev[task] = cur[bestCrew].loc
		cur[bestCrew] = crewState{loc: task, free: bestComp}

		d.sumW[pos+1] = d.sumW[pos] + d.inst.Nodes[task].Risk*float64(bestComp)
		d.maxC[pos+1] = d.maxC[pos]
		if bestComp > d.maxC[pos+1] {
			d.maxC[pos+1] = bestComp
		}
		d.overflow[pos+1] = d.overflow[pos] || bestComp > T+1
		copy(d.states[(pos+1)*d.k:(pos+2)*d.k], cur)
	}
	return d.totals()
}

func (d *Decoder) totals() Totals {
	return Totals{
		Makespan:           d.maxC[d.n],
		WeightedCompletion: d.sumW[d.n],
		AccumulatedRisk:    d.sumW[d.n] - d.riskSum,
		Feasible:           !d.overflow[d.n],
	}
}

// FinalCrews возвращает последнее положение и момент освобождения каждой бригады.
func (d *Decoder) FinalCrews() (locs []int, free []int) {
	last := d.states[d.n*d.k : (d.n+1)*d.k]
	locs = make([]int, d.k)
	free = make([]int, d.k)
	for c, st := range last {
		locs[c], free[c] = st.loc, st.free
	}
	return locs, free
}
