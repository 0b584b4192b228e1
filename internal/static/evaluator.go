package static

import (
	"fmt"

	"optlis/internal/opt"
)

// Objective — выбираемая целевая функция статического варианта.
type Objective string

const (
	ObjectiveMakespan           Objective = "makespan"
	ObjectiveWeightedCompletion Objective = "weighted_completion"
	ObjectiveAccumulatedRisk    Objective = "accumulated_risk"
)

func (o Objective) Validate() error {
	switch o {
	case ObjectiveMakespan, ObjectiveWeightedCompletion, ObjectiveAccumulatedRisk:
		return nil
	}
	return fmt.Errorf("unknown objective %q", string(o))
}

// Report — результат оценки расписания.
type Report struct {
	Completion []int
	Makespan   int
	// WeightedCompletion — сумма r_i·C_i (поле overall_risk файла решения).
	WeightedCompletion float64
	// AccumulatedRisk — сумма по t=1..makespan рисков ещё не очищенных площадок.
	AccumulatedRisk float64
	Objective       float64
}

// Value возвращает значение выбранной целевой функции.
func (r Report) Value(o Objective) float64 {
	switch o {
	case ObjectiveMakespan:
		return float64(r.Makespan)
	case ObjectiveAccumulatedRisk:
		return r.AccumulatedRisk
	default:
		return r.WeightedCompletion
	}
}

// InfeasibleError описывает нарушенное ограничение.
type InfeasibleError struct {
	Reason string
	Task   int
	Other  int
	Time   int
}

func (e *InfeasibleError) Error() string {
	switch e.Reason {
	case "resource":
		return fmt.Sprintf("%v: resource capacity exceeded at t=%d", opt.ErrInfeasibleSchedule, e.Time)
	case "precedence":
		return fmt.Sprintf("%v: task %d must start before task %d", opt.ErrInfeasibleSchedule, e.Task, e.Other)
	}
	return fmt.Sprintf("%v: task %d: %s (t=%d)", opt.ErrInfeasibleSchedule, e.Task, e.Reason, e.Time)
}

func (e *InfeasibleError) Unwrap() error { return opt.ErrInfeasibleSchedule }

// Evaluator проверяет допустимость расписания и считает целевые функции.
// Не изменяет входные данные; буфер загрузки переиспользуется между вызовами,
// поэтому один Evaluator нельзя использовать из нескольких горутин одновременно.
type Evaluator struct {
	inst      *Instance
	prec      *PrecedenceGraph
	objective Objective
	load      []int
}

func NewEvaluator(inst *Instance, prec *PrecedenceGraph, objective Objective) (*Evaluator, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if prec == nil {
		return nil, fmt.Errorf("nil precedence graph")
	}
	if err := objective.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{
		inst:      inst,
		prec:      prec,
		objective: objective,
		load:      make([]int, inst.TimeHorizon()+2),
	}, nil
}

func (e *Evaluator) Objective() Objective { return e.objective }

func (e *Evaluator) Evaluate(s *Schedule) (Report, error) {
	if s == nil || len(s.Start) != len(e.inst.Nodes) {
		return Report{}, fmt.Errorf("schedule must cover %d nodes", len(e.inst.Nodes))
	}
	T := e.inst.TimeHorizon()
	rep := Report{Completion: make([]int, len(e.inst.Nodes))}

	for t := range e.load {
		e.load[t] = 0
	}

	for _, i := range e.inst.Tasks() {
		if s.Start[i] == Unscheduled {
			return Report{}, fmt.Errorf("%w: task %d has no start time", opt.ErrIncompleteSchedule, i)
		}
		if s.Start[i] < 1 {
			return Report{}, &InfeasibleError{Reason: "start before t=1", Task: i, Time: s.Start[i]}
		}
		if s.Setup[i] < 0 {
			return Report{}, &InfeasibleError{Reason: "negative setup", Task: i, Time: s.Start[i]}
		}
		c := s.Completion(e.inst, i)
		// Занятые моменты [Start, c) должны лежать в 1..T
		if c > T+1 {
			return Report{}, &InfeasibleError{Reason: "completion after horizon", Task: i, Time: c}
		}
		rep.Completion[i] = c
		if c > rep.Makespan {
			rep.Makespan = c
		}
		r := e.inst.Nodes[i].Risk
		rep.WeightedCompletion += r * float64(c)
		if c > 1 {
			rep.AccumulatedRisk += r * float64(c-1)
		}

		// Разностный массив загрузки ресурса
		if c > s.Start[i] {
			e.load[s.Start[i]]++
			e.load[c]--
		}
	}

	running := 0
	K := e.inst.Crews()
	for t := 1; t <= T; t++ {
		running += e.load[t]
		if running > K {
			return Report{}, &InfeasibleError{Reason: "resource", Time: t}
		}
	}

	for _, p := range e.prec.Pairs {
		if s.Start[p.Before] > s.Start[p.After] {
			return Report{}, &InfeasibleError{Reason: "precedence", Task: p.Before, Other: p.After, Time: s.Start[p.After]}
		}
	}

	rep.Objective = rep.Value(e.objective)
	return rep, nil
}
