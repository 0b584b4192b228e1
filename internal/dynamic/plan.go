package dynamic

import (
	"fmt"
	"sort"

	"optlis/internal/opt"
)

// OpKind — вид операции бригады на площадке.
type OpKind int

const (
	OpNeutralize OpKind = iota
	OpRemove
)

func (k OpKind) String() string {
	if k == OpRemove {
		return "remove"
	}
	return "neutralize"
}

// Operation — одна операция плана. Product имеет смысл только для нейтрализации.
type Operation struct {
	Kind    OpKind
	Task    int
	Product int
	Time    int
}

// Plan — плотные 0/1-массивы операций: Neutralize[node][product][t] и
// Remove[node][t] (моменты старта удаления), t ∈ 0..T.
type Plan struct {
	nodes    int
	products int
	units    int

	neutralize []bool
	remove     []bool
}

func NewPlan(inst *Instance) *Plan {
	n, np, units := len(inst.Nodes), len(inst.Products), inst.Horizon+1
	return &Plan{
		nodes:      n,
		products:   np,
		units:      units,
		neutralize: make([]bool, n*np*units),
		remove:     make([]bool, n*units),
	}
}

func (pl *Plan) inRange(i, t int) bool {
	return i >= 0 && i < pl.nodes && t >= 0 && t < pl.units
}

func (pl *Plan) Neutralize(i, p, t int) bool {
	if !pl.inRange(i, t) || p < 0 || p >= pl.products {
		return false
	}
	return pl.neutralize[(i*pl.products+p)*pl.units+t]
}

func (pl *Plan) SetNeutralize(i, p, t int, on bool) {
	pl.neutralize[(i*pl.products+p)*pl.units+t] = on
}

// Remove сообщает, начинается ли удаление на площадке i в момент t.
func (pl *Plan) Remove(i, t int) bool {
	if !pl.inRange(i, t) {
		return false
	}
	return pl.remove[i*pl.units+t]
}

func (pl *Plan) SetRemove(i, t int, on bool) {
	pl.remove[i*pl.units+t] = on
}

// Apply включает (on == true) или выключает операцию.
func (pl *Plan) Apply(op Operation, on bool) {
	if op.Kind == OpRemove {
		pl.SetRemove(op.Task, op.Time, on)
		return
	}
	pl.SetNeutralize(op.Task, op.Product, op.Time, on)
}

func (pl *Plan) Clone() *Plan {
	out := &Plan{nodes: pl.nodes, products: pl.products, units: pl.units}
	out.neutralize = append([]bool(nil), pl.neutralize...)
	out.remove = append([]bool(nil), pl.remove...)
	return out
}

func (pl *Plan) CopyFrom(o *Plan) {
	copy(pl.neutralize, o.neutralize)
	copy(pl.remove, o.remove)
}

// Operations перечисляет операции плана по (task, time, kind, product).
func (pl *Plan) Operations() []Operation {
	var ops []Operation
	for i := 0; i < pl.nodes; i++ {
		for t := 0; t < pl.units; t++ {
			if pl.remove[i*pl.units+t] {
				ops = append(ops, Operation{Kind: OpRemove, Task: i, Time: t})
			}
			for p := 0; p < pl.products; p++ {
				if pl.neutralize[(i*pl.products+p)*pl.units+t] {
					ops = append(ops, Operation{Kind: OpNeutralize, Task: i, Product: p, Time: t})
				}
			}
		}
	}
	sort.SliceStable(ops, func(a, b int) bool {
		if ops[a].Task != ops[b].Task {
			return ops[a].Task < ops[b].Task
		}
		return ops[a].Time < ops[b].Time
	})
	return ops
}

// InfeasibleError описывает нарушенное ограничение плана.
type InfeasibleError struct {
	Reason  string
	Task    int
	Product int
	Time    int
}

func (e *InfeasibleError) Error() string {
	switch e.Reason {
	case "neutralize crews", "remove crews":
		return fmt.Sprintf("%v: %s exceeded at t=%d", opt.ErrInfeasibleOperationSequence, e.Reason, e.Time)
	}
	return fmt.Sprintf("%v: task %d: %s (t=%d)", opt.ErrInfeasibleOperationSequence, e.Task, e.Reason, e.Time)
}

func (e *InfeasibleError) Unwrap() error { return opt.ErrInfeasibleOperationSequence }

// CheckPlan проверяет план: операции только на задачах и начиная с t=2,
// продукт 0 не нейтрализуется, на площадке одновременно не больше одной
// операции (удаление занимает окно из RemovalDuration моментов), число
// занятых бригад каждого вида в каждый момент не превышает ёмкость.
func CheckPlan(inst *Instance, pl *Plan) error {
	if pl.nodes != len(inst.Nodes) || pl.products != len(inst.Products) || pl.units != inst.Horizon+1 {
		return fmt.Errorf("plan dimensions %dx%dx%d do not match instance", pl.nodes, pl.products, pl.units)
	}
	T := inst.Horizon
	res := inst.Resources()
	removing := make([]int, T+1)
	neutralizing := make([]int, T+1)

	for i, nd := range inst.Nodes {
		// z[t] — активное удаление в момент t (скользящая сумма стартов)
		active := 0
		for t := 0; t <= T; t++ {
			starts := pl.remove[i*pl.units+t]
			if starts {
				active++
			}
			if d := nd.RemovalDuration; t-d >= 0 && pl.remove[i*pl.units+t-d] {
				active--
			}
			ops := 0
			for p := 0; p < pl.products; p++ {
				if !pl.neutralize[(i*pl.products+p)*pl.units+t] {
					continue
				}
				if nd.Type != Task {
					return &InfeasibleError{Reason: "operation at a depot", Task: i, Product: p, Time: t}
				}
				if t <= 1 {
					return &InfeasibleError{Reason: "operation before t=2", Task: i, Product: p, Time: t}
				}
				if p == 0 {
					return &InfeasibleError{Reason: "product 0 neutralized", Task: i, Product: p, Time: t}
				}
				ops++
			}
			if starts {
				if nd.Type != Task {
					return &InfeasibleError{Reason: "operation at a depot", Task: i, Time: t}
				}
				if t <= 1 {
					return &InfeasibleError{Reason: "operation before t=2", Task: i, Time: t}
				}
			}
			if ops+active > 1 {
				return &InfeasibleError{Reason: "overlapping operations", Task: i, Time: t}
			}
			removing[t] += active
			neutralizing[t] += ops
		}
	}

	for t := 1; t <= T; t++ {
		if removing[t] > res.Remove {
			return &InfeasibleError{Reason: "remove crews", Task: -1, Time: t}
		}
		if neutralizing[t] > res.Neutralize {
			return &InfeasibleError{Reason: "neutralize crews", Task: -1, Time: t}
		}
	}
	return nil
}
