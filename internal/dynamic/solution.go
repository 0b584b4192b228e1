package dynamic

import (
	"fmt"
	"strconv"
	"strings"

	"optlis/internal/solution"
)

// SolutionValues раскладывает план в переменные файла решения:
// global_risk, makespan, c_i, x_i_p_t (нейтрализация) и y_i_t (старт удаления).
func SolutionValues(inst *Instance, pl *Plan, rep Report) []solution.Entry {
	out := []solution.Entry{
		{Name: "global_risk", Value: rep.GlobalRisk},
		{Name: "makespan", Value: float64(rep.Makespan)},
	}
	for _, i := range inst.Tasks() {
		out = append(out, solution.Entry{Name: fmt.Sprintf("c_%d", i), Value: float64(rep.Completion[i])})
	}
	ops := pl.Operations()
	for _, op := range ops {
		if op.Kind == OpNeutralize {
			out = append(out, solution.Entry{Name: fmt.Sprintf("x_%d_%d_%d", op.Task, op.Product, op.Time), Value: 1})
		}
	}
	for _, op := range ops {
		if op.Kind == OpRemove {
			out = append(out, solution.Entry{Name: fmt.Sprintf("y_%d_%d", op.Task, op.Time), Value: 1})
		}
	}
	return out
}

// PlanFromValues восстанавливает план из импортированного решения.
// Учитываются только x_i_p_t и y_i_t со значением 1; прочие переменные
// (концентрации, потоки) игнорируются.
func PlanFromValues(inst *Instance, v solution.Values) (*Plan, error) {
	pl := NewPlan(inst)
	for name, val := range v {
		if val < 0.5 {
			continue
		}
		var want int
		switch {
		case strings.HasPrefix(name, "x_"):
			want = 3
		case strings.HasPrefix(name, "y_"):
			want = 2
		default:
			continue
		}
		parts := strings.Split(name, "_")[1:]
		if len(parts) != want {
			continue
		}
		idx := make([]int, want)
		for k, s := range parts {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("invalid operation variable %q", name)
			}
			idx[k] = n
		}
		i, t := idx[0], idx[want-1]
		if i < 0 || i >= len(inst.Nodes) || t < 0 || t > inst.Horizon {
			return nil, fmt.Errorf("operation variable %q out of range", name)
		}
		if want == 2 {
			pl.SetRemove(i, t, true)
			continue
		}
		if p := idx[1]; p < 0 || p >= len(inst.Products) {
			return nil, fmt.Errorf("operation variable %q: unknown product %d", name, p)
		}
		pl.SetNeutralize(i, idx[1], t, true)
	}
	return pl, nil
}
