package static

import "fmt"

// ValidatePermutation проверяет, что perm содержит каждую задачу ровно один раз.
func ValidatePermutation(inst *Instance, perm []int) error {
	tasks := inst.Tasks()
	if len(perm) != len(tasks) {
		return fmt.Errorf("permutation length must be %d (got %d)", len(tasks), len(perm))
	}
	seen := make([]bool, len(inst.Nodes))
	for i, v := range perm {
		if v < 0 || v >= len(inst.Nodes) {
			return fmt.Errorf("perm[%d]=%d out of range [0,%d)", i, v, len(inst.Nodes))
		}
		if inst.Nodes[v].Type != Task {
			return fmt.Errorf("perm[%d]=%d is not a task", i, v)
		}
		if seen[v] {
			return fmt.Errorf("duplicate task id %d in permutation", v)
		}
		seen[v] = true
	}
	return nil
}

// SwapKeepsOrder сообщает, сохранит ли обмен позиций a и b линейное расширение.
// Элемент из a уезжает за все элементы (a, b], элемент из b — перед [a, b).
func SwapKeepsOrder(prec *PrecedenceGraph, perm []int, a, b int) bool {
	if a == b {
		return true
	}
	if a > b {
		a, b = b, a
	}
	x, y := perm[a], perm[b]
	for k := a + 1; k <= b; k++ {
		if prec.Before(x, perm[k]) {
			return false
		}
	}
	for k := a; k < b; k++ {
		if prec.Before(perm[k], y) {
			return false
		}
	}
	return true
}

// InsertKeepsOrder сообщает, сохранит ли перенос элемента из from в to линейное расширение.
func InsertKeepsOrder(prec *PrecedenceGraph, perm []int, from, to int) bool {
	x := perm[from]
	if from < to {
		for k := from + 1; k <= to; k++ {
			if prec.Before(x, perm[k]) {
				return false
			}
		}
		return true
	}
	for k := to; k < from; k++ {
		if prec.Before(perm[k], x) {
			return false
		}
	}
	return true
}

// ApplySwap меняет местами элементы в позициях i и j.
func ApplySwap(p []int, i, j int) {
	p[i], p[j] = p[j], p[i]
}

// ApplyInsert переносит элемент из позиции from в позицию to.
func ApplyInsert(p []int, from, to int) {
	if from == to {
		return
	}
	val := p[from]
	if from < to {
		copy(p[from:to], p[from+1:to+1])
		p[to] = val
		return
	}
	copy(p[to+1:from+1], p[to:from])
	p[to] = val
}
