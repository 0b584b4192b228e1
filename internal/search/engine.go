// Package search содержит локальный поиск для обоих вариантов задачи.
// Каждая оценка кандидата списывает одну единицу бюджета; возврат к уже
// оценённому состоянию (Restore, откат отклонённого хода) оценкой не считается.
package search

import (
	"math/rand"

	"optlis/internal/opt"
)

// improveEps — минимальное улучшение, которое считается улучшением.
const improveEps = 1e-12

// Engine — локальный поиск над решением типа S, управляемый ILS.
type Engine[S any] interface {
	// Init строит и оценивает начальное решение.
	Init(b *opt.Budget) error
	// Objective — значение целевой функции текущего решения.
	Objective() float64
	// Descend — спуск до локального оптимума или исчерпания бюджета.
	// Возвращает true, если текущее решение улучшилось.
	Descend(b *opt.Budget, rng *rand.Rand) bool
	// Perturb применяет случайное возмущение силы strength и оценивает
	// результат. Возвращает false, если на оценку не хватило бюджета.
	Perturb(strength float64, b *opt.Budget, rng *rand.Rand) bool
	Snapshot() S
	Restore(S)
	// LastImprovedAt — номер оценки, на которой было оценено текущее решение.
	LastImprovedAt() int
}

// perturbMoves — число случайных ходов возмущения силы strength для size элементов.
func perturbMoves(strength float64, size int) int {
	k := int(strength*float64(size) + 0.5)
	if k < 1 {
		k = 1
	}
	return k
}
