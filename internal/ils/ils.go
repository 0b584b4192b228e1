package ils

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"optlis/internal/opt"
	"optlis/internal/search"
)

// Run — один запуск ILS: начальное решение, спуск, затем цикл
// «возмущение → спуск → приём/отказ» до исчерпания бюджета.
// Кандидат принимается, если он не хуже лучшего более чем на Tolerance;
// иначе восстанавливается последнее принятое решение. Если за весь бюджет
// не найдено ни одного допустимого решения, возвращается ErrInfeasibleSchedule.
func Run[S any](ctx context.Context, eng search.Engine[S], cfg Config, budget int, rng *rand.Rand) (opt.Result[S], error) {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return opt.Result[S]{}, err
	}
	if rng == nil {
		return opt.Result[S]{}, errors.New("nil random number generator")
	}
	b, err := opt.NewBudget(budget)
	if err != nil {
		return opt.Result[S]{}, err
	}

	if err := eng.Init(b); err != nil {
		return opt.Result[S]{}, err
	}
	eng.Descend(b, rng)

	best := eng.Snapshot()
	bestCost := eng.Objective()
	foundAt := eng.LastImprovedAt()
	accepted := best

	result := func() opt.Result[S] {
		return opt.Result[S]{
			Solution:    best,
			Objective:   bestCost,
			Evaluations: b.Consumed,
			FoundAt:     foundAt,
			Duration:    time.Since(start),
			Meta: map[string]any{
				"perturbation": cfg.Perturbation,
				"tolerance":    cfg.Tolerance,
				"budget":       b.Max,
			},
		}
	}

	iter := 0
	for !b.Exhausted() {
		if err := ctx.Err(); err != nil {
			res := result()
			res.Iterations = iter
			return res, err
		}

		if !eng.Perturb(cfg.Perturbation, b, rng) {
			break
		}
		eng.Descend(b, rng)
		iter++

		cost := eng.Objective()
		if cost < bestCost {
			best = eng.Snapshot()
			bestCost = cost
			foundAt = eng.LastImprovedAt()
			accepted = best
			continue
		}
		if cost <= bestCost+cfg.Tolerance {
			accepted = eng.Snapshot()
			continue
		}
		eng.Restore(accepted)
	}

	res := result()
	res.Iterations = iter
	// Ни один кандидат не уложился в горизонт
	if math.IsInf(bestCost, 1) {
		return res, fmt.Errorf("%w: no candidate fits the time horizon after %d evaluations", opt.ErrInfeasibleSchedule, b.Consumed)
	}
	return res, nil
}
