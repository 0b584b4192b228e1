package ils

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"optlis/internal/opt"
	"optlis/internal/search"
)

// Factory создаёт свежий движок поиска для запуска run.
// Экземпляр задачи разделяется между запусками только на чтение.
type Factory[S any] func(run int) (search.Engine[S], error)

// Summary — результаты ансамбля; Runs[k] — запуск k.
type Summary[S any] struct {
	Runs  []opt.Result[S]
	Seeds []int64
	// Best — индекс лучшего запуска (при равенстве — меньший индекс).
	Best int
}

func (s Summary[S]) BestResult() opt.Result[S] {
	return s.Runs[s.Best]
}

// Ensemble выполняет cfg.RunCount() независимых запусков на cfg.Parallel
// воркерах. Результат не зависит от числа воркеров: сид запуска
// определяется только базовым сидом и номером запуска.
func Ensemble[S any](ctx context.Context, cfg Config, budget int, factory Factory[S], log *zap.Logger) (Summary[S], error) {
	if err := cfg.Validate(); err != nil {
		return Summary[S]{}, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	runs := cfg.RunCount()
	sum := Summary[S]{
		Runs:  make([]opt.Result[S], runs),
		Seeds: make([]int64, runs),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for run := 0; run < runs; run++ {
		run := run
		seed := Seed(cfg.Seed, run)
		sum.Seeds[run] = seed
		g.Go(func() error {
			eng, err := factory(run)
			if err != nil {
				return fmt.Errorf("run %d: %w", run, err)
			}
			log.Debug("run started", zap.Int("run", run), zap.Int64("seed", seed), zap.Int("budget", budget))
			res, err := Run(gctx, eng, cfg, budget, rand.New(rand.NewSource(seed)))
			if err != nil {
				return fmt.Errorf("run %d: %w", run, err)
			}
			sum.Runs[run] = res
			log.Info("run finished",
				zap.Int("run", run),
				zap.Float64("objective", res.Objective),
				zap.Int("found_at", res.FoundAt),
				zap.Int("evaluations", res.Evaluations),
				zap.Duration("duration", res.Duration),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary[S]{}, err
	}

	for run := 1; run < runs; run++ {
		if sum.Runs[run].Objective < sum.Runs[sum.Best].Objective {
			sum.Best = run
		}
	}
	best := sum.Runs[sum.Best]
	log.Info("best run", zap.Int("run", sum.Best), zap.Float64("objective", best.Objective), zap.Int("found_at", best.FoundAt))
	return sum, nil
}
