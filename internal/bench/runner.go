package bench

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"optlis/internal/ils"
	"optlis/internal/static"
)

// Case — случайный статический экземпляр на решётке Rows×Cols.
type Case struct {
	Rows         int
	Cols         int
	Crews        int
	MaxDuration  int
	InstanceSeed int64
}

func (c Case) Name() string {
	return fmt.Sprintf("grid%dx%d_k%d_s%d", c.Rows, c.Cols, c.Crews, c.InstanceSeed)
}

// Runner прогоняет ансамбль ILS на сериях случайных экземпляров.
type Runner struct {
	Cfg    ils.Config
	Logger *zap.Logger
}

func (r Runner) RunCase(ctx context.Context, c Case) ([]Record, error) {
	if c.Rows <= 0 || c.Cols <= 0 || c.Rows*c.Cols < 2 || c.Crews <= 0 || c.MaxDuration <= 0 {
		return nil, fmt.Errorf("case %s: invalid grid parameters", c.Name())
	}
	inst := static.RandomInstance(c.Rows, c.Cols, c.Crews, c.MaxDuration, randForSeed(c.InstanceSeed))

	factory, err := ils.StaticFactory(inst, r.Cfg)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", c.Name(), err)
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sum, err := ils.Ensemble(ctx, r.Cfg, r.Cfg.Budget(len(inst.Tasks())), factory, log.With(zap.String("case", c.Name())))
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", c.Name(), err)
	}
	return Records(c.Name(), r.Cfg.Seed, sum), nil
}
