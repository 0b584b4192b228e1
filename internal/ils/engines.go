package ils

import (
	"optlis/internal/dynamic"
	"optlis/internal/search"
	"optlis/internal/static"
)

// StaticFactory — движки статического варианта для экземпляра inst.
// Время переезда и порог ослабления берутся из cfg.
func StaticFactory(inst *static.Instance, cfg Config) (Factory[[]int], error) {
	if inst.TravelTimes != cfg.TravelTimes {
		var err error
		if inst, err = inst.WithTravelTimes(cfg.TravelTimes); err != nil {
			return nil, err
		}
	}
	prec, err := inst.Precedence(cfg.Relaxation)
	if err != nil {
		return nil, err
	}
	return func(int) (search.Engine[[]int], error) {
		return search.NewStatic(cfg.Search, inst, prec, cfg.Objective)
	}, nil
}

func DynamicFactory(inst *dynamic.Instance, cfg Config) Factory[[]dynamic.Operation] {
	return func(int) (search.Engine[[]dynamic.Operation], error) {
		return search.NewDynamic(cfg.Search, inst)
	}
}
