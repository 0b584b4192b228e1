// Package ils — итеративный локальный поиск под бюджетом оценок
// и ансамбль независимых запусков.
package ils

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"optlis/internal/search"
	"optlis/internal/static"
)

var validate = validator.New()

type Config struct {
	// Relaxation — порог ослабления порядка предшествования d ∈ [0,1].
	Relaxation float64 `yaml:"relaxation" validate:"gte=0,lte=1"`
	// Perturbation — сила возмущения (доля элементов решения).
	Perturbation float64 `yaml:"perturbation" validate:"gte=0,lte=1"`
	// Tolerance — кандидат принимается, если хуже лучшего не более чем на Tolerance.
	Tolerance float64 `yaml:"tolerance" validate:"gte=0"`

	// Evaluations — бюджет оценок на запуск; 0 => EvaluationsPerTask × число задач.
	Evaluations        int `yaml:"evaluations" validate:"gte=0"`
	EvaluationsPerTask int `yaml:"evaluations_per_task" validate:"gt=0"`

	Runs     int   `yaml:"runs" validate:"gt=0"`
	Parallel int   `yaml:"parallel" validate:"gt=0"`
	Seed     int64 `yaml:"seed"`
	// Tuning — один запуск вместо ансамбля (режим подбора параметров).
	Tuning bool `yaml:"tuning"`

	Objective   static.Objective `yaml:"objective" validate:"oneof=makespan weighted_completion accumulated_risk"`
	TravelTimes bool             `yaml:"travel_times"`

	Search search.Config `yaml:"search"`
}

func DefaultConfig() Config {
	return Config{
		Relaxation:   0,
		Perturbation: 0.5,
		Tolerance:    0,

		Evaluations:        0,
		EvaluationsPerTask: 10000,

		Runs:     35,
		Parallel: 4,
		Seed:     0,

		Objective:   static.ObjectiveWeightedCompletion,
		TravelTimes: true,

		Search: search.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid parameter %s=%v (rule %s)", fe.Field(), fe.Value(), fe.Tag())
		}
		return err
	}
	return c.Search.Validate()
}

// Budget — бюджет оценок одного запуска для экземпляра с tasks задачами.
func (c Config) Budget(tasks int) int {
	if c.Evaluations > 0 {
		return c.Evaluations
	}
	if tasks < 1 {
		tasks = 1
	}
	return c.EvaluationsPerTask * tasks
}

// RunCount — число запусков ансамбля с учётом режима подбора параметров.
func (c Config) RunCount() int {
	if c.Tuning {
		return 1
	}
	return c.Runs
}

// LoadConfig читает YAML-файл поверх DefaultConfig: отсутствующие
// ключи сохраняют значения по умолчанию.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
