package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"optlis/internal/bench"
	"optlis/internal/ils"
	"optlis/internal/static"
)

func runBench(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	def := ils.DefaultConfig()
	var (
		out          = fs.String("out", "artifacts/results.csv", "путь к выходному CSV-файлу")
		pairs        = fs.String("pairs", "3x3,5x5,8x8", "конфигурации решёток: строки X столбцы (через запятую)")
		crews        = fs.Int("crews", 2, "бригад в депо")
		maxDur       = fs.Int("max-duration", 10, "максимальная длительность очистки")
		instanceSeed = fs.Int64("instance_seed", 777, "базовый сид для генерации экземпляров (фиксирован для конфигурации)")
		config       = fs.String("config", "", "YAML-файл с параметрами ILS")
		runs         = fs.Int("runs", 10, "количество запусков на экземпляр")
		parallel     = fs.Int("parallel", def.Parallel, "количество параллельных воркеров")
		evaluations  = fs.Int("evaluations", 0, "бюджет оценок на запуск (0 => число задач × evaluations_per_task)")
		perTask      = fs.Int("evaluations_per_task", 1000, "бюджет на одну задачу")
		seed         = fs.Int64("seed", 1000, "базовый сид запусков")
		relaxation   = fs.Float64("relaxation", def.Relaxation, "порог ослабления порядка предшествования")
		objective    = fs.String("objective", string(def.Objective), "целевая функция")
		verbose      = fs.Bool("v", false, "подробный журнал")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cases, err := parsePairs(*pairs, *crews, *maxDur, *instanceSeed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт:", err)
		return 2
	}

	cfg := def
	if *config != "" {
		if cfg, err = ils.LoadConfig(*config); err != nil {
			fmt.Fprintln(os.Stderr, "Конфликт в конфигурации ILS:", err)
			return 2
		}
	}
	cfg.Runs = *runs
	cfg.Parallel = *parallel
	cfg.Evaluations = *evaluations
	cfg.EvaluationsPerTask = *perTask
	cfg.Seed = *seed
	cfg.Relaxation = *relaxation
	cfg.Objective = static.Objective(*objective)
	cfg.Tuning = false
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт в конфигурации ILS:", err)
		return 2
	}

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка журнала:", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	runner := bench.Runner{Cfg: cfg, Logger: log}

	var records []bench.Record
	for _, c := range cases {
		fmt.Printf("Запущен ILS; решётка %dx%d, бригад %d (общее кол-во запусков=%d)...\n", c.Rows, c.Cols, c.Crews, cfg.Runs)

		rec, err := runner.RunCase(ctx, c)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка:", err)
			return 1
		}
		records = append(records, rec...)

		s := bench.Summarize(rec)
		fmt.Printf("  Значение целевой функции: лучшее=%.2f среднее=%.2f стандартное отклонение=%.2f | Найдено на оценке: среднее=%.0f | Время: среднее=%.2fms среднее отклонение=%.2fms\n",
			s.Objective.Best, s.Objective.Mean, s.Objective.Std,
			s.FoundAt.Mean,
			s.TimeMs.Mean, s.TimeMs.Std,
		)
	}

	if err := bench.WriteCSV(*out, records); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка при записи в CSV:", err)
		return 1
	}
	fmt.Println("Saved:", *out)
	return 0
}

func parsePairs(s string, crews, maxDuration int, baseInstanceSeed int64) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))

	for i, p := range parts {
		rc := strings.Split(p, "x")
		if len(rc) != 2 {
			return nil, fmt.Errorf("пара %q невалидной схемы, пример: 5x5", p)
		}
		rows, err := atoiStrict(rc[0])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества строк: %w", p, err)
		}
		cols, err := atoiStrict(rc[1])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества столбцов: %w", p, err)
		}
		if rows <= 0 || cols <= 0 || rows*cols < 2 {
			return nil, fmt.Errorf("пара %q: решётка должна содержать депо и хотя бы одну площадку", p)
		}
		if crews <= 0 || maxDuration <= 0 {
			return nil, fmt.Errorf("количество бригад и длительность должны быть > 0")
		}

		seed := baseInstanceSeed + int64(i)*10_000 + int64(rows)*100 + int64(cols)

		cases = append(cases, bench.Case{
			Rows:         rows,
			Cols:         cols,
			Crews:        crews,
			MaxDuration:  maxDuration,
			InstanceSeed: seed,
		})
	}

	return cases, nil
}
