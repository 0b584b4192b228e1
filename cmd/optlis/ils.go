package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"optlis/internal/bench"
	"optlis/internal/dynamic"
	"optlis/internal/ils"
	"optlis/internal/kernel"
	"optlis/internal/search"
	"optlis/internal/solution"
	"optlis/internal/static"
)

type ilsFlags struct {
	config       *string
	relaxation   *float64
	perturbation *float64
	tolerance    *float64
	evaluations  *int
	runs         *int
	parallel     *int
	seed         *int64
	tuning       *bool
	ttOff        *bool
	objective    *string
	neighborhood *string
	neighbors    *int

	dynamic  *bool
	verbose  *bool
	out      *string
	solution *string
	kernel   *string
}

func runILS(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("ils", flag.ContinueOnError)
	def := ils.DefaultConfig()
	f := ilsFlags{
		config:       fs.String("config", "", "YAML-файл с параметрами (флаги переопределяют его значения)"),
		relaxation:   fs.Float64("relaxation", def.Relaxation, "порог ослабления порядка предшествования d ∈ [0,1]"),
		perturbation: fs.Float64("perturbation", def.Perturbation, "сила возмущения (доля решения)"),
		tolerance:    fs.Float64("tolerance", def.Tolerance, "допуск приёма кандидата относительно лучшего"),
		evaluations:  fs.Int("evaluations", def.Evaluations, "бюджет оценок на запуск (0 => число задач × 10000)"),
		runs:         fs.Int("runs", def.Runs, "количество независимых запусков"),
		parallel:     fs.Int("parallel", def.Parallel, "количество параллельных воркеров"),
		seed:         fs.Int64("seed", def.Seed, "базовый сид запусков"),
		tuning:       fs.Bool("tuning", def.Tuning, "режим подбора параметров: один запуск"),
		ttOff:        fs.Bool("tt-off", !def.TravelTimes, "отключить времена переезда бригад"),
		objective:    fs.String("objective", string(def.Objective), "целевая функция: makespan | weighted_completion | accumulated_risk"),
		neighborhood: fs.String("neigh", string(def.Search.Neighborhood), "окрестность статического варианта: swap | insert | both"),
		neighbors:    fs.Int("neighbors", def.Search.Neighbors, "число соседей за проход (динамический вариант)"),

		dynamic:  fs.Bool("dynamic", false, "динамический вариант (кинетика загрязнителей)"),
		verbose:  fs.Bool("v", false, "подробный журнал"),
		out:      fs.String("out", "", "CSV-отчёт по запускам (пусто — не писать)"),
		solution: fs.String("solution", "", "файл решения (по умолчанию рядом с экземпляром)"),
		kernel:   fs.String("kernel", "", "доводка лучшего решения ядром: native или путь к внешнему ядру"),
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "использование: optlis ils [флаги] <экземпляр>")
		return 2
	}
	path := fs.Arg(0)

	cfg, err := f.resolve(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт в конфигурации ILS:", err)
		return 2
	}
	log, err := newLogger(*f.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка журнала:", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	if *f.dynamic {
		return ilsDynamic(ctx, path, cfg, f, log)
	}
	return ilsStatic(ctx, path, cfg, f, log)
}

// resolve собирает конфигурацию: значения по умолчанию, затем YAML-файл,
// затем явно заданные флаги.
func (f ilsFlags) resolve(fs *flag.FlagSet) (ils.Config, error) {
	cfg := ils.DefaultConfig()
	if *f.config != "" {
		var err error
		if cfg, err = ils.LoadConfig(*f.config); err != nil {
			return cfg, err
		}
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "relaxation":
			cfg.Relaxation = *f.relaxation
		case "perturbation":
			cfg.Perturbation = *f.perturbation
		case "tolerance":
			cfg.Tolerance = *f.tolerance
		case "evaluations":
			cfg.Evaluations = *f.evaluations
		case "runs":
			cfg.Runs = *f.runs
		case "parallel":
			cfg.Parallel = *f.parallel
		case "seed":
			cfg.Seed = *f.seed
		case "tuning":
			cfg.Tuning = *f.tuning
		case "tt-off":
			cfg.TravelTimes = !*f.ttOff
		case "objective":
			cfg.Objective = static.Objective(*f.objective)
		case "neigh":
			cfg.Search.Neighborhood = search.Neighborhood(*f.neighborhood)
		case "neighbors":
			cfg.Search.Neighbors = *f.neighbors
		}
	})
	return cfg, cfg.Validate()
}

func (f ilsFlags) kernelPort(cfg ils.Config) kernel.Port {
	if *f.kernel == "native" {
		return kernel.Native{Cfg: cfg.Search, Seed: ils.Seed(cfg.Seed, cfg.RunCount())}
	}
	return kernel.Exec{Path: *f.kernel}
}

func ilsStatic(ctx context.Context, path string, cfg ils.Config, f ilsFlags, log *zap.Logger) int {
	inst, err := static.LoadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка загрузки экземпляра:", err)
		return 1
	}
	if inst.TravelTimes != cfg.TravelTimes {
		if inst, err = inst.WithTravelTimes(cfg.TravelTimes); err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка:", err)
			return 1
		}
	}
	factory, err := ils.StaticFactory(inst, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		return 1
	}
	budget := cfg.Budget(len(inst.Tasks()))
	fmt.Printf("Запущен ILS; %d задач, %d бригад, горизонт %d (запусков=%d, бюджет=%d)...\n",
		len(inst.Tasks()), inst.Crews(), inst.TimeHorizon(), cfg.RunCount(), budget)

	sum, err := ils.Ensemble(ctx, cfg, budget, factory, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		return 1
	}
	best := sum.BestResult()
	perm := best.Solution

	if *f.kernel != "" {
		sol := kernel.PermutationSolution(perm, best.Objective)
		b := &kernel.Budget{Max: budget}
		if err := f.kernelPort(cfg).LocalSearch(ctx, kernel.FromStatic(inst, cfg.Relaxation, cfg.Objective), sol, b); err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка ядра поиска:", err)
			return 1
		}
		if sol.Objective < best.Objective {
			fmt.Printf("  Ядро улучшило решение: %.4f -> %.4f (оценок=%d)\n", best.Objective, sol.Objective, b.Consumed)
			perm = sol.Priorities()
		}
	}

	prec, err := inst.Precedence(cfg.Relaxation)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		return 1
	}
	dec, err := static.NewDecoder(inst, prec)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		return 1
	}
	sched := static.NewSchedule(len(inst.Nodes))
	if _, err := dec.Decode(perm, sched); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка декодирования:", err)
		return 1
	}
	ev, err := static.NewEvaluator(inst, prec, cfg.Objective)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		return 1
	}
	rep, err := ev.Evaluate(sched)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Лучшее решение недопустимо:", err)
		return 1
	}

	printSummary(bench.Records(instanceName(path), cfg.Seed, sum))
	fmt.Printf("  Лучшее: makespan=%d overall_risk=%.2f accumulated_risk=%.2f\n",
		rep.Makespan, rep.WeightedCompletion, rep.AccumulatedRisk)

	return finish(path, f, sum, static.SolutionValues(inst, sched, rep), cfg.Seed)
}

func ilsDynamic(ctx context.Context, path string, cfg ils.Config, f ilsFlags, log *zap.Logger) int {
	inst, err := dynamic.LoadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка загрузки экземпляра:", err)
		return 1
	}
	budget := cfg.Budget(len(inst.Tasks()))
	res := inst.Resources()
	fmt.Printf("Запущен ILS; %d задач, %d продуктов, бригад Qn=%d Qc=%d, горизонт %d (запусков=%d, бюджет=%d)...\n",
		len(inst.Tasks()), len(inst.Products), res.Neutralize, res.Remove, inst.Horizon, cfg.RunCount(), budget)

	sum, err := ils.Ensemble(ctx, cfg, budget, ils.DynamicFactory(inst, cfg), log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		return 1
	}
	best := sum.BestResult()
	ops := best.Solution

	if *f.kernel != "" {
		sol := kernel.OperationsSolution(ops, best.Objective)
		b := &kernel.Budget{Max: budget}
		if err := f.kernelPort(cfg).LocalSearch(ctx, kernel.FromDynamic(inst), sol, b); err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка ядра поиска:", err)
			return 1
		}
		if sol.Objective < best.Objective {
			improved, err := kernel.DecodeOperations(sol.Operations)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Ошибка ядра поиска:", err)
				return 1
			}
			fmt.Printf("  Ядро улучшило решение: %.4f -> %.4f (оценок=%d)\n", best.Objective, sol.Objective, b.Consumed)
			ops = improved
		}
	}

	pl := dynamic.NewPlan(inst)
	for _, op := range ops {
		pl.Apply(op, true)
	}
	rep, err := dynamic.NewSimulator(inst).Evaluate(pl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Лучшее решение недопустимо:", err)
		return 1
	}

	printSummary(bench.Records(instanceName(path), cfg.Seed, sum))
	fmt.Printf("  Лучшее: global_risk=%.4f makespan=%d операций=%d\n", rep.GlobalRisk, rep.Makespan, len(ops))

	return finish(path, f, sum, dynamic.SolutionValues(inst, pl, rep), cfg.Seed)
}

func printSummary(records []bench.Record) {
	s := bench.Summarize(records)
	fmt.Printf("  Значение целевой функции: лучшее=%.4f среднее=%.4f стандартное отклонение=%.4f | Время: среднее=%.2fms стандартное отклонение=%.2fms\n",
		s.Objective.Best, s.Objective.Mean, s.Objective.Std, s.TimeMs.Mean, s.TimeMs.Std)
}

// finish пишет файл решения и, если задан, CSV-отчёт.
func finish[S any](path string, f ilsFlags, sum ils.Summary[S], entries []solution.Entry, seed int64) int {
	solPath := *f.solution
	if solPath == "" {
		solPath = solutionPath(path)
	}
	if err := solution.ExportFile(solPath, instanceName(path), entries); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка при записи решения:", err)
		return 1
	}
	fmt.Println("Решение:", solPath)

	if *f.out != "" {
		if err := bench.WriteCSV(*f.out, bench.Records(instanceName(path), seed, sum)); err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка при записи в CSV:", err)
			return 1
		}
		fmt.Println("Saved:", *f.out)
	}
	return 0
}
