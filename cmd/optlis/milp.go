package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"optlis/internal/dynamic"
	"optlis/internal/kernel"
	"optlis/internal/opt"
	"optlis/internal/solution"
	"optlis/internal/solver"
	"optlis/internal/static"
)

func runMILP(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("milp", flag.ContinueOnError)
	var (
		path      = fs.String("solver", "optlis-milp", "команда MILP-решателя")
		argList   = fs.String("args", "", "аргументы решателя через запятую; {instance} {solution} {variant} {time_limit}")
		timeLimit = fs.Duration("time-limit", 0, "ограничение времени решателя; 0 — без ограничения")
		solPath   = fs.String("solution", "", "файл решения (по умолчанию рядом с экземпляром)")
		dyn       = fs.Bool("dynamic", false, "динамический вариант")
		relax     = fs.Float64("relaxation", 0, "порог ослабления порядка (проверка статического решения)")
		objective = fs.String("objective", string(static.ObjectiveWeightedCompletion), "целевая функция статического варианта")
		ttOff     = fs.Bool("tt-off", false, "отключить времена переезда бригад")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "использование: optlis milp [флаги] <экземпляр>")
		return 2
	}
	inPath := fs.Arg(0)
	if *solPath == "" {
		*solPath = solutionPath(inPath)
	}

	variant := kernel.VariantStatic
	if *dyn {
		variant = kernel.VariantDynamic
	}
	req := solver.Request{
		InstancePath: inPath,
		Variant:      variant,
		TimeLimit:    *timeLimit,
		SolutionPath: *solPath,
	}
	var port solver.Port = solver.Exec{Path: *path, Args: splitCSV(*argList)}

	fmt.Printf("Запущен решатель %s (%s)...\n", *path, variant)
	started := time.Now()
	vals, err := port.Solve(ctx, req)
	if err != nil {
		if errors.Is(err, opt.ErrSolverUnavailable) {
			fmt.Fprintln(os.Stderr, "Решатель недоступен:", err)
			return 3
		}
		fmt.Fprintln(os.Stderr, "Ошибка решателя:", err)
		return 1
	}
	fmt.Printf("  Решатель завершил работу за %s; переменных=%d\n", time.Since(started).Round(time.Millisecond), len(vals))

	if *dyn {
		return checkDynamic(inPath, vals)
	}
	return checkStatic(inPath, vals, *relax, static.Objective(*objective), !*ttOff)
}

// checkStatic проверяет статическое решение и печатает его оценку.
func checkStatic(path string, vals solution.Values, relaxation float64, objective static.Objective, travel bool) int {
	inst, err := static.LoadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка загрузки экземпляра:", err)
		return 1
	}
	if !travel {
		if inst, err = inst.WithTravelTimes(false); err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка:", err)
			return 1
		}
	}
	prec, err := inst.Precedence(relaxation)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		return 1
	}
	ev, err := static.NewEvaluator(inst, prec, objective)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт в параметрах оценки:", err)
		return 2
	}
	sched, err := static.ScheduleFromValues(inst, vals)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Некорректное решение:", err)
		return 1
	}
	rep, err := ev.Evaluate(sched)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Решение недопустимо:", err)
		return 1
	}
	fmt.Printf("  Решение допустимо: makespan=%d overall_risk=%.2f accumulated_risk=%.2f (%s=%.4f)\n",
		rep.Makespan, rep.WeightedCompletion, rep.AccumulatedRisk, objective, rep.Objective)
	return 0
}

// checkDynamic проверяет план динамического варианта и печатает его оценку.
func checkDynamic(path string, vals solution.Values) int {
	inst, err := dynamic.LoadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка загрузки экземпляра:", err)
		return 1
	}
	pl, err := dynamic.PlanFromValues(inst, vals)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Некорректное решение:", err)
		return 1
	}
	rep, err := dynamic.NewSimulator(inst).Evaluate(pl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Решение недопустимо:", err)
		return 1
	}
	fmt.Printf("  Решение допустимо: global_risk=%.4f makespan=%d операций=%d\n",
		rep.GlobalRisk, rep.Makespan, len(pl.Operations()))
	return 0
}
