package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"optlis/internal/solution"
	"optlis/internal/static"
)

func runEval(_ context.Context, args []string) int {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	var (
		dyn       = fs.Bool("dynamic", false, "динамический вариант")
		relax     = fs.Float64("relaxation", 0, "порог ослабления порядка предшествования")
		objective = fs.String("objective", string(static.ObjectiveWeightedCompletion), "целевая функция статического варианта")
		ttOff     = fs.Bool("tt-off", false, "отключить времена переезда бригад")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "использование: optlis eval [флаги] <экземпляр> <решение>")
		return 2
	}
	vals, err := solution.ImportFile(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка чтения решения:", err)
		return 1
	}
	if *dyn {
		return checkDynamic(fs.Arg(0), vals)
	}
	return checkStatic(fs.Arg(0), vals, *relax, static.Objective(*objective), !*ttOff)
}
