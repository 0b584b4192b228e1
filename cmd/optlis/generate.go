package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"optlis/internal/dynamic"
	"optlis/internal/static"
)

func runGenerate(_ context.Context, args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	var (
		dyn  = fs.Bool("dynamic", false, "динамический вариант")
		seed = fs.Int64("seed", 0, "сид генератора")
		out  = fs.String("out", "", "файл экземпляра (пусто — stdout)")

		// --- Статический вариант ---
		rows    = fs.Int("rows", 3, "строк решётки площадок")
		cols    = fs.Int("cols", 3, "столбцов решётки площадок")
		crews   = fs.Int("crews", 1, "бригад в депо")
		maxDur  = fs.Int("max-duration", 10, "максимальная длительность очистки")
		horizon = fs.Int("horizon", 0, "горизонт T (0 — оценка для статики, 50 для динамики)")

		// --- Динамический вариант ---
		tasks      = fs.Int("tasks", 5, "количество площадок")
		products   = fs.Int("products", 3, "количество продуктов (включая безопасный продукт 0)")
		qn         = fs.Int("qn", 1, "бригад нейтрализации")
		qc         = fs.Int("qc", 1, "бригад удаления")
		maxRemoval = fs.Int("max-removal", 5, "максимальная длительность удаления")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rng := rand.New(rand.NewSource(*seed))

	var export func(*os.File) error
	if *dyn {
		T := *horizon
		if T == 0 {
			T = 50
		}
		if *tasks <= 0 || *products < 2 || *qn < 0 || *qc < 0 || *maxRemoval <= 0 || T < 1 {
			fmt.Fprintln(os.Stderr, "Конфликт: tasks > 0, products >= 2, qn, qc >= 0, max-removal > 0, horizon >= 1")
			return 2
		}
		inst := dynamic.RandomInstance(*tasks, *products, *qn, *qc, *maxRemoval, T, rng)
		export = func(f *os.File) error { return inst.Export(f) }
	} else {
		if *rows <= 0 || *cols <= 0 || (*rows)*(*cols) < 2 || *crews <= 0 || *maxDur <= 0 || *horizon < 0 {
			fmt.Fprintln(os.Stderr, "Конфликт: решётка из >= 2 узлов, crews > 0, max-duration > 0, horizon >= 0")
			return 2
		}
		inst := static.RandomInstance(*rows, *cols, *crews, *maxDur, rng)
		inst.Horizon = *horizon
		export = func(f *os.File) error { return inst.Export(f) }
	}

	if *out == "" {
		if err := export(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "Ошибка:", err)
			return 1
		}
		return 0
	}
	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		return 1
	}
	if err := export(f); err != nil {
		f.Close()
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		return 1
	}
	fmt.Println("Saved:", *out)
	return 0
}
