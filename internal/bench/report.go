package bench

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/google/uuid"

	"optlis/internal/ils"
)

// Record — одна строка отчёта: итог одного запуска ансамбля.
type Record struct {
	ID          uuid.UUID
	Instance    string
	Run         int
	Seed        int64
	Objective   float64
	FoundAt     int
	Evaluations int
	Iterations  int
	TimeMs      float64
	Best        bool
}

// RunID — детерминированный идентификатор запуска: совпадает для одного
// и того же экземпляра, базового сида и номера запуска.
func RunID(instance string, baseSeed int64, run int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d/%d", instance, baseSeed, run)))
}

// Records раскладывает итог ансамбля в строки отчёта.
func Records[S any](instance string, baseSeed int64, sum ils.Summary[S]) []Record {
	out := make([]Record, len(sum.Runs))
	for k, r := range sum.Runs {
		out[k] = Record{
			ID:          RunID(instance, baseSeed, k),
			Instance:    instance,
			Run:         k,
			Seed:        sum.Seeds[k],
			Objective:   r.Objective,
			FoundAt:     r.FoundAt,
			Evaluations: r.Evaluations,
			Iterations:  r.Iterations,
			TimeMs:      float64(r.Duration.Microseconds()) / 1000.0,
			Best:        k == sum.Best,
		}
	}
	return out
}

// Summary — сводная статистика по запускам.
type Summary struct {
	Runs      int
	Objective Stats[float64]
	FoundAt   Stats[int]
	TimeMs    Stats[float64]
}

func Summarize(records []Record) Summary {
	obj := make([]float64, len(records))
	found := make([]int, len(records))
	times := make([]float64, len(records))
	for i, r := range records {
		obj[i], found[i], times[i] = r.Objective, r.FoundAt, r.TimeMs
	}
	return Summary{
		Runs:      len(records),
		Objective: CalcStats(obj),
		FoundAt:   CalcStats(found),
		TimeMs:    CalcStats(times),
	}
}

func WriteCSV(path string, records []Record) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{
		"id", "instance", "run", "seed",
		"objective", "found_at", "evaluations", "iterations",
		"time_ms", "best",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.ID.String(),
			r.Instance,
			itoa(r.Run),
			fmt.Sprintf("%d", r.Seed),

			ftoa(r.Objective),
			itoa(r.FoundAt),
			itoa(r.Evaluations),
			itoa(r.Iterations),

			ftoa(r.TimeMs),
			fmt.Sprintf("%t", r.Best),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
