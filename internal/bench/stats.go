package bench

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"
)

// Stats — лучшее (минимальное), среднее и выборочное стандартное отклонение.
type Stats[T constraints.Integer | constraints.Float] struct {
	N    int
	Best T
	Mean float64
	Std  float64
}

// CalcStats считает статистику выборки; при N < 2 отклонение равно 0.
func CalcStats[T constraints.Integer | constraints.Float](values []T) Stats[T] {
	s := Stats[T]{N: len(values)}
	if s.N == 0 {
		return s
	}

	best := values[0]
	xs := make([]float64, s.N)
	for i, v := range values {
		if v < best {
			best = v
		}
		xs[i] = float64(v)
	}
	s.Best = best

	if s.N < 2 {
		s.Mean = xs[0]
		return s
	}
	mean, std := stat.MeanStdDev(xs, nil)
	s.Mean = mean
	if !math.IsNaN(std) {
		s.Std = std
	}
	return s
}
