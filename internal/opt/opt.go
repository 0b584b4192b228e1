package opt

import (
	"time"
)

// Result — итог одного запуска оптимизатора.
// Solution хранит снимок лучшего найденного решения (перестановку или план операций).
type Result[S any] struct {
	Solution    S
	Objective   float64
	Evaluations int
	FoundAt     int
	Iterations  int
	Duration    time.Duration
	Meta        map[string]any
}
