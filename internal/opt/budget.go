package opt

import "fmt"

// Budget ограничивает число вызовов оценщика за один запуск.
type Budget struct {
	Max      int
	Consumed int
}

func NewBudget(max int) (*Budget, error) {
	if max <= 0 {
		return nil, fmt.Errorf("budget must be > 0 (got %d)", max)
	}
	return &Budget{Max: max}, nil
}

// Charge списывает один вызов оценщика.
// Возвращает false, если бюджет уже исчерпан; в этом случае оценку выполнять нельзя.
func (b *Budget) Charge() bool {
	if b.Consumed >= b.Max {
		return false
	}
	b.Consumed++
	return true
}

func (b *Budget) Exhausted() bool {
	return b.Consumed >= b.Max
}

func (b *Budget) Remaining() int {
	if b.Consumed >= b.Max {
		return 0
	}
	return b.Max - b.Consumed
}

// Err возвращает ErrBudgetExhausted, если бюджет исчерпан.
func (b *Budget) Err() error {
	if b.Exhausted() {
		return fmt.Errorf("%w: %d/%d", ErrBudgetExhausted, b.Consumed, b.Max)
	}
	return nil
}
