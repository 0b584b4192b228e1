package opt

import "errors"

var (
	// ErrMalformedInstance — структурная ошибка во входном файле экземпляра.
	// Фатальна: поиск не запускается.
	ErrMalformedInstance = errors.New("malformed instance")

	// ErrInfeasibleSchedule — расписание нарушает ресурсные или порядковые ограничения.
	ErrInfeasibleSchedule = errors.New("infeasible schedule")

	// ErrInfeasibleOperationSequence — план операций нарушает исключительность операций
	// или ёмкость бригад.
	ErrInfeasibleOperationSequence = errors.New("infeasible operation sequence")

	// ErrIncompleteSchedule — у задачи нет времени начала/завершения.
	ErrIncompleteSchedule = errors.New("incomplete schedule")

	// ErrSolverUnavailable — внешний решатель или ядро поиска недоступны.
	ErrSolverUnavailable = errors.New("solver unavailable")

	// ErrBudgetExhausted не является ошибкой поиска: это нормальное условие остановки.
	ErrBudgetExhausted = errors.New("evaluation budget exhausted")
)
