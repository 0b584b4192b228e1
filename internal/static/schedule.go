package static

// Unscheduled — значение Start для депо и ещё не назначенных задач.
const Unscheduled = -1

// Schedule — расписание статического варианта, индексированное id узла.
// Бригада выезжает из Prev в момент Start, тратит Setup на переезд
// и Duration на очистку: задача занимает ресурс на [Start, Start+Setup+Duration),
// все занятые моменты лежат в 1..T.
type Schedule struct {
	Start []int
	Setup []int
	Crew  []int
	Prev  []int
}

func NewSchedule(nodes int) *Schedule {
	s := &Schedule{
		Start: make([]int, nodes),
		Setup: make([]int, nodes),
		Crew:  make([]int, nodes),
		Prev:  make([]int, nodes),
	}
	s.Reset()
	return s
}

func (s *Schedule) Reset() {
	for i := range s.Start {
		s.Start[i] = Unscheduled
		s.Setup[i] = 0
		s.Crew[i] = -1
		s.Prev[i] = -1
	}
}

// Completion — момент завершения задачи i.
func (s *Schedule) Completion(inst *Instance, i int) int {
	return s.Start[i] + s.Setup[i] + inst.Nodes[i].Duration
}

func (s *Schedule) Clone() *Schedule {
	c := NewSchedule(len(s.Start))
	c.CopyFrom(s)
	return c
}

func (s *Schedule) CopyFrom(o *Schedule) {
	copy(s.Start, o.Start)
	copy(s.Setup, o.Setup)
	copy(s.Crew, o.Crew)
	copy(s.Prev, o.Prev)
}
