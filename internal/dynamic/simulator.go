package dynamic

// Report — итог моделирования плана.
type Report struct {
	GlobalRisk float64
	Makespan   int
	// Completion[i] — последний момент, когда взвешенная по рискам концентрация
	// задачи i превышает Epsilon (0, если такого момента нет). Индекс — id узла.
	Completion []int
}

// Simulator моделирует концентрации по плану. Площадки независимы, поэтому
// после изменения плана на одной задаче достаточно перемоделировать её
// начиная с первого изменённого момента (SimulateTask).
// Буферы переиспользуются; один Simulator нельзя использовать из нескольких
// горутин одновременно.
type Simulator struct {
	inst  *Instance
	tasks []int
	np    int
	units int

	risk  []float64
	decay []float64
	mr    [][]float64

	conc       []float64 // [task][product][t]
	riskAt     []float64 // [task][t]
	taskRisk   []float64
	completion []int

	rest []float64
	next []float64
}

func NewSimulator(inst *Instance) *Simulator {
	tasks := inst.Tasks()
	np, units := len(inst.Products), inst.Horizon+1
	s := &Simulator{
		inst:       inst,
		tasks:      tasks,
		np:         np,
		units:      units,
		risk:       make([]float64, np),
		decay:      make([]float64, np),
		mr:         make([][]float64, np),
		conc:       make([]float64, len(tasks)*np*units),
		riskAt:     make([]float64, len(tasks)*units),
		taskRisk:   make([]float64, len(tasks)),
		completion: make([]int, len(tasks)),
		rest:       make([]float64, np),
		next:       make([]float64, np),
	}
	for p, pr := range inst.Products {
		s.risk[p] = pr.Risk
		s.decay[p] = pr.Degradation
		s.mr[p] = pr.Metabolization
	}
	for k, i := range tasks {
		for p := 0; p < np; p++ {
			base := (k*np + p) * units
			s.conc[base] = inst.Concentration[i][p]
			if units > 1 {
				s.conc[base+1] = inst.Concentration[i][p]
			}
		}
		if units > 1 {
			s.riskAt[k*units+1] = s.weighted(k, 1)
		}
	}
	return s
}

func (s *Simulator) weighted(k, t int) float64 {
	v := 0.0
	for p := 0; p < s.np; p++ {
		v += s.risk[p] * s.conc[(k*s.np+p)*s.units+t]
	}
	return v
}

// Simulate моделирует все задачи с t=2 и возвращает суммарный риск.
func (s *Simulator) Simulate(pl *Plan) float64 {
	for _, i := range s.tasks {
		s.SimulateTask(pl, i, 2)
	}
	return s.GlobalRisk()
}

// SimulateTask перемоделирует задачу task на моментах from..T; состояние
// на моментах до from должно соответствовать плану. Возвращает вклад задачи
// в глобальный риск.
func (s *Simulator) SimulateTask(pl *Plan, task, from int) float64 {
	k := s.inst.TaskIndex(task)
	if from < 2 {
		from = 2
	}
	np, units := s.np, s.units
	for t := from; t < units; t++ {
		removing := pl.Remove(task, t)
		for p := 0; p < np; p++ {
			prev := s.conc[(k*np+p)*units+t-1]
			s.rest[p] = prev - prev*s.decay[p]
			s.next[p] = s.rest[p]
			if removing {
				s.next[p] -= s.rest[p]
			}
		}
		for p := 0; p < np; p++ {
			if pl.Neutralize(task, p, t) {
				if p != 0 {
					s.next[p] -= s.rest[p]
					s.next[0] += s.rest[p]
				}
				continue
			}
			if removing {
				continue
			}
			for q := 1; q < np; q++ {
				if q == p {
					continue
				}
				if m := s.mr[p][q]; m > 0 {
					flow := s.rest[p] * m
					s.next[p] -= flow
					s.next[q] += flow
				}
			}
		}
		for p := 0; p < np; p++ {
			v := s.next[p]
			if v < 0 {
				v = 0
			}
			s.conc[(k*np+p)*units+t] = v
		}
		s.riskAt[k*units+t] = s.weighted(k, t)
	}

	total, last := 0.0, 0
	for t := 1; t < units; t++ {
		v := s.riskAt[k*units+t]
		total += v
		if v > Epsilon {
			last = t
		}
	}
	s.taskRisk[k] = total
	s.completion[k] = last
	return total
}

// GlobalRisk — сумма risk[p]·w[i][p][t] по задачам, продуктам и t=1..T.
func (s *Simulator) GlobalRisk() float64 {
	total := 0.0
	for _, v := range s.taskRisk {
		total += v
	}
	return total
}

func (s *Simulator) Makespan() int {
	m := 0
	for _, c := range s.completion {
		if c > m {
			m = c
		}
	}
	return m
}

// Completion — момент завершения задачи task по последнему моделированию.
func (s *Simulator) Completion(task int) int {
	return s.completion[s.inst.TaskIndex(task)]
}

// TaskRisk — вклад задачи task в глобальный риск.
func (s *Simulator) TaskRisk(task int) float64 {
	return s.taskRisk[s.inst.TaskIndex(task)]
}

// Concentration — концентрация продукта p на задаче task в момент t.
func (s *Simulator) Concentration(task, p, t int) float64 {
	return s.conc[(s.inst.TaskIndex(task)*s.np+p)*s.units+t]
}

func (s *Simulator) Report() Report {
	rep := Report{GlobalRisk: s.GlobalRisk(), Makespan: s.Makespan(), Completion: make([]int, len(s.inst.Nodes))}
	for k, i := range s.tasks {
		rep.Completion[i] = s.completion[k]
	}
	return rep
}

// Evaluate проверяет план и моделирует его целиком.
func (s *Simulator) Evaluate(pl *Plan) (Report, error) {
	if err := CheckPlan(s.inst, pl); err != nil {
		return Report{}, err
	}
	s.Simulate(pl)
	return s.Report(), nil
}
