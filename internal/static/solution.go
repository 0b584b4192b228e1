package static

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"optlis/internal/opt"
	"optlis/internal/solution"
)

type flowEdge struct {
	from, to, t int
}

// SolutionValues раскладывает расписание в переменные файла решения:
// makespan, overall_risk, cd_i, sd_i и рёбра потока y_i_j_t
// (включая возврат последней задачи каждой бригады в её депо).
func SolutionValues(inst *Instance, s *Schedule, rep Report) []solution.Entry {
	tasks := inst.Tasks()
	out := make([]solution.Entry, 0, 2+3*len(tasks)+inst.Crews())
	out = append(out,
		solution.Entry{Name: "makespan", Value: float64(rep.Makespan)},
		solution.Entry{Name: "overall_risk", Value: rep.WeightedCompletion},
	)
	for _, i := range tasks {
		out = append(out, solution.Entry{Name: fmt.Sprintf("cd_%d", i), Value: float64(rep.Completion[i])})
	}
	for _, i := range tasks {
		out = append(out, solution.Entry{Name: fmt.Sprintf("sd_%d", i), Value: float64(s.Start[i])})
	}

	var flow []flowEdge
	last := make(map[int]int) // бригада → последняя задача
	for _, i := range tasks {
		flow = append(flow, flowEdge{from: s.Prev[i], to: i, t: s.Start[i]})
		c := s.Crew[i]
		if c < 0 {
			continue
		}
		if j, ok := last[c]; !ok || rep.Completion[i] > rep.Completion[j] {
			last[c] = i
		}
	}
	homes := inst.CrewHomes()
	for c, i := range last {
		flow = append(flow, flowEdge{from: i, to: homes[c], t: rep.Completion[i]})
	}
	sort.Slice(flow, func(a, b int) bool {
		if flow[a].from != flow[b].from {
			return flow[a].from < flow[b].from
		}
		if flow[a].to != flow[b].to {
			return flow[a].to < flow[b].to
		}
		return flow[a].t < flow[b].t
	})
	for _, e := range flow {
		out = append(out, solution.Entry{Name: fmt.Sprintf("y_%d_%d_%d", e.from, e.to, e.t), Value: 1})
	}
	return out
}

// ScheduleFromValues восстанавливает расписание из импортированного решения
// (sd_i и рёбра y_i_j_t). Бригады назначаются обходом цепочек от депо.
func ScheduleFromValues(inst *Instance, v solution.Values) (*Schedule, error) {
	s := NewSchedule(len(inst.Nodes))
	next := make(map[int]int)
	for name, val := range v {
		if val < 0.5 || !strings.HasPrefix(name, "y_") {
			continue
		}
		parts := strings.Split(name, "_")
		if len(parts) != 4 {
			continue
		}
		from, err1 := strconv.Atoi(parts[1])
		to, err2 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || from < 0 || to < 0 || from >= len(inst.Nodes) || to >= len(inst.Nodes) {
			return nil, fmt.Errorf("invalid flow variable %q", name)
		}
		if inst.Nodes[to].Type == Task {
			s.Prev[to] = from
		}
		if inst.Nodes[from].Type == Task {
			next[from] = to
		}
	}

	for _, i := range inst.Tasks() {
		sd, ok := v.Int(fmt.Sprintf("sd_%d", i))
		if !ok {
			return nil, fmt.Errorf("%w: sd_%d is missing", opt.ErrIncompleteSchedule, i)
		}
		s.Start[i] = sd
		if s.Prev[i] < 0 {
			return nil, fmt.Errorf("%w: no flow enters task %d", opt.ErrIncompleteSchedule, i)
		}
		s.Setup[i] = inst.Setup(s.Prev[i], i)
	}

	// Цепочки: депо → задача → ... ; номер бригады — порядковый номер цепочки
	crew := 0
	for _, i := range inst.Tasks() {
		if inst.Nodes[s.Prev[i]].Type != Depot {
			continue
		}
		for j, steps := i, 0; inst.Nodes[j].Type == Task && steps < len(inst.Nodes); steps++ {
			s.Crew[j] = crew
			nj, ok := next[j]
			if !ok {
				break
			}
			j = nj
		}
		crew++
	}
	return s, nil
}
