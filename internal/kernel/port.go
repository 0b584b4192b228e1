package kernel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os/exec"
	"strings"

	"optlis/internal/dynamic"
	"optlis/internal/opt"
	"optlis/internal/search"
	"optlis/internal/static"
)

// Port — ядро локального поиска: улучшает sol на месте, расходуя бюджет b.
// Пустое решение означает «построить начальное».
type Port interface {
	LocalSearch(ctx context.Context, inst *Instance, sol *Solution, b *Budget) error
}

// Native — встроенное ядро: спуск движками пакета search по плоским данным.
type Native struct {
	Cfg  search.Config
	Seed int64
}

func (n Native) LocalSearch(ctx context.Context, inst *Instance, sol *Solution, b *Budget) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.Consumed > b.Max {
		return fmt.Errorf("kernel budget: consumed %d > max %d", b.Consumed, b.Max)
	}
	budget := &opt.Budget{Max: b.Max, Consumed: b.Consumed}
	rng := rand.New(rand.NewSource(n.Seed))

	switch inst.Variant {
	case VariantStatic:
		return n.static(inst, sol, b, budget, rng)
	case VariantDynamic:
		return n.dynamic(inst, sol, b, budget, rng)
	}
	return fmt.Errorf("unknown kernel instance variant %q", inst.Variant)
}

func (n Native) static(inst *Instance, sol *Solution, b *Budget, budget *opt.Budget, rng *rand.Rand) error {
	si, err := inst.ToStatic()
	if err != nil {
		return err
	}
	prec, err := si.Precedence(inst.Relaxation)
	if err != nil {
		return err
	}
	objective := static.Objective(inst.Objective)
	if objective == "" {
		objective = static.ObjectiveWeightedCompletion
	}
	eng, err := search.NewStatic(n.Cfg, si, prec, objective)
	if err != nil {
		return err
	}

	if len(sol.Permutation) == 0 {
		if err := eng.Init(budget); err != nil {
			return err
		}
		b.FoundAt = budget.Consumed
	} else {
		perm := toInt(sol.Permutation)
		if err := static.ValidatePermutation(si, perm); err != nil {
			return err
		}
		if !prec.IsLinearExtension(perm) {
			return fmt.Errorf("kernel solution violates precedence (d=%g)", inst.Relaxation)
		}
		eng.Restore(perm)
	}
	if eng.Descend(budget, rng) {
		b.FoundAt = eng.LastImprovedAt()
	}

	sol.Permutation = toInt32(eng.Snapshot())
	sol.Objective = eng.Objective()
	b.Consumed = budget.Consumed
	return nil
}

func (n Native) dynamic(inst *Instance, sol *Solution, b *Budget, budget *opt.Budget, rng *rand.Rand) error {
	di, err := inst.ToDynamic()
	if err != nil {
		return err
	}
	eng, err := search.NewDynamic(n.Cfg, di)
	if err != nil {
		return err
	}

	if len(sol.Operations) == 0 {
		if err := eng.Init(budget); err != nil {
			return err
		}
		b.FoundAt = budget.Consumed
	} else {
		ops, err := DecodeOperations(sol.Operations)
		if err != nil {
			return err
		}
		pl := dynamic.NewPlan(di)
		for _, op := range ops {
			pl.Apply(op, true)
		}
		if err := dynamic.CheckPlan(di, pl); err != nil {
			return err
		}
		eng.Restore(ops)
	}
	if eng.Descend(budget, rng) {
		b.FoundAt = eng.LastImprovedAt()
	}

	sol.Operations = EncodeOperations(eng.Snapshot())
	sol.Objective = eng.Objective()
	b.Consumed = budget.Consumed
	return nil
}

type execRequest struct {
	Instance *Instance `json:"instance"`
	Solution *Solution `json:"solution"`
	Budget   *Budget   `json:"budget"`
}

type execResponse struct {
	Solution *Solution `json:"solution"`
	Budget   *Budget   `json:"budget"`
}

// Exec — внешнее ядро: запрос передаётся JSON-документом в stdin,
// ответ {solution, budget} читается из stdout.
type Exec struct {
	Path string
	Args []string
}

func (e Exec) LocalSearch(ctx context.Context, inst *Instance, sol *Solution, b *Budget) error {
	path, err := exec.LookPath(e.Path)
	if err != nil {
		return fmt.Errorf("%w: kernel %q: %v", opt.ErrSolverUnavailable, e.Path, err)
	}

	var stdin, stdout, stderr bytes.Buffer
	if err := json.NewEncoder(&stdin).Encode(execRequest{Instance: inst, Solution: sol, Budget: b}); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, path, e.Args...)
	cmd.Stdin = &stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("kernel %q: %w: %s", e.Path, err, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("%w: kernel %q: %v", opt.ErrSolverUnavailable, e.Path, err)
	}

	var resp execResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return fmt.Errorf("kernel %q: malformed response: %w", e.Path, err)
	}
	if resp.Solution == nil || resp.Budget == nil {
		return fmt.Errorf("kernel %q: response without solution or budget", e.Path)
	}
	if resp.Budget.Consumed > b.Max {
		return fmt.Errorf("kernel %q: consumed %d evaluations over budget %d", e.Path, resp.Budget.Consumed, b.Max)
	}
	*sol = *resp.Solution
	b.Consumed = resp.Budget.Consumed
	b.FoundAt = resp.Budget.FoundAt
	return nil
}
