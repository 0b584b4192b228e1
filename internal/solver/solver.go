// Package solver запускает внешний MILP-решатель и читает его файл решения.
package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"optlis/internal/opt"
	"optlis/internal/solution"
)

// Request — одна задача для решателя.
type Request struct {
	InstancePath string
	// Variant — "static" или "dynamic".
	Variant      string
	TimeLimit    time.Duration
	// SolutionPath — куда решатель пишет файл "name = value".
	SolutionPath string
}

type Port interface {
	Solve(ctx context.Context, req Request) (solution.Values, error)
}

// Exec — решатель как внешняя команда. В Args подставляются
// {instance}, {solution}, {variant} и {time_limit} (секунды);
// при пустом Args команда получает путь экземпляра и путь решения.
type Exec struct {
	Path string
	Args []string
}

func (e Exec) args(req Request) []string {
	if len(e.Args) == 0 {
		return []string{req.InstancePath, req.SolutionPath}
	}
	limit := ""
	if req.TimeLimit > 0 {
		limit = strconv.FormatFloat(req.TimeLimit.Seconds(), 'f', -1, 64)
	}
	r := strings.NewReplacer(
		"{instance}", req.InstancePath,
		"{solution}", req.SolutionPath,
		"{variant}", req.Variant,
		"{time_limit}", limit,
	)
	out := make([]string, len(e.Args))
	for i, a := range e.Args {
		out[i] = r.Replace(a)
	}
	return out
}

func (e Exec) Solve(ctx context.Context, req Request) (solution.Values, error) {
	if req.InstancePath == "" || req.SolutionPath == "" {
		return nil, errors.New("solver request needs instance and solution paths")
	}
	path, err := exec.LookPath(e.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", opt.ErrSolverUnavailable, e.Path, err)
	}

	if req.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.TimeLimit+5*time.Second)
		defer cancel()
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, e.args(req)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("solver %q: %w", e.Path, ctx.Err())
		}
		return nil, fmt.Errorf("solver %q: %w: %s", e.Path, err, strings.TrimSpace(stderr.String()))
	}

	vals, err := solution.ImportFile(req.SolutionPath)
	if err != nil {
		return nil, fmt.Errorf("solver %q: read solution: %w", e.Path, err)
	}
	return vals, nil
}
