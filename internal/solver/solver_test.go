package solver

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"optlis/internal/opt"
)

func TestMissingSolver(t *testing.T) {
	dir := t.TempDir()
	_, err := Exec{Path: "optlis-milp-that-does-not-exist"}.Solve(context.Background(), Request{
		InstancePath: filepath.Join(dir, "in.dat"),
		SolutionPath: filepath.Join(dir, "out.sol"),
	})
	require.True(t, errors.Is(err, opt.ErrSolverUnavailable), "got %v", err)
}

func TestRequestPaths(t *testing.T) {
	_, err := Exec{Path: "sh"}.Solve(context.Background(), Request{})
	require.Error(t, err)
}

func TestArgsSubstitution(t *testing.T) {
	e := Exec{Path: "milp", Args: []string{"-i", "{instance}", "-o={solution}", "--{variant}", "-t", "{time_limit}"}}
	got := e.args(Request{InstancePath: "a.dat", SolutionPath: "a.sol", Variant: "dynamic", TimeLimit: 90 * time.Second})
	require.Equal(t, []string{"-i", "a.dat", "-o=a.sol", "--dynamic", "-t", "90"}, got)

	require.Equal(t, []string{"a.dat", "a.sol"}, Exec{Path: "milp"}.args(Request{InstancePath: "a.dat", SolutionPath: "a.sol"}))
}

func TestShellSolver(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
	dir := t.TempDir()
	e := Exec{
		Path: "sh",
		Args: []string{"-c", `printf '# solution for %s\nmakespan = 56\noverall_risk = 85.2\n' "$0" > "$1"`, "{instance}", "{solution}"},
	}
	vals, err := e.Solve(context.Background(), Request{
		InstancePath: "example.dat",
		Variant:      "static",
		SolutionPath: filepath.Join(dir, "example.sol"),
	})
	require.NoError(t, err)
	mk, ok := vals.Int("makespan")
	require.True(t, ok)
	require.Equal(t, 56, mk)
	require.InDelta(t, 85.2, vals["overall_risk"], 1e-9)

	failing := Exec{Path: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}}
	_, err = failing.Solve(context.Background(), Request{InstancePath: "x", SolutionPath: filepath.Join(dir, "none.sol")})
	require.ErrorContains(t, err, "boom")
	require.False(t, errors.Is(err, opt.ErrSolverUnavailable))
}
