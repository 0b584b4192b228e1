package main

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"optlis/internal/search"
	"optlis/internal/static"
)

func TestParsePairs(t *testing.T) {
	cases, err := parsePairs("3x3, 5x4", 2, 10, 777)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	require.Equal(t, 3, cases[0].Rows)
	require.Equal(t, 4, cases[1].Cols)
	require.Equal(t, int64(777+10_000+500+4), cases[1].InstanceSeed)

	for _, bad := range []string{"3", "ax3", "3x0", "1x1"} {
		_, err := parsePairs(bad, 2, 10, 777)
		require.Error(t, err, bad)
	}
	_, err = parsePairs("3x3", 0, 10, 777)
	require.Error(t, err)
}

func TestSolutionPath(t *testing.T) {
	require.Equal(t, "data/example.sol", solutionPath("data/example.dat"))
	require.Equal(t, "example.sol", solutionPath("example"))
}

func newILSFlags(t *testing.T, args ...string) (*flag.FlagSet, ilsFlags) {
	t.Helper()
	fs := flag.NewFlagSet("ils", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := ilsFlags{
		config:       fs.String("config", "", ""),
		relaxation:   fs.Float64("relaxation", 0, ""),
		perturbation: fs.Float64("perturbation", 0.5, ""),
		tolerance:    fs.Float64("tolerance", 0, ""),
		evaluations:  fs.Int("evaluations", 0, ""),
		runs:         fs.Int("runs", 35, ""),
		parallel:     fs.Int("parallel", 4, ""),
		seed:         fs.Int64("seed", 0, ""),
		tuning:       fs.Bool("tuning", false, ""),
		ttOff:        fs.Bool("tt-off", false, ""),
		objective:    fs.String("objective", "weighted_completion", ""),
		neighborhood: fs.String("neigh", "both", ""),
		neighbors:    fs.Int("neighbors", 64, ""),
	}
	require.NoError(t, fs.Parse(args))
	return fs, f
}

func TestResolveFlagsOverride(t *testing.T) {
	fs, f := newILSFlags(t, "-relaxation", "0.3", "-runs", "3", "-tt-off", "-objective", "makespan", "-neigh", "swap")
	cfg, err := f.resolve(fs)
	require.NoError(t, err)
	require.Equal(t, 0.3, cfg.Relaxation)
	require.Equal(t, 3, cfg.Runs)
	require.False(t, cfg.TravelTimes)
	require.Equal(t, static.ObjectiveMakespan, cfg.Objective)
	require.Equal(t, search.NeighborhoodSwap, cfg.Search.Neighborhood)
	require.Equal(t, 4, cfg.Parallel)

	fs, f = newILSFlags(t, "-perturbation", "2")
	_, err = f.resolve(fs)
	require.Error(t, err)
}
