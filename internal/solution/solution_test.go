package solution

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, "instance.dat", []Entry{
		{"makespan", 2},
		{"overall_risk", 0.5},
		{"cd_1", 1},
		{"sd_1", 2},
		{"unused", 0},
		{"y_0_1_1", 1},
		{"y_1_0_2", 1},
	})
	require.NoError(t, err)

	lines := strings.SplitAfterN(buf.String(), "\n", 2)
	require.Equal(t, "# solution for instance.dat\n", lines[0])
	require.Equal(t, strings.Join([]string{
		"makespan = 2",
		"overall_risk = 0.5",
		"cd_1 = 1",
		"sd_1 = 2",
		"y_0_1_1 = 1",
		"y_1_0_2 = 1\n",
	}, "\n"), lines[1])
}

func TestImportSkipsCommentsAndGarbage(t *testing.T) {
	in := "# solution for x.dat\n\nobjective header line\nmakespan = 56\noverall_risk = 85.2\n  cd_1=56  \nbad = x\n"
	v, err := Import(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, Values{"makespan": 56, "overall_risk": 85.2, "cd_1": 56}, v)

	ms, ok := v.Int("makespan")
	require.True(t, ok)
	require.Equal(t, 56, ms)
	_, ok = v.Int("missing")
	require.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	entries := []Entry{{"global_risk", 12.345}, {"x_1_2_3", 1}}
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, "dyn.dat", entries))
	v, err := Import(&buf)
	require.NoError(t, err)
	require.Equal(t, Values{"global_risk": 12.345, "x_1_2_3": 1}, v)
}
