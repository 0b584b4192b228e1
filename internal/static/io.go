package static

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"optlis/internal/textio"
)

const formatTag = "static"

// Load читает статический экземпляр. Времена переезда включены.
func Load(r io.Reader) (*Instance, error) {
	tr, err := textio.NewReader(r, formatTag)
	if err != nil {
		return nil, err
	}

	n, err := tr.Count()
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, n)
	seen := make([]bool, n)
	for k := 0; k < n; k++ {
		f, err := tr.Row(5)
		if err != nil {
			return nil, err
		}
		var v [4]int
		for c := 0; c < 4; c++ {
			if v[c], err = tr.Int(f[c]); err != nil {
				return nil, err
			}
		}
		risk, err := tr.Float(f[4])
		if err != nil {
			return nil, err
		}
		id := v[0]
		if id < 0 || id >= n {
			return nil, tr.Errorf("node id %d out of range [0,%d)", id, n)
		}
		if seen[id] {
			return nil, tr.Errorf("duplicate node id %d", id)
		}
		seen[id] = true
		nodes[id] = Node{ID: id, Type: NodeType(v[1]), Duration: v[2], Crews: v[3], Risk: risk}
	}

	m, err := tr.Count()
	if err != nil {
		return nil, err
	}
	edges := make([]Edge, m)
	for k := 0; k < m; k++ {
		f, err := tr.Row(2)
		if err != nil {
			return nil, err
		}
		from, err := tr.Int(f[0])
		if err != nil {
			return nil, err
		}
		to, err := tr.Int(f[1])
		if err != nil {
			return nil, err
		}
		edges[k] = Edge{From: from, To: to}
	}

	horizon, err := tr.Count()
	if err != nil {
		return nil, err
	}
	if err := tr.Done(); err != nil {
		return nil, err
	}
	return NewInstance(nodes, edges, horizon, true)
}

func LoadFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	inst, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

// Export — точная обратная операция к Load.
func (inst *Instance) Export(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# format: %s\n", formatTag)
	fmt.Fprintf(bw, "%d\n", len(inst.Nodes))
	for _, nd := range inst.Nodes {
		fmt.Fprintf(bw, "%d %d %d %d %s\n", nd.ID, nd.Type, nd.Duration, nd.Crews, textio.FormatFloat(nd.Risk))
	}
	fmt.Fprintf(bw, "%d\n", len(inst.Edges))
	for _, e := range inst.Edges {
		fmt.Fprintf(bw, "%d %d\n", e.From, e.To)
	}
	fmt.Fprintf(bw, "%d\n", inst.Horizon)
	return bw.Flush()
}

func (inst *Instance) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := inst.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

