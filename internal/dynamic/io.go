package dynamic

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"optlis/internal/textio"
)

const formatTag = "dynamic"

// Load читает динамический экземпляр: блоки рисков, скоростей распада и
// матрицы метаболизации продуктов, узлы, начальные концентрации и T.
func Load(r io.Reader) (*Instance, error) {
	tr, err := textio.NewReader(r, formatTag)
	if err != nil {
		return nil, err
	}

	np, err := tr.Count()
	if err != nil {
		return nil, err
	}
	risk, err := readProductBlock(tr, np, 1, "risk")
	if err != nil {
		return nil, err
	}
	degradation, err := readProductBlock(tr, np, 1, "degradation")
	if err != nil {
		return nil, err
	}
	metabolization, err := readProductBlock(tr, np, np, "metabolization")
	if err != nil {
		return nil, err
	}
	products := make([]Product, np)
	for p := range products {
		products[p] = Product{Risk: risk[p][0], Degradation: degradation[p][0], Metabolization: metabolization[p]}
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
		var v [5]int
		for c := range v {
			if v[c], err = tr.Int(f[c]); err != nil {
				return nil, err
			}
		}
		id := v[0]
		if id < 0 || id >= n {
			return nil, tr.Errorf("node id %d out of range [0,%d)", id, n)
		}
		if seen[id] {
			return nil, tr.Errorf("duplicate node id %d", id)
		}
		seen[id] = true
		nodes[id] = Node{ID: id, Type: NodeType(v[1]), NeutralizeCrews: v[2], CleanCrews: v[3], RemovalDuration: v[4]}
	}

	nc, err := tr.Count()
	if err != nil {
		return nil, err
	}
	if nc != n {
		return nil, tr.Errorf("%d concentration rows for %d nodes", nc, n)
	}
	conc := make([][]float64, n)
	for k := 0; k < n; k++ {
		id, vals, err := readIndexed(tr, n, np)
		if err != nil {
			return nil, err
		}
		if conc[id] != nil {
			return nil, tr.Errorf("duplicate concentration row for node %d", id)
		}
		conc[id] = vals
	}

	horizon, err := tr.Count()
	if err != nil {
		return nil, err
	}
	if err := tr.Done(); err != nil {
		return nil, err
	}
	return NewInstance(products, nodes, conc, horizon)
}

// readProductBlock читает np строк блока продуктов; каждый id ровно один раз.
func readProductBlock(tr *textio.Reader, np, w int, block string) ([][]float64, error) {
	rows := make([][]float64, np)
	for k := 0; k < np; k++ {
		pid, vals, err := readIndexed(tr, np, w)
		if err != nil {
			return nil, err
		}
		if rows[pid] != nil {
			return nil, tr.Errorf("duplicate product id %d in %s block", pid, block)
		}
		rows[pid] = vals
	}
	return rows, nil
}

// readIndexed читает строку "<id> v1 ... vw" с id из [0, n).
func readIndexed(tr *textio.Reader, n, w int) (int, []float64, error) {
	f, err := tr.Row(w + 1)
	if err != nil {
		return 0, nil, err
	}
	id, err := tr.Int(f[0])
	if err != nil {
		return 0, nil, err
	}
	if id < 0 || id >= n {
		return 0, nil, tr.Errorf("id %d out of range [0,%d)", id, n)
	}
	vals := make([]float64, w)
	for c := range vals {
		if vals[c], err = tr.Float(f[c+1]); err != nil {
			return 0, nil, err
		}
	}
	return id, vals, nil
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

func (inst *Instance) Export(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# format: %s\n", formatTag)
	fmt.Fprintf(bw, "%d\n", len(inst.Products))
	for p, pr := range inst.Products {
		fmt.Fprintf(bw, "%d %s\n", p, textio.FormatFloat(pr.Risk))
	}
	for p, pr := range inst.Products {
		fmt.Fprintf(bw, "%d %s\n", p, textio.FormatFloat(pr.Degradation))
	}
	for p, pr := range inst.Products {
		writeRow(bw, p, pr.Metabolization)
	}
	fmt.Fprintf(bw, "%d\n", len(inst.Nodes))
	for _, nd := range inst.Nodes {
		fmt.Fprintf(bw, "%d %d %d %d %d\n", nd.ID, nd.Type, nd.NeutralizeCrews, nd.CleanCrews, nd.RemovalDuration)
	}
	fmt.Fprintf(bw, "%d\n", len(inst.Nodes))
	for i, row := range inst.Concentration {
		writeRow(bw, i, row)
	}
	fmt.Fprintf(bw, "%d\n", inst.Horizon)
	return bw.Flush()
}

func writeRow(bw *bufio.Writer, id int, vals []float64) {
	fmt.Fprintf(bw, "%d", id)
	for _, v := range vals {
		bw.WriteString(" " + textio.FormatFloat(v))
	}
	bw.WriteByte('\n')
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
