// Package solution читает и пишет файлы решений в формате "name = value".
package solution

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Entry — одна именованная переменная решения.
type Entry struct {
	Name  string
	Value float64
}

// Values — решение, прочитанное из файла, по именам переменных.
type Values map[string]float64

// Int возвращает целое значение переменной; ok == false, если её нет.
func (v Values) Int(name string) (int, bool) {
	x, ok := v[name]
	if !ok {
		return 0, false
	}
	return int(x + 0.5), true
}

// Import разбирает решение. Комментарии, заголовки и строки без '=' пропускаются.
func Import(r io.Reader) (Values, error) {
	out := make(Values)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, raw, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || name == "" {
			continue
		}
		out[name] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func ImportFile(path string) (Values, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Import(f)
}

// Export пишет заголовок и ненулевые переменные в заданном порядке.
func Export(w io.Writer, instance string, entries []Entry) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "# solution for %s\n", instance); err != nil {
		return err
	}
	for _, e := range entries {
		if e.Value == 0 {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s = %s\n", e.Name, FormatValue(e.Value)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func ExportFile(path, instance string, entries []Entry) error {
	if d := filepath.Dir(path); d != "." {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Export(f, instance, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FormatValue печатает целые без дробной части, остальные — с минимальной точностью.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
