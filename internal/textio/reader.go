// Package textio содержит общий разбор построчных текстовых форматов экземпляров.
package textio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"optlis/internal/opt"
)

// Reader выдаёт значимые строки файла: пустые строки и строки-комментарии
// (начинающиеся с '#') пропускаются.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader читает заголовок вида "# format: <format>".
// Отсутствие заголовка — ошибка ErrMalformedInstance.
func NewReader(r io.Reader, format string) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	tr := &Reader{sc: sc}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: empty input", opt.ErrMalformedInstance)
	}
	tr.line++
	header := strings.TrimSpace(sc.Text())
	if header != "# format: "+format {
		return nil, fmt.Errorf("%w: line 1: expected header %q (got %q)", opt.ErrMalformedInstance, "# format: "+format, header)
	}
	return tr, nil
}

// Fields возвращает поля следующей значимой строки.
func (r *Reader) Fields() ([]string, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return strings.Fields(text), nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, r.Errorf("unexpected end of input")
}

// Row читает строку ровно из want полей.
func (r *Reader) Row(want int) ([]string, error) {
	f, err := r.Fields()
	if err != nil {
		return nil, err
	}
	if len(f) != want {
		return nil, r.Errorf("expected %d fields (got %d)", want, len(f))
	}
	return f, nil
}

// Count читает строку с одним неотрицательным целым (размер блока).
func (r *Reader) Count() (int, error) {
	f, err := r.Row(1)
	if err != nil {
		return 0, err
	}
	v, err := r.Int(f[0])
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, r.Errorf("count must be >= 0 (got %d)", v)
	}
	return v, nil
}

// Done проверяет, что после последнего блока нет значимых строк.
func (r *Reader) Done() error {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return r.Errorf("unexpected trailing data %q", text)
	}
	return r.sc.Err()
}

func (r *Reader) Int(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, r.Errorf("invalid integer %q", s)
	}
	return v, nil
}

func (r *Reader) Float(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, r.Errorf("invalid number %q", s)
	}
	return v, nil
}

// Errorf оборачивает ErrMalformedInstance с номером текущей строки.
func (r *Reader) Errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", opt.ErrMalformedInstance, r.line, fmt.Sprintf(format, args...))
}

// FormatFloat — фиксированная точность вещественных полей (2 знака).
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
