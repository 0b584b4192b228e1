// Команда optlis планирует обеззараживание площадок: итеративный локальный
// поиск, внешний MILP-решатель, проверка решений и генерация экземпляров.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const usage = `использование: optlis <команда> [флаги] ...

команды:
  ils       итеративный локальный поиск (ансамбль запусков)
  milp      решение внешним MILP-решателем
  eval      проверка и оценка файла решения
  generate  генерация случайного экземпляра
  bench     серия запусков на случайных решётках с отчётом CSV
`

type command func(ctx context.Context, args []string) int

func main() {
	commands := map[string]command{
		"ils":      runILS,
		"milp":     runMILP,
		"eval":     runEval,
		"generate": runGenerate,
		"bench":    runBench,
	}
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Неизвестная команда %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cmd(ctx, os.Args[2:])
	stop()
	os.Exit(code)
}

// helpers

// newLogger — консольный журнал в stderr: предупреждения, с -v всё до debug.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level.SetLevel(zap.DebugLevel)
	}
	return cfg.Build()
}

// solutionPath — путь файла решения по умолчанию: рядом с экземпляром, расширение .sol.
func solutionPath(instance string) string {
	return strings.TrimSuffix(instance, filepath.Ext(instance)) + ".sol"
}

func instanceName(path string) string {
	return filepath.Base(path)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiStrict(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}
