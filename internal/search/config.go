package search

import "fmt"

// Neighborhood определяет тип окрестности статического поиска.
type Neighborhood string

const (
	NeighborhoodSwap   Neighborhood = "swap"
	NeighborhoodInsert Neighborhood = "insert"
	NeighborhoodBoth   Neighborhood = "both"
)

type Config struct {
	// Neighborhood — ходы над списком приоритетов (статический вариант).
	Neighborhood Neighborhood `yaml:"neighborhood"`

	// Neighbors — число случайных соседей за один проход спуска (динамический вариант).
	Neighbors int `yaml:"neighbors"`
}

func DefaultConfig() Config {
	return Config{
		Neighborhood: NeighborhoodBoth,
		Neighbors:    64,
	}
}

func (c Config) Validate() error {
	switch c.Neighborhood {
	case NeighborhoodSwap, NeighborhoodInsert, NeighborhoodBoth:
		// ok
	default:
		return fmt.Errorf(
			"unknown neighborhood %q",
			c.Neighborhood,
		)
	}
	if c.Neighbors <= 0 {
		return fmt.Errorf(
			"neighbors must be > 0 (got %d)",
			c.Neighbors,
		)
	}
	return nil
}
