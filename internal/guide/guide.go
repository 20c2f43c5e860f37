// Package guide loads the symbolic number guide from a YAML or JSON file.
package guide

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/drawbias/schema"
	"gopkg.in/yaml.v3"
)

// ErrInvalidGuide is returned when a guide file cannot be interpreted.
var ErrInvalidGuide = errors.New("invalid guide")

// entry is the file shape of one guide row. Polarity accepts the Spanish
// labels and a few common aliases.
type entry struct {
	Symbol   string `yaml:"simbolo"`
	Family   string `yaml:"familia"`
	Polarity string `yaml:"polaridad"`
}

// Load reads a guide file. An empty path yields an empty guide, which turns the
// family detector and the energy header into no-ops.
// JSON files are parsed by the same decoder since JSON is valid YAML.
func Load(path string) (schema.Guide, error) {
	if path == "" {
		return schema.Guide{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read guide %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a mapping of number to entry. Keys may be padded ("07") or not.
func Parse(data []byte) (schema.Guide, error) {
	var raw map[string]entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGuide, err)
	}
	g := make(schema.Guide, len(raw))
	for key, e := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || n < 0 || n > 99 {
			return nil, fmt.Errorf("%w: key %q is not a number in 0..99", ErrInvalidGuide, key)
		}
		pol, err := parsePolarity(e.Polarity)
		if err != nil {
			return nil, fmt.Errorf("%w: number %d: %v", ErrInvalidGuide, n, err)
		}
		g[n] = schema.GuideEntry{
			Symbol:   strings.TrimSpace(e.Symbol),
			Family:   strings.ToLower(strings.TrimSpace(e.Family)),
			Polarity: pol,
		}
	}
	return g, nil
}

func parsePolarity(s string) (schema.Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positiva", "positivo", "positive", "+":
		return schema.PositivePolarity, nil
	case "negativa", "negativo", "negative", "-":
		return schema.NegativePolarity, nil
	case "neutra", "neutro", "neutral", "":
		return schema.NeutralPolarity, nil
	default:
		return "", fmt.Errorf("unknown polarity %q", s)
	}
}
