package census

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"
)

//go:embed census_distribution.yaml
var defaultDistribution []byte

// #region table
// Table is the read-only census reference table.
type Table struct {
	stats  map[Dimension]Stat
	byName map[string]Dimension
}

type tableFile struct {
	Scales []struct {
		ID   int `yaml:"id"`
		Stat `yaml:",inline"`
	} `yaml:"scales"`
}

// ParseTable decodes a YAML census distribution.
func ParseTable(raw []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse census table: %w", err)
	}
	t := &Table{
		stats:  make(map[Dimension]Stat, len(f.Scales)),
		byName: make(map[string]Dimension, len(f.Scales)),
	}
	for _, s := range f.Scales {
		d := Dimension(s.ID)
		if _, dup := t.stats[d]; dup {
			return nil, fmt.Errorf("parse census table: duplicate scale id %d", s.ID)
		}
		if _, dup := t.byName[s.Name]; dup {
			return nil, fmt.Errorf("parse census table: duplicate scale name %q", s.Name)
		}
		t.stats[d] = s.Stat
		t.byName[s.Name] = d
	}
	return t, nil
}

// LoadTable reads a census distribution file.
func LoadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read census table %s: %w", path, err)
	}
	return ParseTable(raw)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the embedded world distribution, parsed once per process.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = ParseTable(defaultDistribution)
	})
	return defaultTable, defaultErr
}

// #endregion table

// #region lookup
// Stat returns the reference row for d.
func (t *Table) Stat(d Dimension) (Stat, error) {
	s, ok := t.stats[d]
	if !ok {
		return Stat{}, fmt.Errorf("scale %d: %w", d, ErrUnknownDimension)
	}
	return s, nil
}

// Lookup resolves a scale name to its id. Unknown names carry the closest
// known name in the error.
func (t *Table) Lookup(name string) (Dimension, error) {
	if d, ok := t.byName[name]; ok {
		return d, nil
	}
	if guess := t.closest(name); guess != "" {
		return 0, fmt.Errorf("scale %q (did you mean %q?): %w", name, guess, ErrUnknownDimension)
	}
	return 0, fmt.Errorf("scale %q: %w", name, ErrUnknownDimension)
}

// Name returns the scale name for d, or its number when unknown.
func (t *Table) Name(d Dimension) string {
	if s, ok := t.stats[d]; ok {
		return s.Name
	}
	return fmt.Sprintf("scale %d", d)
}

// Dimensions returns every id in ascending order.
func (t *Table) Dimensions() []Dimension {
	out := make([]Dimension, 0, len(t.stats))
	for d := range t.stats {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of scales.
func (t *Table) Len() int {
	return len(t.stats)
}

func (t *Table) closest(name string) string {
	needle := strings.ToLower(name)
	best := ""
	bestDist := len(needle)/2 + 1
	for known := range t.byName {
		dist := levenshtein.ComputeDistance(needle, strings.ToLower(known))
		if dist < bestDist || (dist == bestDist && best != "" && known < best) {
			best = known
			bestDist = dist
		}
	}
	return best
}

// #endregion lookup
