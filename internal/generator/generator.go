package generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/taitai9847/prechecker/internal/schema"
	"github.com/taitai9847/prechecker/internal/validator"
)

// Style is the data generation style.
type Style string

const (
	StyleRealistic Style = "realistic"
	StyleMinimal   Style = "minimal"
	StyleEdgeCases Style = "edge-cases"
)

// Styles lists the accepted styles.
var Styles = []Style{StyleRealistic, StyleMinimal, StyleEdgeCases}

// ParseStyle maps a flag value to a Style.
func ParseStyle(s string) (Style, error) {
	for _, st := range Styles {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown style %q (want realistic, minimal or edge-cases)", s)
}

// Config holds generator options.
type Config struct {
	Rows      int
	Style     Style
	ErrorRate float64 // share of rows that get one invalid cell, 0..1
	Seed      uint64
	SkipAuto  bool // leave auto-generated columns out of the output
}

// DefaultConfig returns config with defaults.
func DefaultConfig() Config {
	return Config{
		Rows:  100,
		Style: StyleRealistic,
		Seed:  1,
	}
}

// GenerationResult holds the generated table data.
type GenerationResult struct {
	TableName string
	Columns   []string
	Rows      [][]string
	// Invalid maps the 0-based index of each row that received an
	// injected violation to the column it was injected into.
	Invalid map[int]string
}

// Generator produces synthetic rows for a schema. Output is fully
// determined by the schema and the config, including the seed.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New returns a generator for cfg.
func New(cfg Config) *Generator {
	if cfg.Style == "" {
		cfg.Style = StyleRealistic
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

// Generate builds cfg.Rows rows for s.
func (g *Generator) Generate(s *schema.Schema) (*GenerationResult, error) {
	if g.cfg.Rows < 0 {
		return nil, fmt.Errorf("rows must not be negative, got %d", g.cfg.Rows)
	}
	if g.cfg.ErrorRate < 0 || g.cfg.ErrorRate > 1 {
		return nil, fmt.Errorf("error rate must be within 0..1, got %g", g.cfg.ErrorRate)
	}

	var cols []schema.Column
	for _, c := range s.Columns {
		if g.cfg.SkipAuto && c.AutoGenerated {
			continue
		}
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s has no columns to generate", s.Table)
	}

	res := &GenerationResult{
		TableName: s.Table,
		Columns:   make([]string, len(cols)),
		Rows:      make([][]string, 0, g.cfg.Rows),
		Invalid:   make(map[int]string),
	}
	specs := make([]schema.TypeSpec, len(cols))
	for i, c := range cols {
		res.Columns[i] = c.Name
		specs[i] = c.Spec()
	}

	for n := 0; n < g.cfg.Rows; n++ {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = g.validValue(c, specs[i], n)
		}
		if g.cfg.ErrorRate > 0 && g.rng.Float64() < g.cfg.ErrorRate {
			if col, ok := g.inject(row, cols, specs); ok {
				res.Invalid[n] = col
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// validValue generates a value and confirms it with the rule engine, so a
// generator bug shows up as a fallback rather than as bad test data.
func (g *Generator) validValue(c schema.Column, spec schema.TypeSpec, n int) string {
	var v string
	switch {
	case c.AutoGenerated && spec.Family == schema.FamilyInteger:
		v = fmt.Sprint(n + 1)
	case c.Nullable && g.rng.Float64() < g.nullRate():
		return ""
	case g.cfg.Style == StyleMinimal:
		v = minimalValue(spec)
	case g.cfg.Style == StyleEdgeCases:
		v = g.edgeValue(spec)
	default:
		v = g.realisticValue(spec, n)
	}
	if !validator.CheckSpec(v, spec, c.Nullable).OK() {
		v = minimalValue(spec)
	}
	return v
}

func (g *Generator) nullRate() float64 {
	switch g.cfg.Style {
	case StyleMinimal:
		return 0.5
	case StyleEdgeCases:
		return 0.2
	}
	return 0.1
}

// inject replaces one cell of row with a value its column rejects. Columns
// are tried from a random start; it reports false when none can be broken.
func (g *Generator) inject(row []string, cols []schema.Column, specs []schema.TypeSpec) (string, bool) {
	start := g.rng.IntN(len(cols))
	for k := range cols {
		i := (start + k) % len(cols)
		bad, ok := g.invalidValue(cols[i], specs[i])
		if !ok {
			continue
		}
		row[i] = bad
		return cols[i].Name, true
	}
	return "", false
}

// WriteCSV writes the header and rows as comma-separated text.
func (r *GenerationResult) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(r.Rows); err != nil {
		return err
	}
	return cw.Error()
}
