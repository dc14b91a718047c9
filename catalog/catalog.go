// Package catalog assigns tools and materials to line items by matching
// their descriptions against a small reference catalog.
//
// Each catalog row is reduced to its set of normalized keyword tokens. An
// item scores against a row by containment: the fraction of the row's tokens
// that occur in the item's description. The score is asymmetric on purpose,
// so a one-word row such as "pintura" scores 1.0 against "pintura latex
// blanca". The best scoring row wins when it reaches the threshold;
// otherwise the catalog's default row supplies the texts.
//
//	cat, err := catalog.Load(sheet, catalog.DefaultConfig())
//	if err != nil {
//	    // errors.Is(err, model.ErrMatchConfig)
//	}
//	results := cat.MatchAll(items)
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tsawler/desglose/model"
	"github.com/tsawler/desglose/normalize"
)

// Column identifies one of the three catalog columns.
type Column int

const (
	ColumnDescription Column = iota
	ColumnTools
	ColumnMaterials
)

// String returns the string representation of the column.
func (c Column) String() string {
	switch c {
	case ColumnDescription:
		return "description"
	case ColumnTools:
		return "tools"
	case ColumnMaterials:
		return "materials"
	default:
		return "unknown"
	}
}

var columns = []Column{ColumnDescription, ColumnTools, ColumnMaterials}

// Grid is a worksheet viewed as a 2-D grid of native cell values. The first
// row holds the column headers. *xlsx.Sheet satisfies it.
type Grid interface {
	RowCount() int
	ColCount() int
	Value(row, col int) any
}

// Config controls loading and matching.
type Config struct {
	// Threshold is the minimum score a row needs to win over the default row.
	// Values outside (0, 1] fall back to the default.
	// Default: 0.80
	Threshold float64

	// DefaultMarker is the token that marks the fallback row.
	// Default: "default"
	DefaultMarker string

	// Headers lists accepted header names per column, compared after
	// normalization.
	Headers map[Column][]string

	// ToolFallback and MaterialFallback replace empty texts after matching.
	ToolFallback     string
	MaterialFallback string
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.80,
		DefaultMarker: "default",
		Headers: map[Column][]string{
			ColumnDescription: {"Descripción", "Description"},
			ColumnTools:       {"Herramientas", "Tools"},
			ColumnMaterials:   {"Materiales", "Materials"},
		},
		ToolFallback:     "hand tools",
		MaterialFallback: "general consumables",
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Threshold <= 0 || c.Threshold > 1 {
		c.Threshold = def.Threshold
	}
	if normalize.Text(c.DefaultMarker) == "" {
		c.DefaultMarker = def.DefaultMarker
	}
	if len(c.Headers) == 0 {
		c.Headers = def.Headers
	}
	if c.ToolFallback == "" {
		c.ToolFallback = def.ToolFallback
	}
	if c.MaterialFallback == "" {
		c.MaterialFallback = def.MaterialFallback
	}
	return c
}

// Catalog is a loaded, validated reference catalog. It is immutable and safe
// for concurrent use.
type Catalog struct {
	config  Config
	entries []model.CatalogEntry
	def     model.CatalogEntry
}

// Load reads the catalog from g. The first row must name the description,
// tools and materials columns. Rows with an empty description are skipped.
//
// The first row whose description contains the default marker token becomes
// the fallback row; later marked rows are ordinary candidates. Load fails
// with model.ErrNoDefaultCatalogRow when no row is marked and with
// model.ErrNoCatalogRows when no candidate row remains.
func Load(g Grid, config Config) (*Catalog, error) {
	config = config.withDefaults()

	cols, err := locateColumns(g, config)
	if err != nil {
		return nil, err
	}

	marker := normalize.Text(config.DefaultMarker)
	var entries []model.CatalogEntry
	var def *model.CatalogEntry

	for r := 1; r < g.RowCount(); r++ {
		raw := text(g.Value(r, cols[ColumnDescription]))
		norm := normalize.Text(raw)
		if norm == "" {
			continue
		}

		entry := model.CatalogEntry{
			RawDescription:        raw,
			NormalizedDescription: norm,
			KeywordTokens:         normalize.Set(strings.Split(norm, " ")),
			ToolText:              text(g.Value(r, cols[ColumnTools])),
			MaterialText:          text(g.Value(r, cols[ColumnMaterials])),
		}
		if def == nil && slices.Contains(entry.KeywordTokens, marker) {
			entry.IsDefault = true
			def = &entry
			continue
		}
		entries = append(entries, entry)
	}

	if def == nil {
		return nil, fmt.Errorf("%w: no description contains %q", model.ErrNoDefaultCatalogRow, config.DefaultMarker)
	}
	if len(entries) == 0 {
		return nil, model.ErrNoCatalogRows
	}
	return &Catalog{config: config, entries: entries, def: *def}, nil
}

// locateColumns maps each catalog column to its index on the header row.
func locateColumns(g Grid, config Config) (map[Column]int, error) {
	var headers []string
	found := make(map[Column]int)
	for c := 0; c < g.ColCount(); c++ {
		h := text(g.Value(0, c))
		headers = append(headers, h)
		n := normalize.Text(h)
		if n == "" {
			continue
		}
		for _, col := range columns {
			if _, ok := found[col]; ok {
				continue
			}
			if slices.Contains(normalize.All(config.Headers[col]), n) {
				found[col] = c
				break
			}
		}
	}

	for _, col := range columns {
		if _, ok := found[col]; !ok {
			return nil, fmt.Errorf("%w: %s (accepted: %s); columns found: [%s]",
				model.ErrMissingCatalogColumn, col,
				strings.Join(config.Headers[col], ", "),
				strings.Join(headers, ", "))
		}
	}
	return found, nil
}

// Entries returns the candidate rows in catalog order, excluding the
// default row.
func (c *Catalog) Entries() []model.CatalogEntry {
	return slices.Clone(c.entries)
}

// Default returns the fallback row.
func (c *Catalog) Default() model.CatalogEntry {
	return c.def
}

// Config returns the configuration the catalog was loaded with.
func (c *Catalog) Config() Config {
	return c.config
}

// Score returns the fraction of the entry's keyword tokens present in
// itemTokens. It is 0 for an entry without tokens.
func Score(itemTokens map[string]bool, entry model.CatalogEntry) float64 {
	if len(entry.KeywordTokens) == 0 {
		return 0
	}
	hit := 0
	for _, tok := range entry.KeywordTokens {
		if itemTokens[tok] {
			hit++
		}
	}
	return float64(hit) / float64(len(entry.KeywordTokens))
}

// Match scores description against every candidate row. Ties go to the
// earliest row. Below the threshold the default row is used with a score
// of 0. Empty texts are replaced by the configured fallbacks.
func (c *Catalog) Match(description string) model.MatchResult {
	itemTokens := make(map[string]bool)
	for _, tok := range normalize.Tokens(description) {
		itemTokens[tok] = true
	}

	best := -1.0
	bestIdx := -1
	for i, e := range c.entries {
		if sc := Score(itemTokens, e); sc > best {
			best = sc
			bestIdx = i
		}
	}

	var res model.MatchResult
	if bestIdx >= 0 && best >= c.config.Threshold {
		e := c.entries[bestIdx]
		res = model.MatchResult{
			ToolText:           e.ToolText,
			MaterialText:       e.MaterialText,
			Score:              best,
			MatchedDescription: e.RawDescription,
		}
	} else {
		res = model.MatchResult{
			ToolText:           c.def.ToolText,
			MaterialText:       c.def.MaterialText,
			MatchedDescription: c.def.RawDescription,
			Fallback:           true,
		}
	}

	if res.ToolText == "" {
		res.ToolText = c.config.ToolFallback
	}
	if res.MaterialText == "" {
		res.MaterialText = c.config.MaterialFallback
	}
	return res
}

// MatchAll matches every item, preserving order and length.
func (c *Catalog) MatchAll(items []model.LineItem) []model.MatchResult {
	out := make([]model.MatchResult, len(items))
	for i, it := range items {
		out[i] = c.Match(it.Description)
	}
	return out
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
