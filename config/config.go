// Package config holds the settings of a desglose run: header synonyms,
// catalog matching, page layout, labels and service settings.
//
// A Config is built once, from Default or from a YAML file merged over the
// defaults, and then passed explicitly to the components that need it.
//
//	cfg, err := config.Load("desglose.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ex := extract.NewExtractorWithConfig(cfg.Extract())
package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/desglose/catalog"
	"github.com/tsawler/desglose/extract"
	"github.com/tsawler/desglose/font"
	"github.com/tsawler/desglose/model"
	"github.com/tsawler/desglose/overlay"
)

// Config is the full configuration.
type Config struct {
	Listen       string          `yaml:"listen"`
	LogMode      string          `yaml:"log_mode"` // dev | prod
	ItemsPerPage int             `yaml:"items_per_page"`
	Artifacts    ArtifactsConfig `yaml:"artifacts"`
	Headers      HeadersConfig   `yaml:"headers"`
	Catalog      CatalogConfig   `yaml:"catalog"`
	Labels       LabelsConfig    `yaml:"labels"`
	Render       RenderConfig    `yaml:"render"`
}

// ArtifactsConfig points at files used when a run does not supply them.
type ArtifactsConfig struct {
	Template string `yaml:"template"`
	Catalog  string `yaml:"catalog"`
	Logo     string `yaml:"logo"`
}

// HeadersConfig configures header row detection in the priced spreadsheet.
// Synonym keys are field names: sequence_number, description, unit,
// quantity and total_price.
type HeadersConfig struct {
	ScanLimit int                 `yaml:"scan_limit"`
	Synonyms  map[string][]string `yaml:"synonyms"`
}

// CatalogConfig configures catalog loading and matching. Column keys are
// description, tools and materials.
type CatalogConfig struct {
	Threshold        float64             `yaml:"threshold"`
	DefaultMarker    string              `yaml:"default_marker"`
	Columns          map[string][]string `yaml:"columns"`
	ToolFallback     string              `yaml:"tool_fallback"`
	MaterialFallback string              `yaml:"material_fallback"`
}

// LabelsConfig holds fixed texts printed on every form.
type LabelsConfig struct {
	Labor      string `yaml:"labor"`
	DateFormat string `yaml:"date_format"` // Go time layout
}

// RenderConfig configures the overlay text and the two page layouts.
type RenderConfig struct {
	Font       string  `yaml:"font"`
	FontSize   float64 `yaml:"font_size"`
	LineHeight float64 `yaml:"line_height"`
	MaxChars   int     `yaml:"max_chars"`

	// MaxWrapLines caps the line count of every box when positive.
	MaxWrapLines int          `yaml:"max_wrap_lines"`
	Simple       LayoutConfig `yaml:"simple"`
	Full         LayoutConfig `yaml:"full"`
}

// LayoutConfig positions the boxes of one form, in points from the bottom
// left corner of the page.
type LayoutConfig struct {
	Date        BoxConfig   `yaml:"date"`
	Item        BoxConfig   `yaml:"item"`
	Description BoxConfig   `yaml:"description"`
	Tools       BoxConfig   `yaml:"tools"`
	Labor       BoxConfig   `yaml:"labor"`
	Materials   BoxConfig   `yaml:"materials"`
	Cost        BoxConfig   `yaml:"cost"`
	Logo        ImageConfig `yaml:"logo"`
	Slots       []Point     `yaml:"slots"`
	Shift       Point       `yaml:"shift"`
}

// BoxConfig positions a text box. A zero box is not drawn.
type BoxConfig struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	MaxWidth float64 `yaml:"max_width"`
	MaxLines int     `yaml:"max_lines"`
}

// ImageConfig positions the logo box.
type ImageConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Point is an offset in points.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

var fieldNames = map[string]model.Field{
	model.FieldSequence.String():    model.FieldSequence,
	model.FieldDescription.String(): model.FieldDescription,
	model.FieldUnit.String():        model.FieldUnit,
	model.FieldQuantity.String():    model.FieldQuantity,
	model.FieldTotalPrice.String():  model.FieldTotalPrice,
}

var columnNames = map[string]catalog.Column{
	catalog.ColumnDescription.String(): catalog.ColumnDescription,
	catalog.ColumnTools.String():       catalog.ColumnTools,
	catalog.ColumnMaterials.String():   catalog.ColumnMaterials,
}

// Default returns the built-in configuration.
func Default() *Config {
	ex := extract.DefaultConfig()
	synonyms := make(map[string][]string, len(ex.Synonyms))
	for f, names := range ex.Synonyms {
		synonyms[f.String()] = slices.Clone(names)
	}

	cat := catalog.DefaultConfig()
	columns := make(map[string][]string, len(cat.Headers))
	for c, names := range cat.Headers {
		columns[c.String()] = slices.Clone(names)
	}

	full := overlay.DefaultFullLayout()
	return &Config{
		Listen:       ":8080",
		LogMode:      "prod",
		ItemsPerPage: 1,
		Headers: HeadersConfig{
			ScanLimit: ex.ScanLimit,
			Synonyms:  synonyms,
		},
		Catalog: CatalogConfig{
			Threshold:        cat.Threshold,
			DefaultMarker:    cat.DefaultMarker,
			Columns:          columns,
			ToolFallback:     cat.ToolFallback,
			MaterialFallback: cat.MaterialFallback,
		},
		Labels: LabelsConfig{
			Labor:      "not applicable",
			DateFormat: "02/01/2006",
		},
		Render: RenderConfig{
			Font:       full.Font,
			FontSize:   full.FontSize,
			LineHeight: full.LineHeight,
			Simple:     fromLayout(overlay.DefaultSimpleLayout()),
			Full:       fromLayout(full),
		},
	}
}

// Load reads a YAML file and merges it over Default. Maps are merged key by
// key; lists replace the default list.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse merges YAML data over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	switch c.LogMode {
	case "dev", "prod":
	default:
		return fmt.Errorf("unsupported log_mode %q (use dev or prod)", c.LogMode)
	}
	if c.ItemsPerPage != 1 && c.ItemsPerPage != 2 {
		return fmt.Errorf("items_per_page must be 1 or 2, got %d", c.ItemsPerPage)
	}

	if c.Headers.ScanLimit <= 0 {
		return fmt.Errorf("headers.scan_limit must be > 0")
	}
	for name := range c.Headers.Synonyms {
		if _, ok := fieldNames[name]; !ok {
			return fmt.Errorf("headers.synonyms: unknown field %q", name)
		}
	}
	for _, f := range []model.Field{model.FieldDescription, model.FieldTotalPrice} {
		if len(c.Headers.Synonyms[f.String()]) == 0 {
			return fmt.Errorf("headers.synonyms.%s must not be empty", f)
		}
	}

	if c.Catalog.Threshold <= 0 || c.Catalog.Threshold > 1 {
		return fmt.Errorf("catalog.threshold must be in (0, 1], got %v", c.Catalog.Threshold)
	}
	if c.Catalog.DefaultMarker == "" {
		return fmt.Errorf("catalog.default_marker is required")
	}
	for name := range c.Catalog.Columns {
		if _, ok := columnNames[name]; !ok {
			return fmt.Errorf("catalog.columns: unknown column %q", name)
		}
	}
	for name := range columnNames {
		if len(c.Catalog.Columns[name]) == 0 {
			return fmt.Errorf("catalog.columns.%s must not be empty", name)
		}
	}

	if c.Labels.DateFormat == "" {
		return fmt.Errorf("labels.date_format is required")
	}

	if !font.IsStandard(c.Render.Font) {
		return fmt.Errorf("render.font %q is not a standard PDF font", c.Render.Font)
	}
	if c.Render.FontSize <= 0 {
		return fmt.Errorf("render.font_size must be > 0")
	}
	if c.Render.LineHeight < 0 || c.Render.MaxChars < 0 || c.Render.MaxWrapLines < 0 {
		return fmt.Errorf("render.line_height, render.max_chars and render.max_wrap_lines must not be negative")
	}
	if len(c.Render.Simple.Slots) < c.ItemsPerPage || len(c.Render.Full.Slots) < c.ItemsPerPage {
		return fmt.Errorf("items_per_page %d needs as many layout slots", c.ItemsPerPage)
	}
	return nil
}

// Extract returns the header detection settings.
func (c *Config) Extract() extract.Config {
	synonyms := make(map[model.Field][]string, len(c.Headers.Synonyms))
	for name, names := range c.Headers.Synonyms {
		if f, ok := fieldNames[name]; ok {
			synonyms[f] = slices.Clone(names)
		}
	}
	return extract.Config{Synonyms: synonyms, ScanLimit: c.Headers.ScanLimit}
}

// MatchConfig returns the catalog settings.
func (c *Config) MatchConfig() catalog.Config {
	headers := make(map[catalog.Column][]string, len(c.Catalog.Columns))
	for name, names := range c.Catalog.Columns {
		if col, ok := columnNames[name]; ok {
			headers[col] = slices.Clone(names)
		}
	}
	return catalog.Config{
		Threshold:        c.Catalog.Threshold,
		DefaultMarker:    c.Catalog.DefaultMarker,
		Headers:          headers,
		ToolFallback:     c.Catalog.ToolFallback,
		MaterialFallback: c.Catalog.MaterialFallback,
	}
}

// Layout returns the full layout when full is true and the simple layout
// otherwise.
func (c *Config) Layout(full bool) overlay.Layout {
	lc := c.Render.Simple
	if full {
		lc = c.Render.Full
	}

	box := func(b BoxConfig) overlay.Box {
		lines := b.MaxLines
		if c.Render.MaxWrapLines > 0 && (lines == 0 || lines > c.Render.MaxWrapLines) {
			lines = c.Render.MaxWrapLines
		}
		return overlay.Box{X: b.X, Y: b.Y, MaxWidth: b.MaxWidth, MaxLines: lines}
	}

	slots := make([]model.Point, len(lc.Slots))
	for i, s := range lc.Slots {
		slots[i] = model.Point{X: s.X, Y: s.Y}
	}

	return overlay.Layout{
		Font:        c.Render.Font,
		FontSize:    c.Render.FontSize,
		LineHeight:  c.Render.LineHeight,
		MaxChars:    c.Render.MaxChars,
		Date:        box(lc.Date),
		Item:        box(lc.Item),
		Description: box(lc.Description),
		Tools:       box(lc.Tools),
		Labor:       box(lc.Labor),
		Materials:   box(lc.Materials),
		Cost:        box(lc.Cost),
		Logo:        overlay.ImageBox{X: lc.Logo.X, Y: lc.Logo.Y, Width: lc.Logo.Width, Height: lc.Logo.Height},
		Slots:       slots,
		Shift:       model.Point{X: lc.Shift.X, Y: lc.Shift.Y},
	}
}

func fromLayout(l overlay.Layout) LayoutConfig {
	box := func(b overlay.Box) BoxConfig {
		return BoxConfig{X: b.X, Y: b.Y, MaxWidth: b.MaxWidth, MaxLines: b.MaxLines}
	}
	slots := make([]Point, len(l.Slots))
	for i, s := range l.Slots {
		slots[i] = Point{X: s.X, Y: s.Y}
	}
	return LayoutConfig{
		Date:        box(l.Date),
		Item:        box(l.Item),
		Description: box(l.Description),
		Tools:       box(l.Tools),
		Labor:       box(l.Labor),
		Materials:   box(l.Materials),
		Cost:        box(l.Cost),
		Logo:        ImageConfig{X: l.Logo.X, Y: l.Logo.Y, Width: l.Logo.Width, Height: l.Logo.Height},
		Slots:       slots,
		Shift:       Point{X: l.Shift.X, Y: l.Shift.Y},
	}
}
