package extract

import (
	"strconv"
	"strings"

	"github.com/tsawler/desglose/model"
	"github.com/tsawler/desglose/normalize"
	"github.com/tsawler/desglose/numeric"
)

// Grid is a worksheet viewed as a 2-D grid of native cell values
// (nil, string, float64 or bool). *xlsx.Sheet satisfies it.
type Grid interface {
	RowCount() int
	ColCount() int
	Value(row, col int) any
}

// Table is an in-memory Grid.
type Table [][]any

// RowCount returns the number of rows.
func (t Table) RowCount() int { return len(t) }

// ColCount returns the width of the widest row.
func (t Table) ColCount() int {
	n := 0
	for _, row := range t {
		n = max(n, len(row))
	}
	return n
}

// Value returns the value at (row, col), or nil outside the table.
func (t Table) Value(row, col int) any {
	if row < 0 || row >= len(t) || col < 0 || col >= len(t[row]) {
		return nil
	}
	return t[row][col]
}

// Config controls header detection.
type Config struct {
	// Synonyms lists the accepted header names per field. Names are compared
	// after normalization, so case, accents and punctuation do not matter.
	Synonyms map[model.Field][]string

	// ScanLimit is the number of rows examined from the top of a worksheet
	// Default: 80
	ScanLimit int
}

// DefaultSynonyms returns the built-in header names per field.
func DefaultSynonyms() map[model.Field][]string {
	return map[model.Field][]string{
		model.FieldDescription: {
			"descripcion", "descripciones", "descripcion del bien", "descripcion del item",
			"descripcion del ítem", "descripcion item", "desc",
		},
		model.FieldTotalPrice: {
			"precio total", "precios totales", "precio total iva incluido", "precio total iva incl",
			"precio total (iva incluido)", "precio total (va incluido)", "precio total va incluido",
			"total", "totales", "importe total", "monto total",
		},
		model.FieldQuantity: {"cantidad", "cant", "qty"},
		model.FieldUnit:     {"unidad", "unidad de medida", "u m", "um", "medida"},
		model.FieldSequence: {"item", "items", "nro", "no", "numero", "n", "n item"},
	}
}

// DefaultConfig returns the built-in synonyms and an 80 row scan limit.
func DefaultConfig() Config {
	return Config{
		Synonyms:  DefaultSynonyms(),
		ScanLimit: 80,
	}
}

// Extractor finds header rows and reads line items.
type Extractor struct {
	config Config
	lookup map[string]model.Field
}

// NewExtractor creates an extractor with default configuration.
func NewExtractor() *Extractor {
	return NewExtractorWithConfig(DefaultConfig())
}

// NewExtractorWithConfig creates an extractor with custom configuration.
func NewExtractorWithConfig(config Config) *Extractor {
	if config.ScanLimit <= 0 {
		config.ScanLimit = DefaultConfig().ScanLimit
	}
	if len(config.Synonyms) == 0 {
		config.Synonyms = DefaultSynonyms()
	}

	// Fields earlier in model.Fields claim a shared name first.
	lookup := make(map[string]model.Field)
	for _, f := range model.Fields {
		for _, name := range normalize.All(config.Synonyms[f]) {
			if _, taken := lookup[name]; !taken {
				lookup[name] = f
			}
		}
	}
	return &Extractor{config: config, lookup: lookup}
}

// Config returns the extractor's configuration.
func (e *Extractor) Config() Config {
	return e.config
}

// Locate scans the top of g for the header row. The boolean is false when
// no row within the scan limit names both a description and a total price.
func (e *Extractor) Locate(g Grid) (model.HeaderMapping, bool) {
	rows := min(g.RowCount(), e.config.ScanLimit)
	cols := g.ColCount()

	for r := 0; r < rows; r++ {
		columns := make(map[model.Field]int)
		for c := 0; c < cols; c++ {
			field, ok := e.lookup[normalize.Value(g.Value(r, c))]
			if !ok {
				continue
			}
			if _, seen := columns[field]; !seen {
				columns[field] = c
			}
		}

		_, hasDesc := columns[model.FieldDescription]
		_, hasTotal := columns[model.FieldTotalPrice]
		if hasDesc && hasTotal {
			return model.HeaderMapping{Row: r, Columns: columns}, true
		}
	}
	return model.HeaderMapping{}, false
}

// Items reads every row below the header. Rows without a description or a
// parseable total price are skipped; dropped counts those that had one of
// the two. Blank rows are not counted.
func (e *Extractor) Items(g Grid, h model.HeaderMapping) (items []model.LineItem, dropped int) {
	descCol, _ := h.Column(model.FieldDescription)
	totalCol, _ := h.Column(model.FieldTotalPrice)

	for r := h.Row + 1; r < g.RowCount(); r++ {
		desc := cellText(g.Value(r, descCol))
		total, ok := numeric.Parse(g.Value(r, totalCol))
		if desc == "" || !ok {
			if desc != "" || ok {
				dropped++
			}
			continue
		}

		item := model.LineItem{
			SequenceNumber: len(items) + 1,
			Description:    desc,
			Quantity:       1.0,
			TotalPrice:     numeric.RoundHalfEven(total),
		}
		if col, ok := h.Column(model.FieldSequence); ok {
			if seq, ok := numeric.ParseInt(g.Value(r, col)); ok {
				item.SequenceNumber = int(seq)
			}
		}
		if col, ok := h.Column(model.FieldQuantity); ok {
			if q, ok := numeric.Parse(g.Value(r, col)); ok && q > 0 {
				item.Quantity = q
			}
		}
		if col, ok := h.Column(model.FieldUnit); ok {
			item.Unit = cellText(g.Value(r, col))
		}
		items = append(items, item)
	}
	return items, dropped
}

// Result is the outcome of a successful extraction.
type Result struct {
	// Sheet is the index of the worksheet the items came from.
	Sheet   int
	Header  model.HeaderMapping
	Items   []model.LineItem
	Dropped int
}

// Extract walks the worksheets in order and returns the items of the first
// one that yields any. It fails with model.ErrHeaderNotFound when no
// worksheet has a header row, and with model.ErrEmptyExtraction when headers
// were found but every row below them was skipped. Both errors are
// *model.SynonymError values listing the accepted header names.
func (e *Extractor) Extract(sheets ...Grid) (Result, error) {
	headerSeen := false
	for i, g := range sheets {
		h, ok := e.Locate(g)
		if !ok {
			continue
		}
		headerSeen = true

		items, dropped := e.Items(g, h)
		if len(items) > 0 {
			return Result{Sheet: i, Header: h, Items: items, Dropped: dropped}, nil
		}
	}

	err := model.ErrHeaderNotFound
	if headerSeen {
		err = model.ErrEmptyExtraction
	}
	return Result{}, &model.SynonymError{Err: err, Synonyms: e.config.Synonyms}
}

// cellText returns the trimmed display text of a native cell value.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
