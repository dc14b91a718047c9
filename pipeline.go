package desglose

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/desglose/assemble"
	"github.com/tsawler/desglose/catalog"
	"github.com/tsawler/desglose/config"
	"github.com/tsawler/desglose/costing"
	"github.com/tsawler/desglose/extract"
	"github.com/tsawler/desglose/font"
	"github.com/tsawler/desglose/format"
	"github.com/tsawler/desglose/internal/logger"
	"github.com/tsawler/desglose/model"
	"github.com/tsawler/desglose/numeric"
	"github.com/tsawler/desglose/overlay"
	"github.com/tsawler/desglose/xlsx"
)

// Pipeline provides a fluent interface for configuring and running a
// breakdown. Each configuration method returns a new Pipeline, so a
// partially configured pipeline can be reused and shared between
// goroutines.
type Pipeline struct {
	// Source spreadsheet
	input []byte

	options options

	// Accumulated error (fail-fast)
	err error
}

// clone creates a copy of the Pipeline. Every chain method returns a new
// instance.
func (p *Pipeline) clone() *Pipeline {
	return &Pipeline{
		input:   p.input,
		options: p.options.clone(),
		err:     p.err,
	}
}

func (p *Pipeline) fail(err error) {
	if p.err == nil && err != nil {
		p.err = err
	}
}

// ============================================================================
// Configuration Methods (return new Pipeline instance)
// ============================================================================

// Template sets the template PDF. Only its first page is used.
func (p *Pipeline) Template(pdf []byte) *Pipeline {
	n := p.clone()
	n.options.template = bytes.Clone(pdf)
	return n
}

// TemplateFile reads the template PDF from disk.
func (p *Pipeline) TemplateFile(path string) *Pipeline {
	n := p.clone()
	data, err := readArtifact("template PDF", path)
	n.options.template = data
	n.fail(err)
	return n
}

// Catalog sets the reference catalog workbook. With a catalog the full unit
// cost analysis form is printed; without one only the header blocks are.
func (p *Pipeline) Catalog(xlsx []byte) *Pipeline {
	n := p.clone()
	n.options.catalog = bytes.Clone(xlsx)
	return n
}

// CatalogFile reads the reference catalog workbook from disk.
func (p *Pipeline) CatalogFile(path string) *Pipeline {
	n := p.clone()
	data, err := readArtifact("catalog", path)
	n.options.catalog = data
	n.fail(err)
	return n
}

// Logo sets the image drawn once per page. It takes precedence over the
// configured default logo.
func (p *Pipeline) Logo(image []byte) *Pipeline {
	n := p.clone()
	n.options.logo = bytes.Clone(image)
	return n
}

// LogoFile reads the logo from disk.
func (p *Pipeline) LogoFile(path string) *Pipeline {
	n := p.clone()
	data, err := readArtifact("logo", path)
	n.options.logo = data
	n.fail(err)
	return n
}

// Date sets the date printed on every page. The default is the time of
// the terminal call.
func (p *Pipeline) Date(t time.Time) *Pipeline {
	n := p.clone()
	n.options.date = t
	return n
}

// TwoPerPage prints two items per page.
func (p *Pipeline) TwoPerPage() *Pipeline {
	return p.ItemsPerPage(2)
}

// ItemsPerPage sets the number of items per page, 1 or 2.
func (p *Pipeline) ItemsPerPage(n int) *Pipeline {
	np := p.clone()
	if n != 1 && n != 2 {
		np.fail(fmt.Errorf("items per page must be 1 or 2, got %d", n))
		return np
	}
	np.options.perPage = n
	return np
}

// Config replaces the configuration. A nil config restores the defaults.
// The config must not be modified afterwards.
func (p *Pipeline) Config(cfg *config.Config) *Pipeline {
	n := p.clone()
	if cfg == nil {
		n.options.config = config.Default()
		return n
	}
	if err := cfg.Validate(); err != nil {
		n.fail(fmt.Errorf("config: %w", err))
		return n
	}
	n.options.config = cfg
	return n
}

// Logger sets the logger used during the run. Libraries stay silent
// without one.
func (p *Pipeline) Logger(z *zap.Logger) *Pipeline {
	n := p.clone()
	if z != nil {
		n.options.log = logger.FromZap(z)
	}
	return n
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Items extracts the line items of the spreadsheet. Rows missing a
// description or a total price are dropped and reported as a warning.
func (p *Pipeline) Items() ([]model.LineItem, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}

	r, err := openWorkbook("spreadsheet", p.input)
	if err != nil {
		return nil, nil, err
	}

	sheets := r.Sheets()
	grids := make([]extract.Grid, len(sheets))
	for i, s := range sheets {
		grids[i] = s
	}

	res, err := extract.NewExtractorWithConfig(p.options.config.Extract()).Extract(grids...)
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	if res.Dropped > 0 {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("%d rows of sheet %q dropped: description or total price missing", res.Dropped, sheets[res.Sheet].Name),
		})
	}
	p.options.log.Debug("items extracted",
		"sheet", sheets[res.Sheet].Name,
		"header_row", res.Header.Row+1,
		"items", len(res.Items),
		"dropped", res.Dropped)

	return res.Items, warnings, nil
}

// Matches pairs every item with its catalog match, in item order. A
// catalog is required.
func (p *Pipeline) Matches() ([]Match, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	cat, err := p.requireCatalog()
	if err != nil {
		return nil, nil, err
	}
	items, warnings, err := p.Items()
	if err != nil {
		return nil, nil, err
	}

	results := p.match(cat, items)
	matches := make([]Match, len(items))
	for i, it := range items {
		matches[i] = Match{Item: it, MatchResult: results[i]}
	}
	return matches, warnings, nil
}

// Records builds the cost analysis record of every item. A catalog is
// required.
func (p *Pipeline) Records() ([]costing.Record, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	cat, err := p.requireCatalog()
	if err != nil {
		return nil, nil, err
	}
	items, warnings, err := p.Items()
	if err != nil {
		return nil, nil, err
	}
	records, err := costing.Build(p.dateText(), items, p.match(cat, items))
	if err != nil {
		return nil, nil, err
	}
	return records, warnings, nil
}

// Build runs the whole pipeline and returns the output PDF. Input, format
// and catalog errors abort the run before any page is rendered; a logo
// that cannot be drawn only produces a warning.
func (p *Pipeline) Build() ([]byte, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	cfg := p.options.config
	log := p.options.log

	tpl, err := p.loadTemplate()
	if err != nil {
		return nil, nil, err
	}
	cat, err := p.loadCatalog()
	if err != nil {
		return nil, nil, err
	}
	items, warnings, err := p.Items()
	if err != nil {
		return nil, nil, err
	}

	entries, err := p.entries(cat, items)
	if err != nil {
		return nil, nil, err
	}

	logo, lw := p.logo()
	warnings = append(warnings, lw...)

	layout := cfg.Layout(cat != nil)
	perPage := p.options.perPage
	if perPage == 0 {
		perPage = cfg.ItemsPerPage
	}

	face, err := font.NewFace(layout.Font, layout.FontSize)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", model.ErrRender, err)
	}
	width, height := tpl.Size()

	asm := assemble.NewAssembler(tpl).WithLogger(log)
	for i, blocks := range layout.Plan(entries, perPage, logo) {
		ov := overlay.NewPage(i+1, width, height, face)
		for _, b := range blocks {
			ov.Draw(b)
		}
		for _, w := range ov.Warnings() {
			log.Warn("overlay block omitted", "page", w.Page, "block", w.Block, "error", w.Err)
		}
		warnings = append(warnings, ov.Warnings()...)

		pw, err := asm.AddPage(ov)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, pw...)
	}

	doc, err := asm.Finish()
	if err != nil {
		return nil, nil, err
	}
	log.Info("document built",
		"items", len(items),
		"pages", doc.PageCount(),
		"full", cat != nil,
		"warnings", len(warnings))

	return doc.Bytes(), warnings, nil
}

// ============================================================================
// Helpers
// ============================================================================

func (p *Pipeline) dateText() string {
	d := p.options.date
	if d.IsZero() {
		d = time.Now()
	}
	return d.Format(p.options.config.Labels.DateFormat)
}

func (p *Pipeline) match(cat *catalog.Catalog, items []model.LineItem) []model.MatchResult {
	matches := cat.MatchAll(items)
	for i, m := range matches {
		p.options.log.Debug("item matched",
			"item", items[i].SequenceNumber,
			"score", m.Score,
			"fallback", m.Fallback,
			"catalog_row", m.MatchedDescription)
	}
	return matches
}

// entries turns items into the texts printed on each form.
func (p *Pipeline) entries(cat *catalog.Catalog, items []model.LineItem) ([]overlay.Entry, error) {
	date := p.dateText()
	entries := make([]overlay.Entry, 0, len(items))

	if cat == nil {
		for _, it := range items {
			entries = append(entries, overlay.Entry{
				Date:        date,
				Item:        strconv.Itoa(it.SequenceNumber),
				Description: it.Description,
			})
		}
		return entries, nil
	}

	records, err := costing.Build(date, items, p.match(cat, items))
	if err != nil {
		return nil, err
	}
	labor := p.options.config.Labels.Labor
	for _, r := range records {
		e := overlay.Entry{
			Date:        r.Date,
			Item:        strconv.Itoa(r.SequenceNumber),
			Description: r.Description,
			Tools:       r.ToolText,
			Materials:   r.MaterialText,
			Cost:        numeric.FormatThousands(r.AdoptedUnitCost),
		}
		if r.LaborNotApplicable {
			e.Labor = labor
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// loadTemplate resolves and reads the template PDF. An explicitly set
// template wins over the configured path.
func (p *Pipeline) loadTemplate() (*assemble.Template, error) {
	data := p.options.template
	if data == nil {
		path := p.options.config.Artifacts.Template
		if path == "" {
			return nil, model.MissingArtifact("template PDF")
		}
		var err error
		if data, err = readArtifact("template PDF", path); err != nil {
			return nil, err
		}
	}
	if len(data) > 0 && format.DetectFromMagic(data) != format.PDF {
		return nil, fmt.Errorf("%w: template is not a PDF", model.ErrInput)
	}
	return assemble.LoadTemplate(data)
}

// loadCatalog returns nil when no catalog is set or configured.
func (p *Pipeline) loadCatalog() (*catalog.Catalog, error) {
	data := p.options.catalog
	if data == nil {
		path := p.options.config.Artifacts.Catalog
		if path == "" {
			return nil, nil
		}
		var err error
		if data, err = readArtifact("catalog", path); err != nil {
			return nil, err
		}
	}

	r, err := openWorkbook("catalog", data)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(r.ActiveSheet(), p.options.config.MatchConfig())
	if err != nil {
		return nil, err
	}
	p.options.log.Debug("catalog loaded", "rows", len(cat.Entries()), "default", cat.Default().RawDescription)
	return cat, nil
}

func (p *Pipeline) requireCatalog() (*catalog.Catalog, error) {
	cat, err := p.loadCatalog()
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, model.MissingArtifact("catalog")
	}
	return cat, nil
}

// logo resolves the page logo: the one set on the pipeline, then the
// configured default. A configured logo that cannot be read is skipped
// with a warning.
func (p *Pipeline) logo() ([]byte, []Warning) {
	if p.options.logo != nil {
		return p.options.logo, nil
	}
	path := p.options.config.Artifacts.Logo
	if path == "" {
		return nil, nil
	}
	data, err := readArtifact("logo", path)
	if err != nil {
		p.options.log.Warn("default logo omitted", "path", path, "error", err)
		return nil, []Warning{{Block: "logo", Message: "default logo omitted", Err: err}}
	}
	return data, nil
}

// openWorkbook checks that data is an XLSX workbook and parses it.
func openWorkbook(name string, data []byte) (*xlsx.Reader, error) {
	if len(data) == 0 {
		return nil, model.MissingArtifact(name)
	}
	if f, err := format.DetectBytes(data); err != nil || f != format.XLSX {
		return nil, fmt.Errorf("%w: %s is not an XLSX workbook (detected %s)", model.ErrInput, name, f)
	}
	r, err := xlsx.OpenBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrInput, name, err)
	}
	if r.SheetCount() == 0 {
		return nil, fmt.Errorf("%w: %s has no worksheets", model.ErrInput, name)
	}
	return r, nil
}
