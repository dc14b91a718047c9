package desglose

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tsawler/desglose/config"
	"github.com/tsawler/desglose/internal/pdftest"
	"github.com/tsawler/desglose/model"
	"github.com/tsawler/desglose/xlsx"
	"github.com/tsawler/desglose/xlsx/xlsxtest"
)

var runDate = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

// itemsWorkbook has four rows; the third has no total and is dropped.
func itemsWorkbook(t *testing.T) []byte {
	t.Helper()
	return xlsxtest.Build(t,
		xlsxtest.Sheet{Name: "Notas", Rows: [][]any{{"Obra: escuela N° 12"}}},
		xlsxtest.Sheet{Name: "Presupuesto", Rows: [][]any{
			{"PRESUPUESTO GENERAL"},
			{},
			{"Descripción", "Unidad", "Cantidad", "Precio Total"},
			{"Pintura latex blanca", "m2", 10, "150.000"},
			{"Revoque grueso", "m2", 4, 85000},
			{"Limpieza final", "gl", 1, nil},
			{"Colocación de cerámica", "m2", 2, "45.001"},
		}},
	)
}

func catalogWorkbook(t *testing.T) []byte {
	t.Helper()
	return xlsxtest.Build(t, xlsxtest.Sheet{Name: "Catalogo", Rows: [][]any{
		{"Descripción", "Herramientas", "Materiales"},
		{"Default", "Herramientas menores", "Materiales varios"},
		{"Pintura", "Rodillo y pincel", "Pintura látex"},
	}})
}

func pdfPageCount(t *testing.T, data []byte) int {
	t.Helper()
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		t.Fatalf("failed to count pages: %v", err)
	}
	return n
}

func TestItems(t *testing.T) {
	items, warnings, err := Open(itemsWorkbook(t)).Items()
	if err != nil {
		t.Fatalf("failed to extract items: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i, it := range items {
		if it.SequenceNumber != i+1 {
			t.Errorf("item %d has sequence number %d", i, it.SequenceNumber)
		}
	}
	if items[0].TotalPrice != 150000 || items[1].TotalPrice != 85000 || items[2].Description != "Colocación de cerámica" {
		t.Errorf("unexpected items %+v", items)
	}

	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "1 rows") || !strings.Contains(warnings[0].Message, "Presupuesto") {
		t.Errorf("warnings = %v, want one dropped row warning", warnings)
	}
}

func TestMatches(t *testing.T) {
	matches, _, err := Open(itemsWorkbook(t)).Catalog(catalogWorkbook(t)).Matches()
	if err != nil {
		t.Fatalf("failed to match: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}

	for i, m := range matches {
		if m.Item.SequenceNumber != i+1 {
			t.Errorf("match %d pairs item %d", i, m.Item.SequenceNumber)
		}
	}
	if m := matches[0]; m.Item.Description != "Pintura latex blanca" || m.Score != 1.0 || m.ToolText != "Rodillo y pincel" || m.MaterialText != "Pintura látex" || m.Fallback {
		t.Errorf("pintura match = %+v", m)
	}
	if m := matches[1]; m.Score != 0 || !m.Fallback || m.ToolText != "Herramientas menores" {
		t.Errorf("fallback match = %+v", m)
	}
}

func TestRecords(t *testing.T) {
	records, _, err := Open(itemsWorkbook(t)).Catalog(catalogWorkbook(t)).Date(runDate).Records()
	if err != nil {
		t.Fatalf("failed to build records: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	r := records[0]
	if r.Date != "18/10/2026" || r.AdoptedUnitCost != 15000 || !r.LaborNotApplicable {
		t.Errorf("record 1 = %+v", r)
	}
	// 45001 / 2 = 22500.5, half to even.
	if records[2].AdoptedUnitCost != 22500 {
		t.Errorf("record 3 adopted cost = %d, want 22500", records[2].AdoptedUnitCost)
	}
}

func TestBuild_Full(t *testing.T) {
	pdf, warnings, err := Open(itemsWorkbook(t)).
		Template(pdftest.A4("ANALISIS DE PRECIO UNITARIO")).
		Catalog(catalogWorkbook(t)).
		Date(runDate).
		Build()
	if err != nil {
		t.Fatalf("failed to build: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	if n := pdfPageCount(t, pdf); n != 3 {
		t.Errorf("got %d pages, want 3", n)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want only the dropped row", warnings)
	}
}

func TestBuild_SimpleAndTwoPerPage(t *testing.T) {
	base := Open(itemsWorkbook(t)).Template(pdftest.A4("PLANILLA")).Date(runDate)

	two := base.TwoPerPage()
	pdf, _, err := two.Build()
	if err != nil {
		t.Fatalf("failed to build two per page: %v", err)
	}
	if n := pdfPageCount(t, pdf); n != 2 {
		t.Errorf("two per page: got %d pages, want 2", n)
	}

	// base is unaffected by the derived pipeline.
	pdf, _, err = base.Build()
	if err != nil {
		t.Fatalf("failed to build: %v", err)
	}
	if n := pdfPageCount(t, pdf); n != 3 {
		t.Errorf("one per page: got %d pages, want 3", n)
	}
}

func TestBuild_Logo(t *testing.T) {
	var logo bytes.Buffer
	if err := png.Encode(&logo, image.NewGray(image.Rect(0, 0, 60, 30))); err != nil {
		t.Fatalf("failed to encode logo: %v", err)
	}
	base := Open(itemsWorkbook(t)).Template(pdftest.A4("PLANILLA")).Date(runDate)

	_, warnings, err := base.Logo(logo.Bytes()).Build()
	if err != nil {
		t.Fatalf("failed to build with logo: %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v", warnings)
	}

	pdf, warnings, err := base.Logo([]byte("not an image")).Build()
	if err != nil {
		t.Fatalf("a broken logo must not fail the run: %v", err)
	}
	if n := pdfPageCount(t, pdf); n != 3 {
		t.Errorf("got %d pages, want 3", n)
	}
	omitted := 0
	for _, w := range warnings {
		if w.Block == "logo" {
			omitted++
		}
	}
	if omitted != 3 {
		t.Errorf("got %d logo warnings, want one per page: %v", omitted, warnings)
	}
}

func TestBuild_Errors(t *testing.T) {
	tpl := pdftest.A4("PLANILLA")
	noHeader := xlsxtest.Build(t, xlsxtest.Sheet{Name: "S", Rows: [][]any{{"a", "b"}, {"c", "d"}}})
	noDefault := xlsxtest.Build(t, xlsxtest.Sheet{Name: "C", Rows: [][]any{
		{"Descripción", "Herramientas", "Materiales"},
		{"Pintura", "Rodillo", "Látex"},
	}})

	tests := []struct {
		name string
		p    *Pipeline
		want error
	}{
		{"empty spreadsheet", Open(nil).Template(tpl), model.ErrMissingArtifact},
		{"not a workbook", Open([]byte("hello")).Template(tpl), model.ErrInput},
		{"missing template", Open(itemsWorkbook(t)), model.ErrMissingArtifact},
		{"template not a PDF", Open(itemsWorkbook(t)).Template([]byte("hello")), model.ErrInput},
		{"header not found", Open(noHeader).Template(tpl), model.ErrHeaderNotFound},
		{"no default catalog row", Open(itemsWorkbook(t)).Template(tpl).Catalog(noDefault), model.ErrNoDefaultCatalogRow},
		{"missing file", OpenFile(filepath.Join(t.TempDir(), "none.xlsx")).Template(tpl), model.ErrInput},
		{"items per page", Open(itemsWorkbook(t)).Template(tpl).ItemsPerPage(3), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdf, _, err := tt.p.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if pdf != nil {
				t.Error("no output may be returned on error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFormatErrorListsSynonyms(t *testing.T) {
	data := xlsxtest.Build(t, xlsxtest.Sheet{Name: "S", Rows: [][]any{{"foo"}}})
	_, _, err := Open(data).Items()
	if !errors.Is(err, model.ErrFormat) {
		t.Fatalf("error = %v, want format error", err)
	}
	if !strings.Contains(err.Error(), "precio total") {
		t.Errorf("message should list accepted headers: %v", err)
	}
}

func TestItems_OversizedSheet(t *testing.T) {
	rows := make([][]any, xlsx.MaxRows+1)
	rows[0] = []any{"Descripción", "Precio total"}
	rows[len(rows)-1] = []any{"Pintura", 1000}
	data := xlsxtest.Build(t, xlsxtest.Sheet{Name: "Presupuesto", Rows: rows})

	_, _, err := Open(data).Items()
	if !errors.Is(err, model.ErrInput) || !errors.Is(err, xlsx.ErrTooLarge) {
		t.Errorf("error = %v, want input error for an oversized sheet", err)
	}
}

func TestMatches_RequiresCatalog(t *testing.T) {
	_, _, err := Open(itemsWorkbook(t)).Matches()
	if !errors.Is(err, model.ErrMissingArtifact) {
		t.Errorf("error = %v", err)
	}
}

func TestConfiguredArtifacts(t *testing.T) {
	dir := t.TempDir()
	tplPath := filepath.Join(dir, "plantilla.pdf")
	catPath := filepath.Join(dir, "catalogo.xlsx")
	if err := os.WriteFile(tplPath, pdftest.A4("PLANILLA"), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
	if err := os.WriteFile(catPath, catalogWorkbook(t), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	cfg := config.Default()
	cfg.Artifacts.Template = tplPath
	cfg.Artifacts.Catalog = catPath
	cfg.Artifacts.Logo = filepath.Join(dir, "missing.png")
	cfg.ItemsPerPage = 2

	core, logs := observer.New(zap.DebugLevel)
	pdf, warnings, err := Open(itemsWorkbook(t)).Config(cfg).Logger(zap.New(core)).Date(runDate).Build()
	if err != nil {
		t.Fatalf("failed to build: %v", err)
	}
	if n := pdfPageCount(t, pdf); n != 2 {
		t.Errorf("got %d pages, want 2", n)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want dropped row and default logo", warnings)
	}
	if logs.FilterMessage("document built").Len() != 1 {
		t.Error("expected a document built log entry")
	}
	if logs.FilterMessage("default logo omitted").Len() != 1 {
		t.Error("expected a warning about the default logo")
	}
}

func TestConfig_Invalid(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.Threshold = 2
	_, _, err := Open(itemsWorkbook(t)).Config(cfg).Items()
	if err == nil || !strings.Contains(err.Error(), "threshold") {
		t.Errorf("error = %v", err)
	}
}

func TestMust(t *testing.T) {
	items := Must(Open(itemsWorkbook(t)).Items())
	if len(items) != 3 {
		t.Errorf("got %d items", len(items))
	}

	defer func() {
		if recover() == nil {
			t.Error("Must should panic on error")
		}
	}()
	Must(Open(nil).Items())
}
