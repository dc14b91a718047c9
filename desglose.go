// Package desglose turns a priced spreadsheet into a PDF with one cost
// breakdown form per line item, stamped onto a template page.
//
// Basic usage:
//
//	pdf, warnings, err := desglose.Open(xlsxBytes).
//	    Template(templateBytes).
//	    Date(time.Now()).
//	    Build()
//	if err != nil {
//	    // errors.Is(err, model.ErrFormat), model.ErrInput, ...
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", desglose.FormatWarnings(warnings))
//	}
//
// With a catalog, every item is matched to tools and materials and the
// full unit cost analysis form is printed:
//
//	pdf, _, err := desglose.Open(xlsxBytes).
//	    Template(templateBytes).
//	    Catalog(catalogBytes).
//	    Logo(pngBytes).
//	    TwoPerPage().
//	    Build()
//
// The intermediate results are available on their own:
//
//	items, _, err := desglose.OpenFile("presupuesto.xlsx").Items()
//	matches, _, err := desglose.OpenFile("presupuesto.xlsx").CatalogFile("catalogo.xlsx").Matches()
package desglose

import (
	"fmt"
	"os"

	"github.com/tsawler/desglose/model"
)

// Match is a line item with its catalog match.
type Match struct {
	Item model.LineItem
	model.MatchResult
}

// Warning is a non-fatal problem met during a run.
type Warning = model.Warning

// FormatWarnings joins warnings into a multi-line string.
func FormatWarnings(warnings []Warning) string {
	return model.FormatWarnings(warnings)
}

// Open starts a pipeline over an XLSX workbook held in memory.
func Open(xlsx []byte) *Pipeline {
	return &Pipeline{
		input:   xlsx,
		options: defaultOptions(),
	}
}

// OpenFile starts a pipeline over an XLSX file. A read failure is reported
// by the terminal operation.
func OpenFile(filename string) *Pipeline {
	data, err := readArtifact("spreadsheet", filename)
	return &Pipeline{
		input:   data,
		options: defaultOptions(),
		err:     err,
	}
}

// Must is a helper that wraps a call returning (T, []Warning, error) and
// panics if the error is non-nil. Warnings are discarded.
//
// Example:
//
//	pdf := desglose.Must(desglose.Open(data).Template(tpl).Build())
func Must[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// readArtifact reads a named input file. A missing or unreadable file is an
// input error.
func readArtifact(name, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", model.ErrMissingArtifact, name, path, err)
	}
	return data, nil
}
