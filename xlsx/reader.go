// Package xlsx provides XLSX (Office Open XML Spreadsheet) workbook parsing.
//
// The whole workbook is decoded in memory. Cells keep both their display text
// and their native type so callers can tell a numeric 1234.5 from the text
// "1.234,5":
//
//	r, err := xlsx.OpenBytes(data)
//	if err != nil {
//	    // handle error
//	}
//	for _, sheet := range r.Sheets() {
//	    for _, row := range sheet.Rows {
//	        for _, cell := range row {
//	            v := cell.Native() // nil, string, float64 or bool
//	        }
//	    }
//	}
package xlsx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Reader provides access to XLSX workbook content.
type Reader struct {
	zipReader     *zip.Reader
	workbook      *workbookXML
	sharedStrings []string
	rels          *relationshipsXML
	sheets        []*Sheet
	sheetRels     map[string]string // RID -> target path
}

// Open reads an XLSX file from disk.
func Open(filename string) (*Reader, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes parses an XLSX workbook held in memory.
func OpenBytes(data []byte) (*Reader, error) {
	return NewReader(bytes.NewReader(data), int64(len(data)))
}

// NewReader parses an XLSX workbook from r, which must hold size bytes.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	rd := &Reader{
		zipReader: zr,
		sheetRels: make(map[string]string),
	}

	// Validate required files exist
	if err := rd.validate(); err != nil {
		return nil, err
	}

	// Parse relationships first
	if err := rd.parseRelationships(); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}

	// Parse workbook to get sheet list
	if err := rd.parseWorkbook(); err != nil {
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}

	if err := rd.parseSharedStrings(); err != nil {
		return nil, fmt.Errorf("parsing shared strings: %w", err)
	}

	if err := rd.parseWorksheets(); err != nil {
		return nil, fmt.Errorf("parsing worksheets: %w", err)
	}

	return rd, nil
}

// validate checks that required XLSX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"xl/workbook.xml",
	}

	fileMap := make(map[string]bool)
	for _, f := range r.zipReader.File {
		fileMap[f.Name] = true
	}

	for _, name := range required {
		if !fileMap[name] {
			return fmt.Errorf("missing required file: %s", name)
		}
	}

	return nil
}

var errFileNotFound = errors.New("file not found")

// getFileContent reads the content of a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	for _, f := range r.zipReader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
			if err != nil {
				return nil, err
			}
			if len(data) > maxPartSize {
				return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, maxPartSize)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errFileNotFound, name)
}

// parseRelationships parses the workbook relationships file.
func (r *Reader) parseRelationships() error {
	data, err := r.getFileContent("xl/_rels/workbook.xml.rels")
	if err != nil {
		// Try alternate location
		data, err = r.getFileContent("xl/_rels/workbook.rels")
		if err != nil {
			return nil // Relationships are optional
		}
	}

	r.rels = &relationshipsXML{}
	if err := xml.Unmarshal(data, r.rels); err != nil {
		return err
	}

	for _, rel := range r.rels.Relationship {
		r.sheetRels[rel.ID] = rel.Target
	}

	return nil
}

// parseWorkbook parses the main workbook file.
func (r *Reader) parseWorkbook() error {
	data, err := r.getFileContent("xl/workbook.xml")
	if err != nil {
		return err
	}

	r.workbook = &workbookXML{}
	return xml.Unmarshal(data, r.workbook)
}

// parseSharedStrings parses the shared strings table. The table is
// optional; inline-string workbooks have none.
func (r *Reader) parseSharedStrings() error {
	data, err := r.getFileContent("xl/sharedStrings.xml")
	if errors.Is(err, errFileNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return err
	}

	r.sharedStrings = make([]string, len(sst.SI))
	for i, si := range sst.SI {
		r.sharedStrings[i] = joinRuns(si.T, si.R)
	}

	return nil
}

// joinRuns returns plain text, or the concatenated rich text runs when the
// plain text is empty.
func joinRuns(plain string, runs []rXML) string {
	if plain != "" || len(runs) == 0 {
		return plain
	}
	var text strings.Builder
	for _, run := range runs {
		text.WriteString(run.T)
	}
	return text.String()
}

// parseWorksheets parses all worksheet files in workbook order.
func (r *Reader) parseWorksheets() error {
	if r.workbook == nil {
		return fmt.Errorf("workbook not parsed")
	}

	r.sheets = make([]*Sheet, 0, len(r.workbook.Sheets.Sheet))

	for i, sheetRef := range r.workbook.Sheets.Sheet {
		target := r.sheetRels[sheetRef.RID]
		if target == "" {
			target = fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		}

		// Normalize path
		if !strings.HasPrefix(target, "xl/") && !strings.HasPrefix(target, "/") {
			target = "xl/" + target
		}
		target = strings.TrimPrefix(target, "/")

		data, err := r.getFileContent(target)
		if errors.Is(err, ErrTooLarge) {
			return err
		}
		if err != nil {
			continue // Skip sheets we can't read
		}

		sheet, err := r.parseWorksheet(data, sheetRef.Name, len(r.sheets))
		if errors.Is(err, ErrTooLarge) {
			return err
		}
		if err != nil {
			continue // Skip sheets that fail to parse
		}

		r.sheets = append(r.sheets, sheet)
	}

	if len(r.sheets) == 0 {
		return fmt.Errorf("no worksheets found")
	}

	return nil
}

// Worksheet size limits. Only cells holding a value or a formula count
// towards them.
const (
	MaxRows  = 100_000
	MaxCells = 2_000_000
)

// maxPartSize caps the uncompressed size of one file in the archive.
const maxPartSize = 256 << 20

// ErrTooLarge is returned for worksheets beyond MaxRows or MaxCells and for
// archive files beyond 256 MiB uncompressed.
var ErrTooLarge = errors.New("workbook too large")

// parseWorksheet parses a single worksheet. Each row is as wide as its last
// cell holding a value or a formula; rows without one are nil.
func (r *Reader) parseWorksheet(data []byte, name string, index int) (*Sheet, error) {
	var ws worksheetXML
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}

	sheet := &Sheet{
		Name:   name,
		Index:  index,
		MaxCol: -1,
	}

	// First pass: find row numbers and widths. Rows without an r attribute
	// follow the previous row, cells without one follow the previous cell.
	type extent struct{ row, width int }
	extents := make([]extent, len(ws.SheetData.Rows))
	maxRow, total := 0, 0
	for i, row := range ws.SheetData.Rows {
		rowNum := row.R
		if rowNum <= 0 {
			rowNum = 1
			if i > 0 {
				rowNum = extents[i-1].row + 1
			}
		}
		extents[i].row = rowNum

		col := -1
		for _, cell := range row.Cells {
			col = cellColumn(cell.R, col)
			if cell.V != "" || cell.F != "" || cell.Is != nil {
				extents[i].width = max(extents[i].width, col+1)
			}
		}
		if extents[i].width == 0 {
			continue
		}
		if rowNum > MaxRows {
			return nil, fmt.Errorf("%w: sheet %q has a cell in row %d (limit %d)", ErrTooLarge, name, rowNum, MaxRows)
		}
		if total += extents[i].width; total > MaxCells {
			return nil, fmt.Errorf("%w: sheet %q spans more than %d cells", ErrTooLarge, name, MaxCells)
		}
		maxRow = max(maxRow, rowNum)
		sheet.MaxCol = max(sheet.MaxCol, extents[i].width-1)
	}

	sheet.Rows = make([][]Cell, maxRow)

	// Second pass: populate cells
	for i, row := range ws.SheetData.Rows {
		ext := extents[i]
		if ext.width == 0 {
			continue
		}
		cells := make([]Cell, ext.width)
		for j := range cells {
			cells[j].Type = CellTypeEmpty
		}
		// A repeated row number replaces the earlier row.
		sheet.Rows[ext.row-1] = cells

		col := -1
		for _, cellXML := range row.Cells {
			col = cellColumn(cellXML.R, col)
			if col < 0 || col >= len(cells) {
				continue
			}

			cell := &cells[col]
			cell.RawValue = cellXML.V

			switch cellXML.T {
			case "s": // Shared string
				cell.Type = CellTypeString
				idx, err := strconv.Atoi(cellXML.V)
				if err == nil && idx >= 0 && idx < len(r.sharedStrings) {
					cell.Value = r.sharedStrings[idx]
				}
			case "b": // Boolean
				cell.Type = CellTypeBoolean
				if cellXML.V == "1" {
					cell.Value = "TRUE"
				} else {
					cell.Value = "FALSE"
				}
			case "e": // Error
				cell.Type = CellTypeError
				cell.Value = cellXML.V
			case "str": // Formula string result
				cell.Type = CellTypeString
				cell.Value = cellXML.V
			case "inlineStr":
				cell.Type = CellTypeString
				if cellXML.Is != nil {
					cell.Value = joinRuns(cellXML.Is.T, cellXML.Is.R)
				}
			default: // Number or empty
				if cellXML.V != "" {
					cell.Type = CellTypeNumber
					cell.Value = cellXML.V
				} else if cellXML.F != "" {
					cell.Type = CellTypeFormula // no cached value
				}
			}
		}
	}

	return sheet, nil
}

// cellColumn returns the column of a cell reference, or prev+1 when the
// reference is missing or malformed.
func cellColumn(ref string, prev int) int {
	if ref == "" {
		return prev + 1
	}
	col, _, err := ParseCellRef(ref)
	if err != nil {
		return prev + 1
	}
	return col
}

// SheetCount returns the number of sheets in the workbook.
func (r *Reader) SheetCount() int {
	return len(r.sheets)
}

// Sheets returns all readable sheets in workbook order.
func (r *Reader) Sheets() []*Sheet {
	return r.sheets
}

// ActiveSheet returns the sheet the workbook opens on, falling back to the
// first sheet when the workbook does not record one.
func (r *Reader) ActiveSheet() *Sheet {
	active := 0
	if r.workbook.BookViews != nil && len(r.workbook.BookViews.WorkbookView) > 0 {
		active = r.workbook.BookViews.WorkbookView[0].ActiveTab
	}
	if active < 0 || active >= len(r.sheets) {
		active = 0
	}
	return r.sheets[active]
}
