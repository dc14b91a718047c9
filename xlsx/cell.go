package xlsx

import (
	"fmt"
	"strconv"
	"strings"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	// CellTypeString indicates a string value.
	CellTypeString CellType = iota
	// CellTypeNumber indicates a numeric value.
	CellTypeNumber
	// CellTypeBoolean indicates a boolean value.
	CellTypeBoolean
	// CellTypeFormula indicates a formula.
	CellTypeFormula
	// CellTypeError indicates an error value.
	CellTypeError
	// CellTypeEmpty indicates an empty cell.
	CellTypeEmpty
)

// String returns the string representation of the cell type.
func (t CellType) String() string {
	switch t {
	case CellTypeString:
		return "string"
	case CellTypeNumber:
		return "number"
	case CellTypeBoolean:
		return "boolean"
	case CellTypeFormula:
		return "formula"
	case CellTypeError:
		return "error"
	case CellTypeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Cell represents a cell in a worksheet.
type Cell struct {
	Value    string   // The cell's display value
	RawValue string   // The raw value from XML
	Type     CellType // The type of data
}

// Native returns the cell value in its stored type: float64 for numbers,
// bool for booleans, string for text and nil for empty, error and
// uncached formula cells. A number that does not parse is returned as text.
func (c *Cell) Native() any {
	switch c.Type {
	case CellTypeNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.RawValue), 64)
		if err != nil {
			return c.Value
		}
		return f
	case CellTypeBoolean:
		return c.Value == "TRUE"
	case CellTypeString:
		if c.Value == "" {
			return nil
		}
		return c.Value
	default:
		return nil
	}
}

// Sheet represents a worksheet. Rows are ragged: each is as wide as its
// last non-empty cell, and rows without one are nil.
type Sheet struct {
	Name   string
	Index  int
	Rows   [][]Cell
	MaxCol int // Maximum column index (0-indexed), -1 for an empty sheet
}

// Cell returns the cell at the given row and column (0-indexed).
// Returns nil if the cell doesn't exist.
func (s *Sheet) Cell(row, col int) *Cell {
	if row < 0 || row >= len(s.Rows) {
		return nil
	}
	if col < 0 || col >= len(s.Rows[row]) {
		return nil
	}
	return &s.Rows[row][col]
}

// Value returns the native value of the cell at row, col, or nil when the
// cell does not exist.
func (s *Sheet) Value(row, col int) any {
	c := s.Cell(row, col)
	if c == nil {
		return nil
	}
	return c.Native()
}

// RowCount returns the number of rows in the sheet.
func (s *Sheet) RowCount() int {
	return len(s.Rows)
}

// ColCount returns the maximum number of columns in any row.
func (s *Sheet) ColCount() int {
	return s.MaxCol + 1
}

// ParseCellRef parses a cell reference like "A1" or "AA100" into column and row indices (0-indexed).
func ParseCellRef(ref string) (col, row int, err error) {
	if ref == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}

	// Find where letters end and numbers begin
	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}

	if i == 0 {
		return 0, 0, fmt.Errorf("invalid cell reference: no column letters")
	}
	if i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference: no row number")
	}

	colPart := ref[:i]
	rowPart := ref[i:]

	// Parse column (A=0, B=1, ..., Z=25, AA=26, etc.)
	col = ColumnToIndex(colPart)
	if col < 0 {
		return 0, 0, fmt.Errorf("invalid column: %s", colPart)
	}

	// Parse row (1-indexed in Excel, convert to 0-indexed)
	rowNum, err := strconv.Atoi(rowPart)
	if err != nil || rowNum < 1 {
		return 0, 0, fmt.Errorf("invalid row: %s", rowPart)
	}
	row = rowNum - 1

	return col, row, nil
}

// maxColumns is the column count of a worksheet, A through XFD.
const maxColumns = 16384

// ColumnToIndex converts a column letter(s) to a 0-indexed column number.
// A=0, B=1, ..., Z=25, AA=26, AB=27, etc. It returns -1 for invalid letters
// and for columns past XFD.
func ColumnToIndex(col string) int {
	col = strings.ToUpper(col)
	result := 0
	for _, c := range col {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
		if result > maxColumns {
			return -1
		}
	}
	return result - 1
}

// IndexToColumn converts a 0-indexed column number to column letter(s).
// 0=A, 1=B, ..., 25=Z, 26=AA, 27=AB, etc.
func IndexToColumn(index int) string {
	if index < 0 {
		return ""
	}

	result := ""
	index++ // Convert to 1-indexed for calculation
	for index > 0 {
		index-- // Adjust for 0-based modulo
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

// CellRef creates a cell reference string from column and row indices (0-indexed).
func CellRef(col, row int) string {
	return fmt.Sprintf("%s%d", IndexToColumn(col), row+1)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
