package model

// Field identifies a semantic column of the priced spreadsheet.
type Field int

const (
	// FieldSequence is the item number column (optional).
	FieldSequence Field = iota
	// FieldDescription is the free-text description column (required).
	FieldDescription
	// FieldUnit is the unit of measure column (optional).
	FieldUnit
	// FieldQuantity is the quantity column (optional).
	FieldQuantity
	// FieldTotalPrice is the total price column (required).
	FieldTotalPrice
)

// String returns the string representation of the field.
func (f Field) String() string {
	switch f {
	case FieldSequence:
		return "sequence_number"
	case FieldDescription:
		return "description"
	case FieldUnit:
		return "unit"
	case FieldQuantity:
		return "quantity"
	case FieldTotalPrice:
		return "total_price"
	default:
		return "unknown"
	}
}

// Fields lists every field in header scan order.
var Fields = []Field{FieldSequence, FieldDescription, FieldUnit, FieldQuantity, FieldTotalPrice}

// LineItem is one kept row of the priced spreadsheet.
type LineItem struct {
	SequenceNumber int
	Description    string
	Unit           string
	Quantity       float64 // always > 0
	TotalPrice     int64
}

// HeaderMapping records where the header row is and which column (0-indexed)
// holds each field found on it.
type HeaderMapping struct {
	Row     int // 0-indexed
	Columns map[Field]int
}

// Column returns the column mapped to f and whether the field is present.
func (h HeaderMapping) Column(f Field) (int, bool) {
	col, ok := h.Columns[f]
	return col, ok
}
