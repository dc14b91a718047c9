package xlsx

import "testing"

func TestParseCellRef(t *testing.T) {
	tests := []struct {
		ref     string
		wantCol int
		wantRow int
		wantErr bool
	}{
		{"A1", 0, 0, false},
		{"B1", 1, 0, false},
		{"Z1", 25, 0, false},
		{"AA1", 26, 0, false},
		{"AB1", 27, 0, false},
		{"AZ1", 51, 0, false},
		{"BA1", 52, 0, false},
		{"A10", 0, 9, false},
		{"C100", 2, 99, false},
		{"AA100", 26, 99, false},
		{"XFD1048576", 16383, 1048575, false}, // Max Excel cell
		{"", 0, 0, true},
		{"1", 0, 0, true},
		{"A", 0, 0, true},
		{"A0", 0, 0, true},
		{"A-1", 0, 0, true},
		{"XFE1", 0, 0, true}, // Past the last column
		{"ZZZZZZZZZZZZZZZ1", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			col, row, err := ParseCellRef(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseCellRef(%q) expected error, got col=%d, row=%d", tt.ref, col, row)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseCellRef(%q) unexpected error: %v", tt.ref, err)
				return
			}
			if col != tt.wantCol {
				t.Errorf("ParseCellRef(%q) col = %d, want %d", tt.ref, col, tt.wantCol)
			}
			if row != tt.wantRow {
				t.Errorf("ParseCellRef(%q) row = %d, want %d", tt.ref, row, tt.wantRow)
			}
		})
	}
}

func TestColumnToIndex(t *testing.T) {
	tests := []struct {
		col  string
		want int
	}{
		{"A", 0},
		{"B", 1},
		{"Z", 25},
		{"AA", 26},
		{"AB", 27},
		{"AZ", 51},
		{"BA", 52},
		{"ZZ", 701},
		{"AAA", 702},
		{"XFD", 16383}, // Excel max column
		{"a", 0},       // Lowercase
		{"aa", 26},
	}

	for _, tt := range tests {
		t.Run(tt.col, func(t *testing.T) {
			got := ColumnToIndex(tt.col)
			if got != tt.want {
				t.Errorf("ColumnToIndex(%q) = %d, want %d", tt.col, got, tt.want)
			}
		})
	}
}

func TestCellRef(t *testing.T) {
	tests := []struct {
		col  int
		row  int
		want string
	}{
		{0, 0, "A1"},
		{25, 0, "Z1"},
		{26, 0, "AA1"},
		{701, 9, "ZZ10"},
		{702, 99, "AAA100"},
		{16383, 1048575, "XFD1048576"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := CellRef(tt.col, tt.row)
			if got != tt.want {
				t.Errorf("CellRef(%d, %d) = %q, want %q", tt.col, tt.row, got, tt.want)
			}
			if col, row, err := ParseCellRef(got); err != nil || col != tt.col || row != tt.row {
				t.Errorf("ParseCellRef(%q) = %d, %d, %v", got, col, row, err)
			}
		})
	}
	if IndexToColumn(-1) != "" {
		t.Error("IndexToColumn(-1) should be empty")
	}
}

func TestCellType_String(t *testing.T) {
	tests := []struct {
		ct   CellType
		want string
	}{
		{CellTypeString, "string"},
		{CellTypeNumber, "number"},
		{CellTypeBoolean, "boolean"},
		{CellTypeFormula, "formula"},
		{CellTypeError, "error"},
		{CellTypeEmpty, "empty"},
		{CellType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ct.String(); got != tt.want {
				t.Errorf("CellType(%d).String() = %q, want %q", tt.ct, got, tt.want)
			}
		})
	}
}

func TestCell_Native(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want any
	}{
		{"number", Cell{Type: CellTypeNumber, RawValue: "1234.5", Value: "1234.5"}, 1234.5},
		{"bad number", Cell{Type: CellTypeNumber, RawValue: "x", Value: "x"}, "x"},
		{"string", Cell{Type: CellTypeString, Value: "1.234,5"}, "1.234,5"},
		{"empty string", Cell{Type: CellTypeString}, nil},
		{"boolean", Cell{Type: CellTypeBoolean, Value: "TRUE"}, true},
		{"error", Cell{Type: CellTypeError, Value: "#DIV/0!"}, nil},
		{"formula without cache", Cell{Type: CellTypeFormula}, nil},
		{"empty", Cell{Type: CellTypeEmpty}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.Native(); got != tt.want {
				t.Errorf("Native() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSheet_Value(t *testing.T) {
	s := &Sheet{MaxCol: 1, Rows: [][]Cell{
		{{Type: CellTypeString, Value: "a"}, {Type: CellTypeNumber, RawValue: "2", Value: "2"}},
		nil,
		{{Type: CellTypeString, Value: "c"}},
	}}

	if s.RowCount() != 3 || s.ColCount() != 2 {
		t.Errorf("size = %d x %d, want 3 x 2", s.RowCount(), s.ColCount())
	}
	if got := s.Value(0, 1); got != 2.0 {
		t.Errorf("Value(0,1) = %#v, want 2.0", got)
	}
	if got := s.Value(1, 0); got != nil {
		t.Errorf("Value(1,0) in an empty row = %#v, want nil", got)
	}
	if got := s.Value(2, 1); got != nil {
		t.Errorf("Value(2,1) past a short row = %#v, want nil", got)
	}
	if got := s.Value(0, 5); got != nil {
		t.Errorf("Value(0,5) = %#v, want nil", got)
	}
	if s.Cell(-1, 0) != nil || s.Cell(3, 0) != nil {
		t.Error("expected nil for out-of-range rows")
	}
}
