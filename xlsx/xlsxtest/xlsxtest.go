// Package xlsxtest builds small XLSX workbooks in memory for tests.
//
//	data := xlsxtest.Build(t, xlsxtest.Sheet{
//	    Name: "Items",
//	    Rows: [][]any{
//	        {"Descripción", "Precio total"},
//	        {"Pintura látex", "1.500.000"},
//	    },
//	})
package xlsxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/tsawler/desglose/xlsx"
)

// Sheet is one worksheet. Row cells may be nil (skipped), string, float64,
// int or bool.
type Sheet struct {
	Name string
	Rows [][]any
}

// Workbook describes a whole workbook.
type Workbook struct {
	Sheets []Sheet
	// ActiveTab is written to bookViews when non-zero.
	ActiveTab int
	// SharedStrings stores text through xl/sharedStrings.xml instead of
	// inline strings.
	SharedStrings bool
}

// Build returns the bytes of a workbook holding sheets.
func Build(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()
	return Workbook{Sheets: sheets}.Bytes(t)
}

// Bytes serializes the workbook.
func (w Workbook) Bytes(t testing.TB) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var shared []string
	sharedIdx := map[string]int{}
	sheetXML := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		sheetXML[i] = w.worksheet(s, &shared, sharedIdx)
	}

	var types strings.Builder
	types.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>`)
	for i := range w.Sheets {
		fmt.Fprintf(&types, "\n  <Override PartName=\"/xl/worksheets/sheet%d.xml\" ContentType=\"application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml\"/>", i+1)
	}
	types.WriteString("\n</Types>")
	write(t, zw, "[Content_Types].xml", types.String())

	write(t, zw, "_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>
</Relationships>`)

	var rels strings.Builder
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i := range w.Sheets {
		fmt.Fprintf(&rels, "\n  <Relationship Id=\"rId%d\" Type=\"http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet\" Target=\"worksheets/sheet%d.xml\"/>", i+1, i+1)
	}
	if len(shared) > 0 {
		fmt.Fprintf(&rels, "\n  <Relationship Id=\"rId%d\" Type=\"http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings\" Target=\"sharedStrings.xml\"/>", len(w.Sheets)+1)
	}
	rels.WriteString("\n</Relationships>")
	write(t, zw, "xl/_rels/workbook.xml.rels", rels.String())

	var wb strings.Builder
	wb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`)
	if w.ActiveTab > 0 {
		fmt.Fprintf(&wb, "\n<bookViews><workbookView activeTab=\"%d\"/></bookViews>", w.ActiveTab)
	}
	wb.WriteString("\n<sheets>")
	for i, s := range w.Sheets {
		fmt.Fprintf(&wb, "\n  <sheet name=\"%s\" sheetId=\"%d\" r:id=\"rId%d\"/>", escape(s.Name), i+1, i+1)
	}
	wb.WriteString("\n</sheets>\n</workbook>")
	write(t, zw, "xl/workbook.xml", wb.String())

	if len(shared) > 0 {
		var ss strings.Builder
		fmt.Fprintf(&ss, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="%d" uniqueCount="%d">`, len(shared), len(shared))
		for _, s := range shared {
			fmt.Fprintf(&ss, "\n  <si><t xml:space=\"preserve\">%s</t></si>", escape(s))
		}
		ss.WriteString("\n</sst>")
		write(t, zw, "xl/sharedStrings.xml", ss.String())
	}

	for i, content := range sheetXML {
		write(t, zw, fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1), content)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func (w Workbook) worksheet(s Sheet, shared *[]string, sharedIdx map[string]int) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>`)
	for r, row := range s.Rows {
		fmt.Fprintf(&sb, "\n  <row r=\"%d\">", r+1)
		for c, v := range row {
			ref := xlsx.CellRef(c, r)
			switch val := v.(type) {
			case nil:
			case string:
				if w.SharedStrings {
					idx, ok := sharedIdx[val]
					if !ok {
						idx = len(*shared)
						sharedIdx[val] = idx
						*shared = append(*shared, val)
					}
					fmt.Fprintf(&sb, "<c r=\"%s\" t=\"s\"><v>%d</v></c>", ref, idx)
				} else {
					fmt.Fprintf(&sb, "<c r=\"%s\" t=\"inlineStr\"><is><t xml:space=\"preserve\">%s</t></is></c>", ref, escape(val))
				}
			case float64:
				fmt.Fprintf(&sb, "<c r=\"%s\"><v>%s</v></c>", ref, strconv.FormatFloat(val, 'g', -1, 64))
			case int:
				fmt.Fprintf(&sb, "<c r=\"%s\"><v>%d</v></c>", ref, val)
			case bool:
				b := 0
				if val {
					b = 1
				}
				fmt.Fprintf(&sb, "<c r=\"%s\" t=\"b\"><v>%d</v></c>", ref, b)
			default:
				panic(fmt.Sprintf("xlsxtest: unsupported cell type %T", v))
			}
		}
		sb.WriteString("</row>")
	}
	sb.WriteString("\n</sheetData>\n</worksheet>")
	return sb.String()
}

func write(t testing.TB, zw *zip.Writer, name, content string) {
	t.Helper()
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("failed to create %s in zip: %v", name, err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
