// Package extract locates the header row of a priced spreadsheet and turns
// the rows beneath it into line items.
//
// # Header detection
//
// The header row is not at a fixed position and its wording varies between
// spreadsheets. [Extractor.Locate] scans the first [Config.ScanLimit] rows of
// a worksheet and normalizes every cell (lower case, no accents, only letters
// and digits). The first row holding both a description header and a total
// price header wins. Sequence number, quantity and unit columns are mapped
// from the same row when present.
//
//	ex := extract.NewExtractor()
//	res, err := ex.Extract(sheet1, sheet2)
//	if errors.Is(err, model.ErrFormat) {
//	    // err lists the accepted header names
//	}
//
// # Row policy
//
// A row is kept only when it has a non-empty description and a total price
// that parses as a number. Other rows are skipped without error, since
// spreadsheets routinely end with subtotal, blank or notes rows. Skipped rows
// are counted in [Result.Dropped].
//
// When several worksheets are given, the first one yielding any kept row is
// used and the rest are not read.
package extract
