// Package font measures text set in the PDF standard-14 fonts.
//
// Overlay text is drawn with a standard font, which every PDF viewer
// provides without embedding, so the glyph metrics are known in advance.
// A [Face] pairs a font with a size and reports widths in points:
//
//	face, err := font.NewFace("Helvetica", 8)
//	w := face.Width("Pintura látex") // points
//
// Widths come from built-in tables in 1000ths of an em. Glyphs missing from
// a table are measured through their base letter after canonical
// decomposition ("á" as "a"), then through the regular weight of the same
// family, and finally with [DefaultWidth].
package font
