// Package assemble builds the output PDF from a template page and overlay
// pages.
//
// The template is read once and trimmed to its first page. It is never
// written to: every output page starts as a [Template.Clone], an
// independent copy of the template bytes. A page moves through three
// states:
//
//	Cloned -> Overlaid -> Appended
//
// [Page.Merge] stamps the operations of an overlay page onto the clone and
// [Assembler.Append] adds the clone to the output sequence. An appended
// page can no longer be merged into, and a page cannot be appended twice.
// [Assembler.Finish] concatenates the pages into a [Document].
//
//	tpl, err := assemble.LoadTemplate(pdfBytes)
//	asm := assemble.NewAssembler(tpl)
//	for _, ov := range overlays {
//	    warnings, err := asm.AddPage(ov)
//	}
//	doc, err := asm.Finish()
//
// Stamping and concatenation use pdfcpu. Images that pdfcpu cannot stamp
// are omitted with a warning; every other failure is a render error.
package assemble
