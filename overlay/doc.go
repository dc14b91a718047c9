// Package overlay renders positioned text and image blocks onto transient
// overlay pages.
//
// A [Layout] turns item texts into [model.OverlayBlock] values for each
// output page ([Layout.Plan]). A [Page] then draws the blocks: text is
// wrapped greedily to the block width with [Wrap] and cut to the block's
// line limit, images are decoded and fitted into their box. The result is a
// list of [Op] values that the assemble package stamps onto a template clone.
//
//	face, _ := font.NewFace("Helvetica", 8)
//	page := overlay.NewPage(1, overlay.A4Width, overlay.A4Height, face)
//	for _, b := range blocks {
//	    page.Draw(b)
//	}
//	ops, warnings := page.Ops(), page.Warnings()
//
// An image that fails to decode is omitted and reported through
// [Page.Warnings]; drawing never fails.
package overlay
