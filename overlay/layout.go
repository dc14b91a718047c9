package overlay

import (
	"github.com/tsawler/desglose/model"
)

// A4 page size in points.
const (
	A4Width  = 595.2756
	A4Height = 841.8898
)

// Box positions a text block. Y is the baseline of the first line.
type Box struct {
	X, Y     float64
	MaxWidth float64 // 0 disables wrapping
	MaxLines int     // 0 keeps every line
}

// ImageBox positions an image block by its lower-left corner.
type ImageBox struct {
	X, Y          float64
	Width, Height float64
}

// Entry is the text printed for one item. Empty fields are not drawn.
type Entry struct {
	Date        string
	Item        string
	Description string
	Tools       string
	Labor       string
	Materials   string
	Cost        string
}

// Layout places entries on template pages. A page holds up to one entry per
// slot; every block of the entry in slot i is moved by Slots[i] and then by
// Shift.
type Layout struct {
	Font       string
	FontSize   float64
	LineHeight float64
	MaxChars   int // per text block, 0 for no limit

	Date        Box
	Item        Box
	Description Box
	Tools       Box
	Labor       Box
	Materials   Box
	Cost        Box

	// Logo is drawn once per page.
	Logo ImageBox

	Slots []model.Point
	Shift model.Point
}

// DefaultSimpleLayout returns the header-only layout: date, item number,
// description and a logo in the top right corner of an A4 page.
func DefaultSimpleLayout() Layout {
	const header = 742.0
	return Layout{
		Font:        "Helvetica",
		FontSize:    8,
		LineHeight:  10,
		Date:        Box{X: 62, Y: header},
		Item:        Box{X: 150, Y: header},
		Description: Box{X: 210, Y: header, MaxWidth: A4Width - 210 - 40, MaxLines: 3},
		Logo:        ImageBox{X: A4Width - 40 - 72, Y: A4Height - 40 - 72, Width: 72, Height: 72},
		Slots:       []model.Point{{X: 0, Y: 0}, {X: 0, Y: -395}},
	}
}

// DefaultFullLayout returns the unit cost analysis layout with tools, labor,
// materials and adopted cost boxes, laid out for two forms per A4 page.
func DefaultFullLayout() Layout {
	return Layout{
		Font:        "Helvetica",
		FontSize:    8,
		LineHeight:  10,
		Date:        Box{X: 55, Y: 785},
		Item:        Box{X: 250, Y: 785},
		Description: Box{X: 305, Y: 785, MaxWidth: 235, MaxLines: 3},
		Tools:       Box{X: 70, Y: 625, MaxWidth: 470, MaxLines: 3},
		Labor:       Box{X: 70, Y: 545, MaxWidth: 470, MaxLines: 2},
		Materials:   Box{X: 70, Y: 445, MaxWidth: 470, MaxLines: 3},
		Cost:        Box{X: 450, Y: 415},
		Logo:        ImageBox{X: 430, Y: 812, Width: 140, Height: 45},
		Slots:       []model.Point{{X: 0, Y: 0}, {X: 0, Y: -395}},
		Shift:       model.Point{X: 0, Y: -18},
	}
}

// PerPage clamps n to the number of slots the layout offers.
func (l Layout) PerPage(n int) int {
	slots := max(len(l.Slots), 1)
	return min(max(n, 1), slots)
}

func (l Layout) slot(i int) model.Point {
	if i < len(l.Slots) {
		return l.Slots[i]
	}
	return model.Point{}
}

// Blocks returns the text blocks of e placed in slot.
func (l Layout) Blocks(e Entry, slot int) []model.OverlayBlock {
	off := l.slot(slot).Add(l.Shift)
	fields := []struct {
		name string
		box  Box
		text string
	}{
		{"date", l.Date, e.Date},
		{"item", l.Item, e.Item},
		{"description", l.Description, e.Description},
		{"tools", l.Tools, e.Tools},
		{"labor", l.Labor, e.Labor},
		{"materials", l.Materials, e.Materials},
		{"cost", l.Cost, e.Cost},
	}

	var blocks []model.OverlayBlock
	for _, f := range fields {
		if f.text == "" {
			continue
		}
		blocks = append(blocks, model.OverlayBlock{
			Name:       f.name,
			Kind:       model.BlockText,
			X:          f.box.X + off.X,
			Y:          f.box.Y + off.Y,
			MaxWidth:   f.box.MaxWidth,
			MaxLines:   f.box.MaxLines,
			MaxChars:   l.MaxChars,
			FontSize:   l.FontSize,
			LineHeight: l.LineHeight,
			Text:       f.text,
		})
	}
	return blocks
}

// LogoBlock returns the image block of the page logo.
func (l Layout) LogoBlock(logo []byte) model.OverlayBlock {
	return model.OverlayBlock{
		Name:   "logo",
		Kind:   model.BlockImage,
		X:      l.Logo.X + l.Shift.X,
		Y:      l.Logo.Y + l.Shift.Y,
		Width:  l.Logo.Width,
		Height: l.Logo.Height,
		Image:  logo,
	}
}

// Plan groups entries into pages of perPage slots and returns the blocks of
// every page in order. The logo, when present, is the first block of each
// page.
func (l Layout) Plan(entries []Entry, perPage int, logo []byte) [][]model.OverlayBlock {
	perPage = l.PerPage(perPage)

	var pages [][]model.OverlayBlock
	for start := 0; start < len(entries); start += perPage {
		var blocks []model.OverlayBlock
		if len(logo) > 0 {
			blocks = append(blocks, l.LogoBlock(logo))
		}
		for slot, e := range entries[start:min(start+perPage, len(entries))] {
			blocks = append(blocks, l.Blocks(e, slot)...)
		}
		pages = append(pages, blocks)
	}
	return pages
}
