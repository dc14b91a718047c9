package model

// BlockKind distinguishes text blocks from image blocks.
type BlockKind int

const (
	// BlockText is a wrapped text block.
	BlockText BlockKind = iota
	// BlockImage is an image scaled into a fixed box.
	BlockImage
)

// OverlayBlock is a positioned element of an overlay page. It is purely
// descriptive; renderers recreate blocks for every page.
type OverlayBlock struct {
	Name     string // box name used in warnings and logs
	Kind     BlockKind
	X        float64 // left edge, points
	Y        float64 // first line baseline or image bottom, points
	MaxWidth float64 // wrap width; 0 disables wrapping
	MaxLines int     // 0 means unlimited
	MaxChars int     // text is cut to this many runes before wrapping; 0 means unlimited
	FontSize float64
	// LineHeight is the baseline distance between wrapped lines.
	LineHeight float64
	Text       string
	Image      []byte
	Width      float64 // image box width
	Height     float64 // image box height
}

// Box returns the image box of the block.
func (b OverlayBlock) Box() BBox {
	return NewBBox(b.X, b.Y, b.Width, b.Height)
}
