package overlay

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	// Logo formats accepted besides PNG.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/desglose/font"
	"github.com/tsawler/desglose/model"
)

// OpKind distinguishes drawing operations.
type OpKind int

const (
	// OpText draws one line of text with its baseline at (X, Y).
	OpText OpKind = iota
	// OpImage draws a PNG with its lower-left corner at (X, Y), scaled by
	// Scale.
	OpImage
)

// Op is one drawing operation on an overlay page, in page points.
type Op struct {
	Kind  OpKind
	Block string
	X, Y  float64

	// Text operations.
	Text     string
	Font     string
	FontSize float64

	// Image operations. PNG holds the re-encoded image, PixelWidth and
	// PixelHeight its size, and Scale the factor fitting it into its box.
	PNG         []byte
	PixelWidth  int
	PixelHeight int
	Scale       float64
}

// Width returns the drawn width of an image operation.
func (o Op) Width() float64 { return float64(o.PixelWidth) * o.Scale }

// Height returns the drawn height of an image operation.
func (o Op) Height() float64 { return float64(o.PixelHeight) * o.Scale }

// ErrEmptyImage is reported for image blocks without data.
var ErrEmptyImage = errors.New("image block has no data")

// Page is a transient overlay page. Blocks drawn on it become operations;
// the page is merged onto a template clone and then discarded.
type Page struct {
	Number int // 1-indexed output page
	Width  float64
	Height float64

	face     *font.Face
	ops      []Op
	warnings []model.Warning
}

// NewPage creates an empty overlay page measured with face.
func NewPage(number int, width, height float64, face *font.Face) *Page {
	return &Page{Number: number, Width: width, Height: height, face: face}
}

// Ops returns the drawing operations in drawing order.
func (p *Page) Ops() []Op {
	return p.ops
}

// Warnings returns the problems met while drawing. Blocks that caused them
// were omitted.
func (p *Page) Warnings() []model.Warning {
	return p.warnings
}

// Draw dispatches b on its kind.
func (p *Page) Draw(b model.OverlayBlock) {
	switch b.Kind {
	case model.BlockImage:
		p.DrawImage(b)
	default:
		p.DrawText(b)
	}
}

// DrawText wraps the block text to its width, keeps at most MaxLines lines
// and places one text operation per line, each LineHeight below the
// previous one.
func (p *Page) DrawText(b model.OverlayBlock) {
	size := b.FontSize
	if size <= 0 {
		size = p.face.Size
	}
	face := p.face.WithSize(size)

	lineHeight := b.LineHeight
	if lineHeight <= 0 {
		lineHeight = size * 1.25
	}

	lines := Truncate(Wrap(Clip(b.Text, b.MaxChars), b.MaxWidth, face), b.MaxLines)
	for i, line := range lines {
		p.ops = append(p.ops, Op{
			Kind:     OpText,
			Block:    b.Name,
			X:        b.X,
			Y:        b.Y - float64(i)*lineHeight,
			Text:     line,
			Font:     face.Name,
			FontSize: size,
		})
	}
}

// DrawImage decodes the block image and fits it, centered, into the block
// box. An image that cannot be decoded is omitted and recorded as a
// warning; it never fails the page.
func (p *Page) DrawImage(b model.OverlayBlock) {
	op, err := imageOp(b)
	if err != nil {
		p.warnings = append(p.warnings, model.Warning{
			Page:    p.Number,
			Block:   b.Name,
			Message: "image omitted",
			Err:     err,
		})
		return
	}
	p.ops = append(p.ops, op)
}

func imageOp(b model.OverlayBlock) (Op, error) {
	if len(b.Image) == 0 {
		return Op{}, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(b.Image))
	if err != nil {
		return Op{}, fmt.Errorf("decoding image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	box := b.Box()
	scale := box.FitScale(float64(w), float64(h))
	if scale == 0 {
		return Op{}, fmt.Errorf("cannot fit %dx%d image into %.1fx%.1f box", w, h, box.Width, box.Height)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Op{}, fmt.Errorf("encoding image: %w", err)
	}

	return Op{
		Kind:        OpImage,
		Block:       b.Name,
		X:           box.X + (box.Width-float64(w)*scale)/2,
		Y:           box.Y + (box.Height-float64(h)*scale)/2,
		PNG:         buf.Bytes(),
		PixelWidth:  w,
		PixelHeight: h,
		Scale:       scale,
	}, nil
}
