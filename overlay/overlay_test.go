package overlay

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tsawler/desglose/font"
	"github.com/tsawler/desglose/model"
)

// runeMeasurer makes every rune one point wide.
type runeMeasurer struct{}

func (runeMeasurer) Width(s string) float64 { return float64(utf8.RuneCountInString(s)) }

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth float64
		want     []string
	}{
		{"fits on one line", "aa bb", 5, []string{"aa bb"}},
		{"greedy split", "aa bb cc dd", 5, []string{"aa bb", "cc dd"}},
		{"exact width fits", "abc de", 6, []string{"abc de"}},
		{"long word kept whole", "abcdefgh ij", 5, []string{"abcdefgh", "ij"}},
		{"whitespace collapsed", "  aa \n\t bb  ", 10, []string{"aa bb"}},
		{"no wrapping when width is zero", "aa bb cc", 0, []string{"aa bb cc"}},
		{"blank text", "   ", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.maxWidth, runeMeasurer{})
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("Wrap(%q, %v) = %q, want %q", tt.text, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestWrap_WithFace(t *testing.T) {
	face, err := font.NewFace("Helvetica", 8)
	if err != nil {
		t.Fatalf("failed to create face: %v", err)
	}
	text := "Provisión y aplicación de pintura látex acrílica en paredes interiores, dos manos"
	lines := Wrap(text, 100, face)
	if len(lines) < 2 {
		t.Fatalf("expected several lines, got %q", lines)
	}
	for _, l := range lines {
		if strings.Contains(l, " ") && face.Width(l) > 100 {
			t.Errorf("line %q is %.1f points wide", l, face.Width(l))
		}
	}
	if strings.Join(lines, " ") != text {
		t.Errorf("wrapping lost words: %q", lines)
	}
}

func TestTruncateAndClip(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}
	if got := Truncate(lines, 3); len(got) != 3 || got[2] != "c" {
		t.Errorf("Truncate(3) = %v", got)
	}
	if got := Truncate(lines, 0); len(got) != 4 {
		t.Errorf("Truncate(0) = %v", got)
	}
	if got := Truncate(lines, 10); len(got) != 4 {
		t.Errorf("Truncate(10) = %v", got)
	}

	if got := Clip("pintura látex", 9); got != "pintura l" {
		t.Errorf("Clip = %q", got)
	}
	if got := Clip("látex", 2); got != "lá" {
		t.Errorf("Clip multibyte = %q", got)
	}
	if got := Clip("abc", 0); got != "abc" {
		t.Errorf("Clip(0) = %q", got)
	}
}

func newTestPage(t *testing.T) *Page {
	t.Helper()
	face, err := font.NewFace("Helvetica", 8)
	if err != nil {
		t.Fatalf("failed to create face: %v", err)
	}
	return NewPage(1, A4Width, A4Height, face)
}

func TestPage_DrawText(t *testing.T) {
	page := newTestPage(t)
	page.Draw(model.OverlayBlock{
		Name:       "description",
		X:          305,
		Y:          767,
		MaxWidth:   40,
		MaxLines:   3,
		LineHeight: 10,
		Text:       "uno dos tres cuatro cinco seis siete ocho nueve diez once doce",
	})

	ops := page.Ops()
	if len(ops) != 3 {
		t.Fatalf("got %d ops, want 3 (truncated)", len(ops))
	}
	for i, op := range ops {
		if op.Kind != OpText || op.Block != "description" {
			t.Errorf("op %d = %+v", i, op)
		}
		if op.X != 305 || op.Y != 767-float64(i)*10 {
			t.Errorf("op %d at (%v, %v)", i, op.X, op.Y)
		}
		if op.Font != "Helvetica" || op.FontSize != 8 {
			t.Errorf("op %d font %s %v", i, op.Font, op.FontSize)
		}
	}
	if len(page.Warnings()) != 0 {
		t.Errorf("unexpected warnings %v", page.Warnings())
	}
}

func TestPage_DrawTextDefaultsAndClip(t *testing.T) {
	page := newTestPage(t)
	page.DrawText(model.OverlayBlock{Name: "item", X: 1, Y: 2, FontSize: 12, MaxChars: 3, Text: "12345"})

	ops := page.Ops()
	if len(ops) != 1 || ops[0].Text != "123" || ops[0].FontSize != 12 {
		t.Errorf("unexpected ops %+v", ops)
	}

	page.DrawText(model.OverlayBlock{Name: "empty", Text: "   "})
	if len(page.Ops()) != 1 {
		t.Error("blank text should not produce ops")
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPage_DrawImage(t *testing.T) {
	page := newTestPage(t)
	page.Draw(model.OverlayBlock{
		Name:   "logo",
		Kind:   model.BlockImage,
		X:      430,
		Y:      794,
		Width:  140,
		Height: 45,
		Image:  pngBytes(t, 200, 100),
	})

	ops := page.Ops()
	if len(ops) != 1 {
		t.Fatalf("got %d ops, want 1", len(ops))
	}
	op := ops[0]
	if op.Kind != OpImage || op.PixelWidth != 200 || op.PixelHeight != 100 {
		t.Errorf("unexpected op %+v", op)
	}
	// Height limits: 45/100.
	if op.Scale != 0.45 {
		t.Errorf("Scale = %v, want 0.45", op.Scale)
	}
	if op.Height() != 45 || op.Width() != 90 {
		t.Errorf("drawn size %vx%v, want 90x45", op.Width(), op.Height())
	}
	if op.X != 455 || op.Y != 794 {
		t.Errorf("position (%v, %v), want centered at (455, 794)", op.X, op.Y)
	}
	if _, err := png.Decode(bytes.NewReader(op.PNG)); err != nil {
		t.Errorf("op PNG does not decode: %v", err)
	}
}

func TestPage_DrawImageFailureIsWarning(t *testing.T) {
	page := newTestPage(t)
	page.DrawImage(model.OverlayBlock{Name: "logo", Kind: model.BlockImage, Width: 10, Height: 10, Image: []byte("not an image")})
	page.DrawImage(model.OverlayBlock{Name: "logo", Kind: model.BlockImage, Width: 10, Height: 10})
	page.DrawText(model.OverlayBlock{Name: "date", Text: "18/10/2026"})

	if len(page.Ops()) != 1 || page.Ops()[0].Block != "date" {
		t.Errorf("expected only the text op, got %+v", page.Ops())
	}
	warnings := page.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2", len(warnings))
	}
	if warnings[0].Page != 1 || warnings[0].Block != "logo" || warnings[0].Err == nil {
		t.Errorf("unexpected warning %+v", warnings[0])
	}
	if !errors.Is(warnings[1].Err, ErrEmptyImage) {
		t.Errorf("second warning = %v, want ErrEmptyImage", warnings[1].Err)
	}
}

func TestLayout_Blocks(t *testing.T) {
	l := DefaultFullLayout()
	e := Entry{Date: "18/10/2026", Item: "1", Description: "Pintura", Tools: "Rodillo", Labor: "not applicable", Materials: "Látex", Cost: "1.000"}

	blocks := l.Blocks(e, 1)
	if len(blocks) != 7 {
		t.Fatalf("got %d blocks, want 7", len(blocks))
	}
	byName := map[string]model.OverlayBlock{}
	for _, b := range blocks {
		byName[b.Name] = b
	}

	desc := byName["description"]
	if desc.X != 305 || desc.Y != 785-395-18 || desc.MaxWidth != 235 || desc.MaxLines != 3 {
		t.Errorf("description block = %+v", desc)
	}
	if tools := byName["tools"]; tools.Y != 625-395-18 || tools.Text != "Rodillo" {
		t.Errorf("tools block = %+v", tools)
	}

	simple := DefaultSimpleLayout().Blocks(Entry{Date: "d", Item: "2", Description: "x"}, 0)
	if len(simple) != 3 {
		t.Errorf("simple layout blocks = %d, want 3", len(simple))
	}
	if simple[0].Y != 742 || simple[0].X != 62 {
		t.Errorf("simple date block = %+v", simple[0])
	}
}

func TestLayout_Plan(t *testing.T) {
	l := DefaultFullLayout()
	entries := []Entry{{Item: "1"}, {Item: "2"}, {Item: "3"}}
	logo := []byte("logo")

	pages := l.Plan(entries, 2, logo)
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if len(pages[0]) != 3 || pages[0][0].Kind != model.BlockImage {
		t.Errorf("page 1 blocks = %+v", pages[0])
	}
	if pages[0][0].Y != 812-18 {
		t.Errorf("logo Y = %v, want %v", pages[0][0].Y, 812-18)
	}
	if pages[0][1].Y != 785-18 || pages[0][2].Y != 785-395-18 {
		t.Errorf("slot Y = %v, %v", pages[0][1].Y, pages[0][2].Y)
	}
	if len(pages[1]) != 2 {
		t.Errorf("page 2 blocks = %+v", pages[1])
	}

	single := l.Plan(entries, 1, nil)
	if len(single) != 3 || len(single[2]) != 1 || single[2][0].Text != "3" {
		t.Errorf("one per page = %+v", single)
	}
	if got := l.PerPage(5); got != 2 {
		t.Errorf("PerPage(5) = %d, want 2", got)
	}
	if got := (Layout{}).PerPage(2); got != 1 {
		t.Errorf("PerPage without slots = %d, want 1", got)
	}
}
