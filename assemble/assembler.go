package assemble

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/desglose/font"
	"github.com/tsawler/desglose/internal/logger"
	"github.com/tsawler/desglose/model"
	"github.com/tsawler/desglose/overlay"
)

// textDescription is the pdfcpu stamp description of one text line at
// (x, y). The stamp box is anchored at the bottom left of the page and moved
// by the offset.
func textDescription(op overlay.Op, x float64) string {
	return fmt.Sprintf("fontname:%s, points:%d, position:bl, offset:%.2f %.2f, scalefactor:1 abs, rotation:0, fillcolor:#000000, opacity:1",
		op.Font, stampPoints(op), x, op.Y)
}

// stampPoints is the font size pdfcpu draws a text operation at.
func stampPoints(op overlay.Op) int {
	return max(int(math.Round(op.FontSize)), 1)
}

func imageDescription(op overlay.Op) string {
	return fmt.Sprintf("position:bl, offset:%.2f %.2f, scalefactor:%.4f abs, rotation:0, opacity:1",
		op.X, op.Y, op.Scale)
}

// segment is a piece of a text line: raw is the text drawn and stamp the
// string handed to pdfcpu.
type segment struct {
	raw   string
	stamp string
}

// stampSegments splits text into pieces that pdfcpu draws verbatim. pdfcpu
// reads a run of n '%' as n-1 literal signs plus a placeholder prefix and
// expands %p, %P, %t and %v. Each run gets one extra '%', and a run followed
// by a placeholder letter ends its piece.
func stampSegments(text string) []segment {
	var (
		segs     []segment
		raw, esc strings.Builder
	)
	for i := 0; i < len(text); {
		if text[i] != '%' {
			raw.WriteByte(text[i])
			esc.WriteByte(text[i])
			i++
			continue
		}
		j := i
		for j < len(text) && text[j] == '%' {
			j++
		}
		raw.WriteString(text[i:j])
		esc.WriteString(text[i:j])
		esc.WriteByte('%')
		i = j
		if i < len(text) && strings.IndexByte("pPtv", text[i]) >= 0 {
			segs = append(segs, segment{raw: raw.String(), stamp: esc.String()})
			raw.Reset()
			esc.Reset()
		}
	}
	if raw.Len() > 0 || len(segs) == 0 {
		segs = append(segs, segment{raw: raw.String(), stamp: esc.String()})
	}
	return segs
}

// watermarks returns the pdfcpu stamps drawing op. A text line split into
// several pieces places each piece after the measured width of the previous
// ones.
func watermarks(op overlay.Op) ([]*pdfmodel.Watermark, error) {
	if op.Kind == overlay.OpImage {
		wm, err := api.ImageWatermarkForReader(bytes.NewReader(op.PNG), imageDescription(op), true, false, types.POINTS)
		if err != nil {
			return nil, err
		}
		return []*pdfmodel.Watermark{wm}, nil
	}

	segs := stampSegments(op.Text)
	var face *font.Face
	if len(segs) > 1 {
		var err error
		if face, err = font.NewFace(op.Font, float64(stampPoints(op))); err != nil {
			return nil, err
		}
	}

	wms := make([]*pdfmodel.Watermark, 0, len(segs))
	x := op.X
	for _, seg := range segs {
		wm, err := api.TextWatermark(seg.stamp, textDescription(op, x), true, false, types.POINTS)
		if err != nil {
			return nil, err
		}
		wms = append(wms, wm)
		if face != nil {
			x += face.Width(seg.raw)
		}
	}
	return wms, nil
}

// applyWatermarks stamps wms onto data in order.
func applyWatermarks(data []byte, wms []*pdfmodel.Watermark, conf *pdfmodel.Configuration) ([]byte, error) {
	for _, wm := range wms {
		var out bytes.Buffer
		if err := api.AddWatermarks(bytes.NewReader(data), &out, nil, wm, conf); err != nil {
			return nil, err
		}
		data = out.Bytes()
	}
	return data, nil
}

// Merge stamps every operation of o onto the page. Text failures abort the
// merge with a render error and leave the page unchanged. Images that cannot
// be stamped are skipped and returned as warnings.
func (p *Page) Merge(o *overlay.Page) ([]model.Warning, error) {
	if p.state == StateAppended {
		return nil, fmt.Errorf("%w: merge: %w", model.ErrRender, ErrPageAppended)
	}

	data := p.data
	stamps := p.stamps
	var warnings []model.Warning

	for _, op := range o.Ops() {
		wms, err := watermarks(op)
		if err == nil {
			var out []byte
			if out, err = applyWatermarks(data, wms, p.conf); err == nil {
				data = out
				stamps = append(stamps, op.Block)
				continue
			}
		}

		if op.Kind == overlay.OpImage {
			warnings = append(warnings, model.Warning{Page: o.Number, Block: op.Block, Message: "image omitted", Err: err})
			continue
		}
		return nil, fmt.Errorf("%w: page %d: block %s: %v", model.ErrRender, o.Number, op.Block, err)
	}

	p.data = data
	p.stamps = stamps
	p.state = StateOverlaid
	return warnings, nil
}

// Assembler collects pages in output order.
type Assembler struct {
	template *Template
	pages    [][]byte
	log      *logger.Logger
}

// NewAssembler creates an assembler for pages cloned from t.
func NewAssembler(t *Template) *Assembler {
	return &Assembler{template: t, log: logger.Nop()}
}

// WithLogger sets the logger used for non-fatal problems.
func (a *Assembler) WithLogger(l *logger.Logger) *Assembler {
	if l != nil {
		a.log = l
	}
	return a
}

// Template returns the template pages are cloned from.
func (a *Assembler) Template() *Template {
	return a.template
}

// Len returns the number of appended pages.
func (a *Assembler) Len() int {
	return len(a.pages)
}

// Append adds p to the output. p becomes read-only.
func (a *Assembler) Append(p *Page) error {
	if p.state == StateAppended {
		return fmt.Errorf("%w: append: %w", model.ErrRender, ErrPageAppended)
	}
	p.state = StateAppended
	a.pages = append(a.pages, p.data)
	return nil
}

// AddPage clones the template, merges o onto the clone and appends it.
// Warnings from the merge are logged and returned.
func (a *Assembler) AddPage(o *overlay.Page) ([]model.Warning, error) {
	page := a.template.Clone()

	warnings, err := page.Merge(o)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		a.log.Warn("overlay block omitted", "page", w.Page, "block", w.Block, "error", w.Err)
	}

	if err := a.Append(page); err != nil {
		return nil, err
	}
	return warnings, nil
}

// Finish concatenates the appended pages.
func (a *Assembler) Finish() (*Document, error) {
	if len(a.pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to assemble", model.ErrRender)
	}

	readers := make([]io.ReadSeeker, len(a.pages))
	for i, data := range a.pages {
		readers[i] = bytes.NewReader(data)
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, newConfiguration()); err != nil {
		return nil, fmt.Errorf("%w: merging %d pages: %v", model.ErrRender, len(a.pages), err)
	}
	a.log.Debug("document assembled", "pages", len(a.pages), "bytes", out.Len())

	return &Document{data: out.Bytes(), pages: len(a.pages)}, nil
}

// Document is the finished output. It is not modified after assembly.
type Document struct {
	data  []byte
	pages int
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.pages
}

// Bytes returns a copy of the PDF.
func (d *Document) Bytes() []byte {
	return bytes.Clone(d.data)
}

// WriteTo writes the PDF to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}
