package assemble

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/tsawler/desglose/model"
)

func init() {
	// Keep pdfcpu from creating a configuration directory in $HOME.
	api.DisableConfigDir()
}

// newConfiguration returns the pdfcpu configuration used for every
// operation. Templates come from arbitrary office tools, so validation is
// relaxed.
func newConfiguration() *pdfmodel.Configuration {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return conf
}

// Template is the immutable first page of a template PDF.
type Template struct {
	data   []byte
	width  float64
	height float64
}

// LoadTemplate reads a template PDF and keeps its first page. It fails with
// model.ErrMissingArtifact for empty input and model.ErrNoTemplatePage when
// the document has no pages.
func LoadTemplate(data []byte) (*Template, error) {
	if len(data) == 0 {
		return nil, model.MissingArtifact("template PDF")
	}
	conf := newConfiguration()

	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: reading template: %v", model.ErrRender, err)
	}
	if n < 1 {
		return nil, model.ErrNoTemplatePage
	}

	var trimmed bytes.Buffer
	if err := api.Trim(bytes.NewReader(data), &trimmed, []string{"1"}, conf); err != nil {
		return nil, fmt.Errorf("%w: trimming template: %v", model.ErrRender, err)
	}

	dims, err := api.PageDims(bytes.NewReader(trimmed.Bytes()), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: reading template page size: %v", model.ErrRender, err)
	}
	if len(dims) == 0 {
		return nil, model.ErrNoTemplatePage
	}

	return &Template{
		data:   trimmed.Bytes(),
		width:  dims[0].Width,
		height: dims[0].Height,
	}, nil
}

// Size returns the page size in points.
func (t *Template) Size() (width, height float64) {
	return t.width, t.height
}

// Bytes returns a copy of the single-page template PDF.
func (t *Template) Bytes() []byte {
	return bytes.Clone(t.data)
}

// Clone returns a new page backed by its own copy of the template.
func (t *Template) Clone() *Page {
	return &Page{data: bytes.Clone(t.data), conf: newConfiguration()}
}

// State is the life cycle position of a page.
type State int

const (
	// StateCloned is a fresh copy of the template.
	StateCloned State = iota
	// StateOverlaid has had an overlay merged onto it.
	StateOverlaid
	// StateAppended belongs to an assembler and is read-only.
	StateAppended
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateCloned:
		return "cloned"
	case StateOverlaid:
		return "overlaid"
	case StateAppended:
		return "appended"
	default:
		return "unknown"
	}
}

// ErrPageAppended is returned when an appended page is modified or appended
// again.
var ErrPageAppended = errors.New("page already appended")

// Page is one output page under construction.
type Page struct {
	data   []byte
	conf   *pdfmodel.Configuration
	state  State
	stamps []string
}

// State returns the page state.
func (p *Page) State() State {
	return p.state
}

// Bytes returns a copy of the page as a single-page PDF.
func (p *Page) Bytes() []byte {
	return bytes.Clone(p.data)
}

// Stamps lists the blocks stamped onto the page, in order.
func (p *Page) Stamps() []string {
	return append([]string(nil), p.stamps...)
}

// WriteTo writes the single-page PDF to w.
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.data)
	return int64(n), err
}
