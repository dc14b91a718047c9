package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Every error returned by the pipeline wraps exactly one.
var (
	// ErrInput reports a missing or empty source artifact.
	ErrInput = errors.New("input error")
	// ErrFormat reports a spreadsheet whose layout could not be understood.
	ErrFormat = errors.New("format error")
	// ErrMatchConfig reports a malformed reference catalog.
	ErrMatchConfig = errors.New("match configuration error")
	// ErrRender reports a failure building the output document.
	ErrRender = errors.New("render error")
)

// Specific errors.
var (
	ErrMissingArtifact      = fmt.Errorf("%w: missing artifact", ErrInput)
	ErrHeaderNotFound       = fmt.Errorf("%w: header row not found", ErrFormat)
	ErrEmptyExtraction      = fmt.Errorf("%w: no items extracted", ErrFormat)
	ErrNoCatalogRows        = fmt.Errorf("%w: catalog has no match rows", ErrMatchConfig)
	ErrNoDefaultCatalogRow  = fmt.Errorf("%w: catalog has no default row", ErrMatchConfig)
	ErrMissingCatalogColumn = fmt.Errorf("%w: catalog column missing", ErrMatchConfig)
	ErrNoTemplatePage       = fmt.Errorf("%w: template has no pages", ErrRender)
)

// MissingArtifact returns an input error naming the missing artifact.
func MissingArtifact(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingArtifact, name)
}

// SynonymError is a format error that lists the header names the extractor
// accepts, so the caller can fix the spreadsheet.
type SynonymError struct {
	Err      error
	Synonyms map[Field][]string
}

func (e *SynonymError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	sb.WriteString("; accepted headers (case and accents ignored):")
	for _, f := range Fields {
		names := e.Synonyms[f]
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n- %s: %s", f, strings.Join(names, " / "))
	}
	return sb.String()
}

func (e *SynonymError) Unwrap() error { return e.Err }
