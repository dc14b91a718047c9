package model

import (
	"fmt"
	"strings"
)

// Warning describes a non-fatal problem. The run still produces output.
type Warning struct {
	Page    int    // 1-indexed output page, 0 when not page specific
	Block   string // overlay block name, if any
	Message string
	Err     error
}

// String renders the warning on one line.
func (w Warning) String() string {
	var sb strings.Builder
	if w.Page > 0 {
		fmt.Fprintf(&sb, "page %d: ", w.Page)
	}
	if w.Block != "" {
		fmt.Fprintf(&sb, "%s: ", w.Block)
	}
	sb.WriteString(w.Message)
	if w.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(w.Err.Error())
	}
	return sb.String()
}

// FormatWarnings joins warnings into a multi-line string.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
