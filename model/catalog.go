package model

// CatalogEntry is one row of the reference catalog.
type CatalogEntry struct {
	RawDescription        string
	NormalizedDescription string
	KeywordTokens         []string // distinct tokens, catalog order
	ToolText              string
	MaterialText          string
	IsDefault             bool
}

// MatchResult is the outcome of scoring one item against the catalog.
type MatchResult struct {
	ToolText           string
	MaterialText       string
	Score              float64 // in [0,1]; 0 for a default fallback
	MatchedDescription string
	Fallback           bool // true when the default row was used
}
