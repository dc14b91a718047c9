// Package model defines the data that flows through the cost-breakdown
// pipeline.
//
// Values move strictly downstream:
//
//	worksheet -> [HeaderMapping] -> []LineItem -> []MatchResult -> records -> pages
//
// Every type here is a plain value. Components build them once and never
// patch them afterwards.
//
// # Items
//
// A [LineItem] is one kept spreadsheet row. A [HeaderMapping] records which
// column holds each semantic [Field] of the located header row.
//
// # Catalog
//
// A [CatalogEntry] is one reference row used for keyword matching and a
// [MatchResult] is the outcome of scoring one item against the catalog.
//
// # Layout
//
// An [OverlayBlock] describes one positioned text or image element on an
// overlay page. Coordinates use PDF user space (points, origin bottom-left),
// see [BBox] and [Point].
//
// # Errors
//
// Failures are grouped into four categories: [ErrInput], [ErrFormat],
// [ErrMatchConfig] and [ErrRender]. Specific errors wrap their category so
// callers can test with errors.Is at either level. Non-fatal problems are
// reported as [Warning] values next to the result.
package model
