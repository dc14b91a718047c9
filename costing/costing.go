// Package costing builds the per-item unit cost analysis records rendered on
// every page of the full document.
package costing

import (
	"fmt"

	"github.com/tsawler/desglose/model"
	"github.com/tsawler/desglose/numeric"
)

// MaterialRow is one priced material line. No component computes material
// rows yet, so records carry none.
type MaterialRow struct {
	Description string
	Unit        string
	Quantity    float64
	UnitCost    int64
	Total       int64
}

// Record is the fixed-shape cost analysis of one line item. Cost categories
// that are not modeled hold neutral values so that renderers never meet a
// missing field.
type Record struct {
	// Item
	Date           string
	SequenceNumber int
	Description    string
	Unit           string
	Quantity       float64 // as read from the spreadsheet

	// A: tools
	ToolText   string
	ToolModel  string
	ToolHours  float64
	HourlyCost int64
	ToolTotal  int64

	// B: labor
	LaborNotApplicable bool
	LaborTotal         int64

	// C and D: production
	ProductionRate    float64
	ProductionCostAB  int64
	UnitExecutionCost int64

	// E: materials
	IsLabor       bool
	MaterialText  string
	MaterialRows  []MaterialRow
	MaterialTotal int64

	// F: transport
	TransportDTM         float64
	TransportConsumption float64
	TransportUnitCost    int64
	TransportTotal       int64

	// Totals
	DirectCostTotal int64
	Overhead        int64
	Taxes           int64
	UnitCostTotal   int64
	VAT             int64
	AdoptedUnitCost int64

	// Match
	MatchScore         float64
	MatchedDescription string
}

// Transport defaults.
const (
	DefaultTransportConsumption       = 0.05
	DefaultTransportUnitCost    int64 = 10000
)

// AdoptedUnitCost divides the total price by the quantity and rounds half to
// even. Quantities below 1 are clamped to 1 first, so the divisor is never
// zero or negative.
func AdoptedUnitCost(totalPrice int64, quantity float64) int64 {
	return numeric.RoundHalfEven(float64(totalPrice) / max(quantity, 1.0))
}

// NewRecord merges an item and its match into a complete record. The match
// texts must not be empty; catalog.Match guarantees that.
func NewRecord(date string, item model.LineItem, match model.MatchResult) (Record, error) {
	if match.ToolText == "" || match.MaterialText == "" {
		return Record{}, fmt.Errorf("item %d: match result has empty tool or material text", item.SequenceNumber)
	}

	return Record{
		Date:           date,
		SequenceNumber: item.SequenceNumber,
		Description:    item.Description,
		Unit:           item.Unit,
		Quantity:       item.Quantity,

		ToolText: match.ToolText,

		LaborNotApplicable: true,

		ProductionRate: 1,

		MaterialText: match.MaterialText,

		TransportConsumption: DefaultTransportConsumption,
		TransportUnitCost:    DefaultTransportUnitCost,

		AdoptedUnitCost: AdoptedUnitCost(item.TotalPrice, item.Quantity),

		MatchScore:         match.Score,
		MatchedDescription: match.MatchedDescription,
	}, nil
}

// Build creates one record per item. items and matches must have the same
// length.
func Build(date string, items []model.LineItem, matches []model.MatchResult) ([]Record, error) {
	if len(items) != len(matches) {
		return nil, fmt.Errorf("costing: %d items but %d match results", len(items), len(matches))
	}

	records := make([]Record, 0, len(items))
	for i := range items {
		rec, err := NewRecord(date, items[i], matches[i])
		if err != nil {
			return nil, fmt.Errorf("costing: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
