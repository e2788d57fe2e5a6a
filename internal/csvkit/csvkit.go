// Package csvkit parses raw statement exports into loosely-typed rows.
//
// Statement files have no header row, contain blank filler lines, and
// sometimes begin with a UTF-8 byte-order mark. Cells are modeled as a closed
// variant (Text, Number, Absent) so that the empty-row check and the numeric
// amount check downstream are total.
package csvkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CellKind identifies which variant a Cell holds.
type CellKind int

const (
	// Absent marks a cell that was empty in the source file. It is distinct
	// from an empty string or a numeric zero.
	Absent CellKind = iota
	Text
	Number
)

// Cell is one loosely-typed CSV cell.
type Cell struct {
	Kind   CellKind
	Text   string
	Number decimal.Decimal
}

// Row is an ordered sequence of cells.
type Row []Cell

const bom = "\uFEFF"

// Parse reads statement bytes into rows. There is no header row; field counts
// may vary line to line.
func Parse(data []byte) ([]Row, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(rec))
		for i, field := range rec {
			row[i] = typeCell(field)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// typeCell coerces a raw field into the closed cell variant. Exported
// statements carry a BOM on the first field of the file; it is stripped from
// every text cell before typing so comparisons never see it.
func typeCell(field string) Cell {
	field = strings.TrimPrefix(field, bom)
	if field == "" {
		return Cell{Kind: Absent}
	}
	if n, err := decimal.NewFromString(field); err == nil {
		return Cell{Kind: Number, Number: n}
	}
	return Cell{Kind: Text, Text: field}
}

// Empty reports whether every cell in the row is absent. Rows of bare
// delimiters ("," lines) in exports parse to all-absent rows.
func (r Row) Empty() bool {
	for _, c := range r {
		if c.Kind != Absent {
			return false
		}
	}
	return true
}

// String renders the cell back as text. Absent cells render empty.
func (c Cell) String() string {
	switch c.Kind {
	case Number:
		return c.Number.String()
	case Text:
		return c.Text
	default:
		return ""
	}
}

// IsNumber reports whether the cell holds a numeric value.
func (c Cell) IsNumber() bool { return c.Kind == Number }

// At returns the cell at index i, or an absent cell when the row is shorter.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{Kind: Absent}
	}
	return r[i]
}
