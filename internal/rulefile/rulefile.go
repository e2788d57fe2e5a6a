// Package rulefile reads and writes category assignment rules as CSV, so the
// rule list can be bulk-edited in a spreadsheet and loaded back in one
// replace-all pass.
package rulefile

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tallyup-dev/tallyup/internal/model"
)

const (
	numFields     = 3
	colID         = 0
	colPattern    = 1
	colCategoryID = 2
)

// ReadRules reads a rules CSV. Row order is the evaluation order.
func ReadRules(r io.Reader) ([]model.CategoryAssignmentRule, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rules CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var rules []model.CategoryAssignmentRule
	for i, rec := range records[1:] {
		rule, err := UnmarshalRule(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// WriteRules writes a rules CSV.
func WriteRules(w io.Writer, rules []model.CategoryAssignmentRule) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"rule_id", "pattern", "category_id"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rule := range rules {
		if err := cw.Write(MarshalRule(rule)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalRule converts a rule to a CSV row.
func MarshalRule(rule model.CategoryAssignmentRule) []string {
	row := make([]string, numFields)
	row[colID] = rule.ID
	row[colPattern] = rule.Pattern
	row[colCategoryID] = rule.CategoryID
	return row
}

// UnmarshalRule converts a CSV row to a rule. The rule id may be blank for
// hand-added rows; the importer assigns one.
func UnmarshalRule(record []string) (model.CategoryAssignmentRule, error) {
	if len(record) != numFields {
		return model.CategoryAssignmentRule{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colPattern] == "" {
		return model.CategoryAssignmentRule{}, fmt.Errorf("empty pattern")
	}
	if record[colCategoryID] == "" {
		return model.CategoryAssignmentRule{}, fmt.Errorf("empty category_id")
	}

	return model.CategoryAssignmentRule{
		ID:         record[colID],
		Pattern:    record[colPattern],
		CategoryID: record[colCategoryID],
	}, nil
}
