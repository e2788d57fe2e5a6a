// Package categorize assigns transactions to spending categories using an
// ordered list of substring rules, and computes report totals.
package categorize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallyup-dev/tallyup/internal/model"
)

// Directory is a category lookup by id and by name.
type Directory struct {
	byID   map[string]model.Category
	byName map[string]model.Category
}

// NewDirectory indexes a category set.
func NewDirectory(categories []model.Category) *Directory {
	d := &Directory{
		byID:   make(map[string]model.Category, len(categories)),
		byName: make(map[string]model.Category, len(categories)),
	}
	for _, c := range categories {
		d.byID[c.ID] = c
		d.byName[c.Name] = c
	}
	return d
}

// ByID looks a category up by id.
func (d *Directory) ByID(id string) (model.Category, bool) {
	c, ok := d.byID[id]
	return c, ok
}

// ByName looks a category up by its exact name.
func (d *Directory) ByName(name string) (model.Category, bool) {
	c, ok := d.byName[name]
	return c, ok
}

// VisibleCategories filters out categories hidden by their disregard level.
// Hidden categories stay valid rule targets; they just drop out of
// user-facing lists.
func VisibleCategories(categories []model.Category) []model.Category {
	visible := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if c.DisregardLevel == model.DisregardNone {
			visible = append(visible, c)
		}
	}
	return visible
}

// Assignment pairs a transaction with its resolved category.
type Assignment struct {
	Transaction model.Transaction `json:"transaction"`
	Category    model.Category    `json:"category"`
}

// Result buckets every transaction into exactly one of categorized, ignored
// or uncategorized, and carries the net spend total.
type Result struct {
	Categorized   []Assignment        `json:"categorized"`
	Ignored       []Assignment        `json:"ignored"`
	Uncategorized []model.Transaction `json:"uncategorized"`

	// NetTotal is the sum over categorized-and-not-ignored transactions,
	// negated so spend reports as positive, rounded to cents.
	NetTotal decimal.Decimal `json:"netTotal"`
}

// Engine matches transactions against rules and a category directory. The
// Ignore category id is an explicit input, not an ambient lookup.
type Engine struct {
	dir      *Directory
	rules    []model.CategoryAssignmentRule
	ignoreID string
}

// NewEngine creates an Engine. Rules must already be in storage order; the
// engine preserves it.
func NewEngine(dir *Directory, rules []model.CategoryAssignmentRule, ignoreID string) *Engine {
	return &Engine{dir: dir, rules: rules, ignoreID: ignoreID}
}

// Categorize assigns each transaction to at most one category. Split parents
// are excluded from the report entirely; their children flow through on their
// own. The net total negates the raw signed sum exactly once, here, so the
// stored amounts stay in statement convention (debits negative).
func (e *Engine) Categorize(txns []model.Transaction) Result {
	var res Result
	total := decimal.Zero

	for _, txn := range txns {
		if txn.IsSplit {
			continue
		}

		category, ok := e.resolve(txn)
		if !ok {
			res.Uncategorized = append(res.Uncategorized, txn)
			continue
		}

		assignment := Assignment{Transaction: txn, Category: category}
		if category.ID == e.ignoreID {
			res.Ignored = append(res.Ignored, assignment)
			continue
		}
		res.Categorized = append(res.Categorized, assignment)
		total = total.Add(txn.Amount)
	}

	res.NetTotal = total.Neg().Round(2)
	return res
}

// resolve applies the matching priority: explicit user override first, then
// first-matching rule in list order, then the issuer-supplied category by
// literal name for credit-card rows. A rule or override whose category id no
// longer resolves is treated as absent.
func (e *Engine) resolve(txn model.Transaction) (model.Category, bool) {
	if txn.OverrideCategory && txn.OverrideCategoryID != "" {
		if c, ok := e.dir.ByID(txn.OverrideCategoryID); ok {
			return c, true
		}
	}

	text := txn.DescriptiveText()
	for _, rule := range e.rules {
		if !strings.Contains(text, rule.Pattern) {
			continue
		}
		if c, ok := e.dir.ByID(rule.CategoryID); ok {
			return c, true
		}
	}

	if txn.Kind == model.KindCreditCard && txn.IssuerCategory != "" {
		if c, ok := e.dir.ByName(txn.IssuerCategory); ok {
			return c, true
		}
	}

	return model.Category{}, false
}

// Unidentified filters the uncategorized bucket down to transactions that no
// Ignore-pointing rule pattern explains. The remainder are
// explained-but-uncategorized and belong in review workflows instead.
func (e *Engine) Unidentified(uncategorized []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, txn := range uncategorized {
		if e.matchesIgnoreRule(txn.DescriptiveText()) {
			continue
		}
		out = append(out, txn)
	}
	return out
}

func (e *Engine) matchesIgnoreRule(text string) bool {
	for _, rule := range e.rules {
		if rule.CategoryID == e.ignoreID && strings.Contains(text, rule.Pattern) {
			return true
		}
	}
	return false
}
