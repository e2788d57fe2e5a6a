package model

// DisregardLevel hides a category from user-facing lists without deleting it.
// Disregarded categories remain valid rule targets.
type DisregardLevel int

const (
	DisregardNone DisregardLevel = 0
	DisregardAll  DisregardLevel = 1
)

// IgnoreCategoryName is the reserved category whose matches are excluded from
// spend totals. It is created idempotently at startup.
const IgnoreCategoryName = "Ignore"

// Category is a user-defined spending category.
type Category struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	ParentID       string         `json:"parentId,omitempty"`
	DisregardLevel DisregardLevel `json:"disregardLevel"`
}

// CategoryAssignmentRule maps a substring pattern to a category. Rules are
// evaluated in storage order; the first match wins.
type CategoryAssignmentRule struct {
	ID         string `json:"id"`
	Pattern    string `json:"pattern"` // case-sensitive substring
	CategoryID string `json:"categoryId"`
}
