// Package statement classifies uploaded statement files by their names.
//
// Export file names encode the account and the covered date range at fixed
// character offsets after a known prefix. The offsets mirror the bank export
// formats exactly; they are carried as configuration so the classifier stays
// testable against synthetic names.
package statement

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tallyup-dev/tallyup/internal/model"
)

// ErrUnrecognizedFilename is returned when no filename rule matches. The file
// is rejected without persisting any partial state.
var ErrUnrecognizedFilename = errors.New("unrecognized statement file name")

// DateLayout names the two date token encodings found in export file names.
type DateLayout string

const (
	// LayoutCompact is an 8-character YYYYMMDD token.
	LayoutCompact DateLayout = "compact"
	// LayoutDashed is a 10-character MM-DD-YYYY token.
	LayoutDashed DateLayout = "dashed"
)

// FilenameRule maps a file-name prefix to a statement kind and the positions
// of its start/end date tokens.
type FilenameRule struct {
	Prefix      string              `yaml:"prefix"`
	Kind        model.StatementKind `yaml:"kind"`
	Layout      DateLayout          `yaml:"layout"`
	StartOffset int                 `yaml:"startOffset"`
	EndOffset   int                 `yaml:"endOffset"`
}

// DefaultRules reproduces the known export naming conventions:
//
//	Chase7011_Activity20220601_20221231_20240521.csv
//	Cash Reserve - 2137_07-01-2023_12-31-2023.csv
func DefaultRules() []FilenameRule {
	return []FilenameRule{
		{Prefix: "Chase7011_Activity", Kind: model.StatementCreditCard, Layout: LayoutCompact, StartOffset: 18, EndOffset: 27},
		{Prefix: "Chase5014_Activity", Kind: model.StatementCreditCard, Layout: LayoutCompact, StartOffset: 18, EndOffset: 27},
		{Prefix: "Cash Reserve - 2137_", Kind: model.StatementChecking, Layout: LayoutDashed, StartOffset: 20, EndOffset: 31},
	}
}

// Classification is the result of matching a file name.
type Classification struct {
	Kind      model.StatementKind
	StartDate string // ISO-8601 instant, UTC midnight
	EndDate   string // ISO-8601 instant, UTC midnight
}

// Classifier matches uploaded file names against an ordered rule set.
type Classifier struct {
	rules []FilenameRule
}

// NewClassifier creates a Classifier. A nil or empty rule set falls back to
// the defaults.
func NewClassifier(rules []FilenameRule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify resolves a file name to its statement kind and date range.
func (c *Classifier) Classify(fileName string) (Classification, error) {
	for _, rule := range c.rules {
		if !strings.HasPrefix(fileName, rule.Prefix) {
			continue
		}
		start, err := extractDate(fileName, rule.Layout, rule.StartOffset)
		if err != nil {
			return Classification{}, fmt.Errorf("classifying %q: start date: %w", fileName, err)
		}
		end, err := extractDate(fileName, rule.Layout, rule.EndOffset)
		if err != nil {
			return Classification{}, fmt.Errorf("classifying %q: end date: %w", fileName, err)
		}
		return Classification{Kind: rule.Kind, StartDate: start, EndDate: end}, nil
	}
	return Classification{}, fmt.Errorf("%w: %q", ErrUnrecognizedFilename, fileName)
}

// isoInstant serializes dates the way the rest of the system stores them.
const isoInstant = "2006-01-02T15:04:05.000Z"

func extractDate(fileName string, layout DateLayout, offset int) (string, error) {
	width := 8
	if layout == LayoutDashed {
		width = 10
	}
	if offset+width > len(fileName) {
		return "", fmt.Errorf("file name too short for date token at offset %d", offset)
	}
	token := fileName[offset : offset+width]

	var yearStr, monthStr, dayStr string
	switch layout {
	case LayoutCompact:
		yearStr, monthStr, dayStr = token[0:4], token[4:6], token[6:8]
	case LayoutDashed:
		monthStr, dayStr, yearStr = token[0:2], token[3:5], token[6:10]
	default:
		return "", fmt.Errorf("unknown date layout %q", layout)
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", fmt.Errorf("parsing year in token %q: %w", token, err)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return "", fmt.Errorf("parsing month in token %q: %w", token, err)
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return "", fmt.Errorf("parsing day in token %q: %w", token, err)
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Format(isoInstant), nil
}
