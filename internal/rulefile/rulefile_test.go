package rulefile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyup-dev/tallyup/internal/model"
)

func TestRoundTrip(t *testing.T) {
	rules := []model.CategoryAssignmentRule{
		{ID: "r1", Pattern: "STARBUCKS", CategoryID: "cat-food"},
		{ID: "r2", Pattern: "AMAZON, INC", CategoryID: "cat-shopping"},
	}

	var buf bytes.Buffer
	err := WriteRules(&buf, rules)
	require.NoError(t, err)

	got, err := ReadRules(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, rules[0], got[0])
	assert.Equal(t, rules[1], got[1])
}

func TestOrderPreserved(t *testing.T) {
	rules := []model.CategoryAssignmentRule{
		{ID: "broad", Pattern: "AMAZON", CategoryID: "c1"},
		{ID: "narrow", Pattern: "AMAZON PRIME", CategoryID: "c2"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRules(&buf, rules))

	got, err := ReadRules(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "broad", got[0].ID)
	assert.Equal(t, "narrow", got[1].ID)
}

func TestRead_BlankID(t *testing.T) {
	in := "rule_id,pattern,category_id\n,SAFEWAY,cat-groceries\n"
	got, err := ReadRules(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].ID)
	assert.Equal(t, "SAFEWAY", got[0].Pattern)
}

func TestRead_EmptyPatternRejected(t *testing.T) {
	in := "rule_id,pattern,category_id\nr1,,cat-groceries\n"
	_, err := ReadRules(strings.NewReader(in))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestRead_EmptyCategoryRejected(t *testing.T) {
	in := "rule_id,pattern,category_id\nr1,SAFEWAY,\n"
	_, err := ReadRules(strings.NewReader(in))
	assert.Error(t, err)
}

func TestRead_Empty(t *testing.T) {
	got, err := ReadRules(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalRule_BadFieldCount(t *testing.T) {
	_, err := UnmarshalRule([]string{"just-one"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3 fields")
}
