package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "hint", SeverityHint.String())
	assert.Equal(t, "unknown", Severity(42).String())
}

func TestParseSeverity(t *testing.T) {
	s, ok := ParseSeverity("error")
	require.True(t, ok)
	assert.Equal(t, SeverityError, s)

	_, ok = ParseSeverity("fatal")
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	t.Cleanup(Clear)
	Clear()

	Register(RuleDef{ID: "T02", Description: "b", Severity: SeverityWarning,
		Check: func(*Context) []Diagnostic { return nil }})
	Register(RuleDef{ID: "T01", Description: "a", Severity: SeverityError,
		Check: func(*Context) []Diagnostic { return nil }})

	all := GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, "T01", all[0].ID)
	assert.Equal(t, "T02", all[1].ID)

	def, ok := GetByID("T02")
	require.True(t, ok)
	assert.Equal(t, "b", def.Description)

	_, ok = GetByID("T99")
	assert.False(t, ok)

	assert.Panics(t, func() {
		Register(RuleDef{ID: "T01"})
	})
}

func TestAnalyzer(t *testing.T) {
	t.Cleanup(Clear)
	Clear()

	Register(RuleDef{
		ID:       "T01",
		Severity: SeverityWarning,
		Check: func(*Context) []Diagnostic {
			return []Diagnostic{{Message: "from t01", Label: "//b:b"}}
		},
	})
	Register(RuleDef{
		ID:       "T02",
		Severity: SeverityError,
		Check: func(*Context) []Diagnostic {
			return []Diagnostic{{Message: "from t02", Label: "//a:a"}}
		},
	})

	diags := NewAnalyzer(nil).Analyze(&Context{})
	require.Len(t, diags, 2)
	// Sorted by label.
	assert.Equal(t, "T02", diags[0].RuleID)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "T01", diags[1].RuleID)

	cfg := NewConfig()
	cfg.Disable("T02")
	cfg.SetSeverity("T01", SeverityHint)

	diags = NewAnalyzer(cfg).Analyze(&Context{})
	require.Len(t, diags, 1)
	assert.Equal(t, "T01", diags[0].RuleID)
	assert.Equal(t, SeverityHint, diags[0].Severity)
}

func TestFilter(t *testing.T) {
	diags := []Diagnostic{
		{RuleID: "A", Severity: SeverityError},
		{RuleID: "B", Severity: SeverityWarning},
		{RuleID: "C", Severity: SeverityHint},
	}

	assert.Len(t, Filter(diags, SeverityHint), 3)
	assert.Len(t, Filter(diags, SeverityWarning), 2)

	errsOnly := Filter(diags, SeverityError)
	require.Len(t, errsOnly, 1)
	assert.Equal(t, "A", errsOnly[0].RuleID)

	assert.True(t, HasErrors(diags))
	assert.False(t, HasErrors(diags[1:]))
}
