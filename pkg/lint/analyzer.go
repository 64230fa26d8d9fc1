package lint

import "sort"

// Analyzer runs the registered rules against a workspace context.
type Analyzer struct {
	cfg *Config
}

// NewAnalyzer creates an analyzer; a nil config runs everything at
// default severities.
func NewAnalyzer(cfg *Config) *Analyzer {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Analyzer{cfg: cfg}
}

// Analyze runs all enabled rules and returns their diagnostics sorted
// by label, then rule ID.
func (a *Analyzer) Analyze(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	for _, def := range GetAll() {
		if a.cfg.IsDisabled(def.ID) {
			continue
		}
		severity := a.cfg.SeverityFor(def)
		for _, d := range def.Check(ctx) {
			d.RuleID = def.ID
			d.Severity = severity
			diags = append(diags, d)
		}
	}

	sort.Slice(diags, func(i, j int) bool {
		if diags[i].Label != diags[j].Label {
			return diags[i].Label < diags[j].Label
		}
		return diags[i].RuleID < diags[j].RuleID
	})
	return diags
}

// Filter returns the diagnostics at or above the given severity
// threshold. Error is the most severe level.
func Filter(diags []Diagnostic, threshold Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity <= threshold {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
