package lint

// Config controls which rules run and at what severity.
type Config struct {
	disabled   map[string]bool
	severities map[string]Severity
}

// NewConfig returns an empty configuration; every registered rule runs
// at its default severity.
func NewConfig() *Config {
	return &Config{
		disabled:   make(map[string]bool),
		severities: make(map[string]Severity),
	}
}

// Disable turns off the rule with the given ID.
func (c *Config) Disable(id string) {
	c.disabled[id] = true
}

// IsDisabled reports whether the rule is disabled.
func (c *Config) IsDisabled(id string) bool {
	return c.disabled[id]
}

// SetSeverity overrides the severity reported for a rule.
func (c *Config) SetSeverity(id string, s Severity) {
	c.severities[id] = s
}

// SeverityFor returns the effective severity for a rule.
func (c *Config) SeverityFor(def RuleDef) Severity {
	if s, ok := c.severities[def.ID]; ok {
		return s
	}
	return def.Severity
}
