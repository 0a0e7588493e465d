package integrity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	assert.Equal(t, []string{"DELETE", "DROP", "REMOVE", "ERASE", "PURGE"}, rules.BlockedTokens)
	assert.Equal(t, []string{"SELECT", "INSERT", "UPDATE", "DELETE"}, rules.SQLKeywords)
	assert.InDelta(t, 10.0, rules.GrowthCeiling, 1e-9)
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	yaml := `
integrity:
  blocked_tokens:
    - DELETE
    - TRUNCATE
  growth_ceiling: 20.0
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"DELETE", "TRUNCATE"}, rules.BlockedTokens)
	assert.InDelta(t, 20.0, rules.GrowthCeiling, 1e-9)
	// Unset fields keep defaults.
	assert.Equal(t, []string{"SELECT", "INSERT", "UPDATE", "DELETE"}, rules.SQLKeywords)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules("/nonexistent/rules.yaml")
	assert.Error(t, err)
}

func TestLoadRules_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("integrity: [not a map"), 0644))

	_, err := LoadRules(path)
	assert.Error(t, err)
}

func TestCustomRulesChangeSanitization(t *testing.T) {
	rules := DefaultRules()
	rules.BlockedTokens = []string{"TRUNCATE"}

	p := New(testConfig(), WithRules(rules), WithClock(pinnedClock()))

	rec, err := p.Process("TRUNCATE the table, DELETE the rest", nil)
	require.NoError(t, err)

	assert.Contains(t, rec.Text, "[TRUNCATE_BLOCKED]")
	assert.Contains(t, rec.Text, "DELETE the rest", "DELETE no longer blocked under custom rules")
}
