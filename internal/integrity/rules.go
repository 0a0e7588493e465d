package integrity

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules configures the pattern sets applied by the validation stages.
type Rules struct {
	BlockedTokens []string `yaml:"blocked_tokens"`
	SQLKeywords   []string `yaml:"sql_keywords"`
	GrowthCeiling float64  `yaml:"growth_ceiling"`
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		BlockedTokens: []string{"DELETE", "DROP", "REMOVE", "ERASE", "PURGE"},
		SQLKeywords:   []string{"SELECT", "INSERT", "UPDATE", "DELETE"},
		GrowthCeiling: 10.0,
	}
}

// LoadRules reads a rule override file from a YAML file. Fields left empty
// in the file keep their defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, eris.Wrapf(err, "integrity: read rules %s", path)
	}

	// The YAML has a top-level "integrity" key
	var wrapper struct {
		Integrity Rules `yaml:"integrity"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return rules, eris.Wrap(err, "integrity: parse rules")
	}

	if len(wrapper.Integrity.BlockedTokens) > 0 {
		rules.BlockedTokens = wrapper.Integrity.BlockedTokens
	}
	if len(wrapper.Integrity.SQLKeywords) > 0 {
		rules.SQLKeywords = wrapper.Integrity.SQLKeywords
	}
	if wrapper.Integrity.GrowthCeiling > 0 {
		rules.GrowthCeiling = wrapper.Integrity.GrowthCeiling
	}

	return rules, nil
}
