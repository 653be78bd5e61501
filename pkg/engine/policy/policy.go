// Package policy evaluates escalation rules against failure outcomes.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule actions.
const (
	ActionEscalate = "escalate"
	ActionWarn     = "warn"
)

// Rule is a user-defined escalation rule.
type Rule struct {
	ID        string `yaml:"id" json:"id"`
	Condition string `yaml:"condition" json:"condition"` // CEL: "population > 100 && class == 'branch'"
	Action    string `yaml:"action" json:"action"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultRules is the built-in rule set used when no rules file is configured.
func DefaultRules() []Rule {
	return []Rule{
		{ID: "large-outage", Condition: "population >= 100", Action: ActionEscalate},
		{ID: "trunk-main", Condition: "class == 'feeder' || diameter >= 500", Action: ActionWarn},
		{ID: "aging-pipe", Condition: "installed_year < 1995 && affected > 0", Action: ActionWarn},
		{ID: "replacement-due", Condition: "priority >= 90", Action: ActionWarn},
	}
}

// ParseRules decodes a YAML document of the form "rules: [{id, condition, action}]".
func ParseRules(data []byte) ([]Rule, error) {
	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	seen := make(map[string]bool, len(doc.Rules))
	for _, r := range doc.Rules {
		if r.ID == "" || r.Condition == "" {
			return nil, fmt.Errorf("rule %q: id and condition are required", r.ID)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule %q", r.ID)
		}
		seen[r.ID] = true

		switch r.Action {
		case ActionEscalate, ActionWarn:
		default:
			return nil, fmt.Errorf("rule %q: unknown action %q", r.ID, r.Action)
		}
	}
	return doc.Rules, nil
}

// LoadRules reads rules from path, or returns DefaultRules when path is empty.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}
