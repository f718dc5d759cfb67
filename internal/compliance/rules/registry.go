package rules

import (
	"slices"

	"txwatch/internal/compliance/policy"
	dErrors "txwatch/pkg/domain-errors"
)

// Registry is the ordered rule set. Registration order is evaluation order,
// which fixes the order of alerts when several rules fire.
type Registry struct {
	rules []Rule
	names map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register appends a rule. Rule names must be unique.
func (r *Registry) Register(rule Rule) error {
	if rule == nil {
		return dErrors.New(dErrors.CodeConfiguration, "rule cannot be nil")
	}
	name := rule.Name()
	if name == "" {
		return dErrors.New(dErrors.CodeConfiguration, "rule name cannot be empty")
	}
	if _, dup := r.names[name]; dup {
		return dErrors.Newf(dErrors.CodeConfiguration, "rule %q already registered", name)
	}
	r.names[name] = struct{}{}
	r.rules = append(r.rules, rule)
	return nil
}

// Rules returns the registered rules in evaluation order.
func (r *Registry) Rules() []Rule {
	return slices.Clone(r.rules)
}

// Len is the number of registered rules.
func (r *Registry) Len() int { return len(r.rules) }

// DefaultRegistry registers the daily limit, high-risk country and
// structuring rules, in that order.
func DefaultRegistry(cfg policy.RuleConfig) (*Registry, error) {
	reg := NewRegistry()
	for _, rule := range []Rule{
		NewDailyLimit(cfg),
		NewHighRiskCountry(cfg),
		NewStructuring(cfg.StructuringThreshold),
	} {
		if err := reg.Register(rule); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
