package validation

import (
	"context"
	"fmt"

	"github.com/calehh/hac-market/types"
)

// RuleSet is an ordered list of rules, one per positional parameter, indexed
// by parameter name.
type RuleSet struct {
	rules  []Rule
	byName map[string]Rule
}

func NewRuleSet(rules ...Rule) *RuleSet {
	s := &RuleSet{
		rules:  rules,
		byName: make(map[string]Rule, len(rules)),
	}
	for _, r := range rules {
		name := r.Base().Name
		if _, ok := s.byName[name]; ok {
			panic(fmt.Sprintf("validation: duplicate rule %q", name))
		}
		s.byName[name] = r
	}
	return s
}

func (s *RuleSet) Rule(name string) (Rule, bool) {
	r, ok := s.byName[name]
	return r, ok
}

// Index returns the position of the named parameter or -1.
func (s *RuleSet) Index(name string) int {
	for i, r := range s.rules {
		if r.Base().Name == name {
			return i
		}
	}
	return -1
}

func (s *RuleSet) Len() int {
	return len(s.rules)
}

// Validate checks args against the rules in order and stops at the first
// violation. Absent optional parameters take their default; parameters past
// the last rule are passed through unchanged.
func (s *RuleSet) Validate(ctx context.Context, args []any) (checked []any, err error) {
	n := max(len(args), len(s.rules))
	checked = make([]any, 0, n)
	for i, rule := range s.rules {
		base := rule.Base()
		var value any
		if i < len(args) {
			value = args[i]
		}
		if value == nil {
			if base.Required {
				return nil, &types.MissingParamError{Name: base.Name}
			}
			checked = append(checked, base.Default)
			continue
		}
		coerced, ok := coerce(value, base.Type)
		if !ok {
			return nil, &types.InvalidParamError{Name: base.Name, Expected: string(base.Type)}
		}
		v, err := rule.Check(ctx, coerced, i, args)
		if err != nil {
			return nil, err
		}
		checked = append(checked, v)
	}
	if len(args) > len(s.rules) {
		checked = append(checked, args[len(s.rules):]...)
	}
	return
}

// Validate runs a one-off rule list.
func Validate(ctx context.Context, rules []Rule, args []any) ([]any, error) {
	return NewRuleSet(rules...).Validate(ctx, args)
}
