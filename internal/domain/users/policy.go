package users

import (
	"fmt"
	"regexp"
	"strings"
)

// Predicate decides whether a single proposed change is allowed. old is the
// current value at the field's path (nil when the field is absent), proposed
// is the incoming value, op is the update operator ("$set", "$inc", ...).
type Predicate func(old, proposed any, op string) bool

// Rule binds a field-name pattern to a predicate. Patterns are matched
// against the full dotted field name; a field may match several rules, in
// which case every matching predicate must allow the change.
type Rule struct {
	Pattern *regexp.Regexp
	Allow   Predicate
}

// MustRule compiles expr anchored to the full field name.
func MustRule(expr string, allow Predicate) Rule {
	return Rule{
		Pattern: regexp.MustCompile(`\A(?:` + expr + `)\z`),
		Allow:   allow,
	}
}

// Policy is an ordered rule table applied to proposed user updates. Fields
// matching no rule are allowed unchanged; fields matching one or more rules
// are allowed only if every matching rule permits them.
type Policy struct {
	rules []Rule
}

func denyAlways(old, proposed any, op string) bool {
	return false
}

// DefaultPolicy protects the fields the system itself owns. Identity,
// credentials and privilege fields never change through the update surface.
func DefaultPolicy() *Policy {
	return NewPolicy(
		MustRule(`_id`, denyAlways),
		MustRule(`password`, denyAlways),
		MustRule(`role(\..*)?`, denyAlways),
		MustRule(`email`, denyAlways),
		MustRule(`token`, denyAlways),
	)
}

func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// Extend returns a new policy with additional rules appended after the
// existing ones.
func (p *Policy) Extend(rules ...Rule) *Policy {
	combined := make([]Rule, 0, len(p.rules)+len(rules))
	combined = append(combined, p.rules...)
	combined = append(combined, rules...)
	return &Policy{rules: combined}
}

// FilterUpdates returns a copy of updates with every disallowed field
// removed. Operator groups left empty after filtering are dropped entirely.
// Neither target nor updates is mutated.
func (p *Policy) FilterUpdates(target User, updates Updates) Updates {
	filtered := make(Updates, len(updates))
	for op, fields := range updates {
		kept := make(map[string]any, len(fields))
		for field, proposed := range fields {
			if p.permits(target, op, field, proposed) {
				kept[field] = proposed
			}
		}
		if len(kept) > 0 {
			filtered[op] = kept
		}
	}
	return filtered
}

func (p *Policy) permits(target User, op, field string, proposed any) bool {
	old, _ := LookupDotted(target, field)
	for _, rule := range p.rules {
		if !rule.Pattern.MatchString(field) {
			continue
		}
		if !rule.Allow(old, proposed, op) {
			return false
		}
	}
	return true
}

func (p *Policy) String() string {
	patterns := make([]string, len(p.rules))
	for i, rule := range p.rules {
		patterns[i] = rule.Pattern.String()
	}
	return fmt.Sprintf("policy(%s)", strings.Join(patterns, ", "))
}
