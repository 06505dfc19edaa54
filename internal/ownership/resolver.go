package ownership

import (
	"fmt"

	"github.com/notifyhq/recipient-router/internal/domain"
)

// CompiledSchema is an ownership schema with every matcher pattern compiled.
// It is immutable after Compile and safe for concurrent Resolve calls.
type CompiledSchema struct {
	rules       []compiledRule
	fallbackAll bool
}

type compiledRule struct {
	matcher CompiledMatcher
	owners  []domain.Owner
}

// Compile validates and compiles every rule of a schema. A schema that
// fails to compile is a data error as a whole; no partially compiled
// schema is returned.
func Compile(schema *domain.OwnershipSchema) (*CompiledSchema, error) {
	cs := &CompiledSchema{
		rules:       make([]compiledRule, 0, len(schema.Rules)),
		fallbackAll: schema.Fallthrough,
	}

	for i, rule := range schema.Rules {
		matcher, err := CompileMatcher(rule.Matcher)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		cs.rules = append(cs.rules, compiledRule{matcher: matcher, owners: rule.Owners})
	}

	return cs, nil
}

// Resolve evaluates every rule, in declaration order, against the event
// attributes and accumulates the owners of all matching rules. Owners are
// deduplicated, keeping first-seen order. There is no short-circuiting:
// rule order is declaration order, not priority, and all matching rules
// contribute.
//
// When no rule matched, UsedFallthrough reports whether the schema's
// fallthrough flag directs notification to all active project members;
// the expansion itself happens in the recipient layer.
func (cs *CompiledSchema) Resolve(attrs domain.EventAttributes) domain.ResolvedOwners {
	var owners []domain.Owner
	seen := make(map[domain.Owner]struct{})

	for _, rule := range cs.rules {
		if !rule.matcher.Matches(attrs) {
			continue
		}
		for _, owner := range rule.owners {
			if _, ok := seen[owner]; ok {
				continue
			}
			seen[owner] = struct{}{}
			owners = append(owners, owner)
		}
	}

	if len(owners) == 0 && cs.fallbackAll {
		return domain.ResolvedOwners{UsedFallthrough: true}
	}

	return domain.ResolvedOwners{Owners: owners}
}
