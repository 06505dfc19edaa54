// package ownership implements the pattern-matching core: glob matchers over
// event attributes, the ownership schema codec, and rule-set resolution.
// Everything in this package is a pure computation over immutable inputs;
// it performs no I/O and no logging.
package ownership

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/notifyhq/recipient-router/internal/domain"
)

// CompiledMatcher is a matcher whose glob pattern has been compiled once.
// Compiling without separator characters gives the required semantics:
// '*' matches any run of characters, including path separators, and the
// pattern is anchored to the whole candidate string.
type CompiledMatcher struct {
	kind    domain.MatcherKind
	pattern glob.Glob
}

// CompileMatcher compiles a matcher's pattern. An unknown kind or an
// invalid pattern is a schema-level data error.
func CompileMatcher(m domain.Matcher) (CompiledMatcher, error) {
	switch m.Kind {
	case domain.MatcherKindPath, domain.MatcherKindURL:
	default:
		return CompiledMatcher{}, fmt.Errorf("unknown matcher kind %q", m.Kind)
	}

	g, err := glob.Compile(m.Pattern)
	if err != nil {
		return CompiledMatcher{}, fmt.Errorf("invalid pattern %q: %w", m.Pattern, err)
	}

	return CompiledMatcher{kind: m.Kind, pattern: g}, nil
}

// Matches reports whether any candidate attribute value of the matcher's
// kind satisfies the pattern. Absent candidates never match and never panic.
func (m CompiledMatcher) Matches(attrs domain.EventAttributes) bool {
	switch m.kind {
	case domain.MatcherKindPath:
		for _, p := range attrs.Paths {
			if m.pattern.Match(p) {
				return true
			}
		}
		return false

	case domain.MatcherKindURL:
		if attrs.URL == "" {
			return false
		}
		return m.pattern.Match(attrs.URL)

	default:
		return false
	}
}
