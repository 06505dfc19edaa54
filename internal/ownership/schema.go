package ownership

import (
	"encoding/json"
	"fmt"

	"github.com/notifyhq/recipient-router/internal/apperrors"
	"github.com/notifyhq/recipient-router/internal/domain"
)

// Wire form of a persisted ownership schema. Field names are part of the
// storage contract: round-tripping a schema through Serialize and Parse
// must reproduce it exactly, rule order included.
type wireSchema struct {
	Rules       []wireRule `json:"rules"`
	Fallthrough bool       `json:"fallthrough"`
}

type wireRule struct {
	Matcher wireMatcher `json:"matcher"`
	Owners  []wireOwner `json:"owners"`
}

type wireMatcher struct {
	Type    string `json:"type"`
	Pattern string `json:"pattern"`
}

type wireOwner struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// ParseSchema decodes the persisted representation of an ownership schema.
// Any malformed kind or missing required field fails the whole parse with
// apperrors.ErrMalformedSchema; no partial schema is returned.
func ParseSchema(raw []byte) (*domain.OwnershipSchema, error) {
	var w wireSchema
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &apperrors.MalformedSchemaError{Reason: err.Error()}
	}

	schema := &domain.OwnershipSchema{
		Rules:       make([]domain.OwnershipRule, 0, len(w.Rules)),
		Fallthrough: w.Fallthrough,
	}

	for i, wr := range w.Rules {
		matcher, err := parseMatcher(wr.Matcher)
		if err != nil {
			return nil, &apperrors.MalformedSchemaError{Reason: fmt.Sprintf("rule %d: %s", i, err)}
		}

		owners := make([]domain.Owner, 0, len(wr.Owners))
		for j, wo := range wr.Owners {
			owner, err := parseOwner(wo)
			if err != nil {
				return nil, &apperrors.MalformedSchemaError{Reason: fmt.Sprintf("rule %d, owner %d: %s", i, j, err)}
			}
			owners = append(owners, owner)
		}

		schema.Rules = append(schema.Rules, domain.OwnershipRule{Matcher: matcher, Owners: owners})
	}

	return schema, nil
}

// SerializeSchema encodes a schema into its persisted representation.
func SerializeSchema(schema *domain.OwnershipSchema) ([]byte, error) {
	w := wireSchema{
		Rules:       make([]wireRule, 0, len(schema.Rules)),
		Fallthrough: schema.Fallthrough,
	}

	for _, rule := range schema.Rules {
		wr := wireRule{
			Matcher: wireMatcher{Type: string(rule.Matcher.Kind), Pattern: rule.Matcher.Pattern},
			Owners:  make([]wireOwner, 0, len(rule.Owners)),
		}
		for _, owner := range rule.Owners {
			wr.Owners = append(wr.Owners, wireOwner{Type: string(owner.Kind), Identifier: owner.Identifier})
		}
		w.Rules = append(w.Rules, wr)
	}

	return json.Marshal(w)
}

func parseMatcher(w wireMatcher) (domain.Matcher, error) {
	if w.Pattern == "" {
		return domain.Matcher{}, fmt.Errorf("matcher pattern is required")
	}

	switch domain.MatcherKind(w.Type) {
	case domain.MatcherKindPath, domain.MatcherKindURL:
		return domain.Matcher{Kind: domain.MatcherKind(w.Type), Pattern: w.Pattern}, nil
	default:
		return domain.Matcher{}, fmt.Errorf("unknown matcher type %q", w.Type)
	}
}

func parseOwner(w wireOwner) (domain.Owner, error) {
	if w.Identifier == "" {
		return domain.Owner{}, fmt.Errorf("owner identifier is required")
	}

	switch domain.OwnerKind(w.Type) {
	case domain.OwnerKindTeam, domain.OwnerKindUser:
		return domain.Owner{Kind: domain.OwnerKind(w.Type), Identifier: w.Identifier}, nil
	default:
		return domain.Owner{}, fmt.Errorf("unknown owner type %q", w.Type)
	}
}
