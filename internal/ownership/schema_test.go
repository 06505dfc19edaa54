package ownership

import (
	"testing"

	"github.com/notifyhq/recipient-router/internal/apperrors"
	"github.com/notifyhq/recipient-router/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	raw := []byte(`{
		"fallthrough": true,
		"rules": [
			{
				"matcher": {"type": "path", "pattern": "*.py"},
				"owners": [
					{"type": "team", "identifier": "backend"},
					{"type": "user", "identifier": "alice@example.com"}
				]
			},
			{
				"matcher": {"type": "url", "pattern": "*/checkout/*"},
				"owners": [{"type": "team", "identifier": "payments"}]
			}
		]
	}`)

	schema, err := ParseSchema(raw)
	require.NoError(t, err)

	expected := &domain.OwnershipSchema{
		Fallthrough: true,
		Rules: []domain.OwnershipRule{
			{
				Matcher: domain.Matcher{Kind: domain.MatcherKindPath, Pattern: "*.py"},
				Owners: []domain.Owner{
					{Kind: domain.OwnerKindTeam, Identifier: "backend"},
					{Kind: domain.OwnerKindUser, Identifier: "alice@example.com"},
				},
			},
			{
				Matcher: domain.Matcher{Kind: domain.MatcherKindURL, Pattern: "*/checkout/*"},
				Owners: []domain.Owner{
					{Kind: domain.OwnerKindTeam, Identifier: "payments"},
				},
			},
		},
	}

	assert.Equal(t, expected, schema)
}

func TestParseSchema_Malformed(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{
			name: "not json",
			raw:  `{rules: [}`,
		},
		{
			name: "unknown matcher type",
			raw:  `{"rules": [{"matcher": {"type": "regex", "pattern": ".*"}, "owners": []}]}`,
		},
		{
			name: "missing matcher pattern",
			raw:  `{"rules": [{"matcher": {"type": "path"}, "owners": []}]}`,
		},
		{
			name: "unknown owner type",
			raw:  `{"rules": [{"matcher": {"type": "path", "pattern": "*"}, "owners": [{"type": "group", "identifier": "x"}]}]}`,
		},
		{
			name: "missing owner identifier",
			raw:  `{"rules": [{"matcher": {"type": "path", "pattern": "*"}, "owners": [{"type": "team"}]}]}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			schema, err := ParseSchema([]byte(tc.raw))

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrMalformedSchema)
			assert.Nil(t, schema)
		})
	}
}

func TestSerializeSchema_RoundTrip(t *testing.T) {
	schema := &domain.OwnershipSchema{
		Fallthrough: true,
		Rules: []domain.OwnershipRule{
			{
				Matcher: domain.Matcher{Kind: domain.MatcherKindPath, Pattern: "src/api/*"},
				Owners: []domain.Owner{
					{Kind: domain.OwnerKindUser, Identifier: "bob@example.com"},
					{Kind: domain.OwnerKindTeam, Identifier: "api"},
				},
			},
			{
				Matcher: domain.Matcher{Kind: domain.MatcherKindPath, Pattern: "*.go"},
				Owners:  []domain.Owner{},
			},
			{
				Matcher: domain.Matcher{Kind: domain.MatcherKindURL, Pattern: "https://example.com/*"},
				Owners: []domain.Owner{
					{Kind: domain.OwnerKindTeam, Identifier: "web"},
				},
			},
		},
	}

	raw, err := SerializeSchema(schema)
	require.NoError(t, err)

	parsed, err := ParseSchema(raw)
	require.NoError(t, err)

	// Rule and owner order must survive the round trip untouched.
	assert.Equal(t, schema, parsed)
}

func TestSerializeSchema_EmptySchema(t *testing.T) {
	raw, err := SerializeSchema(&domain.OwnershipSchema{})
	require.NoError(t, err)

	parsed, err := ParseSchema(raw)
	require.NoError(t, err)

	assert.Empty(t, parsed.Rules)
	assert.False(t, parsed.Fallthrough)
}
