package recipients

import (
	"context"
	"testing"

	"github.com/notifyhq/recipient-router/internal/apperrors"
	"github.com/notifyhq/recipient-router/internal/domain"
	"github.com/notifyhq/recipient-router/internal/ownership"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testProjectID = "proj-1"

func boolPtr(b bool) *bool {
	return &b
}

func activePref() domain.NotifiablePreference {
	return domain.NotifiablePreference{Active: true}
}

func compileSchema(t *testing.T, schema *domain.OwnershipSchema) *ownership.CompiledSchema {
	t.Helper()

	compiled, err := ownership.Compile(schema)
	require.NoError(t, err)

	return compiled
}

func TestExpander_ResolveRecipients_IssueOwners(t *testing.T) {
	ctx := context.Background()

	schema := compileSchema(t, &domain.OwnershipSchema{
		Rules: []domain.OwnershipRule{
			{
				Matcher: domain.Matcher{Kind: domain.MatcherKindPath, Pattern: "*.py"},
				Owners: []domain.Owner{
					{Kind: domain.OwnerKindTeam, Identifier: "backend"},
					{Kind: domain.OwnerKindUser, Identifier: "u3"},
				},
			},
		},
	})
	attrs := &domain.EventAttributes{Paths: []string{"src/app/views/errors.py"}}

	teams := new(TeamRepositoryMock)
	teams.On("GetTeamMembers", mock.Anything, "backend", testProjectID).
		Return([]string{"u1", "u2", "u3"}, nil)

	// u2 opted out of alerts, u3 is both a team member and a direct owner
	// and must survive deduplication.
	prefs := new(PreferenceRepositoryMock)
	prefs.On("GetPreferences", mock.Anything, testProjectID, []string{"u1", "u2", "u3"}).
		Return(map[string]domain.NotifiablePreference{
			"u1": activePref(),
			"u2": {Active: true, AlertOptOut: true},
			"u3": activePref(),
		}, nil)

	expander := NewExpander(teams, prefs)

	got, err := expander.ResolveRecipients(ctx, testProjectID, domain.Target{Type: domain.TargetIssueOwners}, schema, attrs)

	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, got.List())
	teams.AssertExpectations(t)
	prefs.AssertExpectations(t)
}

func TestExpander_ResolveRecipients_IssueOwnersFallthrough(t *testing.T) {
	ctx := context.Background()

	schema := compileSchema(t, &domain.OwnershipSchema{
		Rules: []domain.OwnershipRule{
			{
				Matcher: domain.Matcher{Kind: domain.MatcherKindPath, Pattern: "*.py"},
				Owners:  []domain.Owner{{Kind: domain.OwnerKindTeam, Identifier: "backend"}},
			},
		},
		Fallthrough: true,
	})
	attrs := &domain.EventAttributes{Paths: []string{"README.md"}}

	teams := new(TeamRepositoryMock)
	teams.On("GetProjectMembers", mock.Anything, testProjectID).
		Return([]string{"u1", "u4"}, nil)

	prefs := new(PreferenceRepositoryMock)
	prefs.On("GetPreferences", mock.Anything, testProjectID, []string{"u1", "u4"}).
		Return(map[string]domain.NotifiablePreference{
			"u1": activePref(),
			"u4": {Active: true, SubscribeByDefault: boolPtr(false)},
		}, nil)

	expander := NewExpander(teams, prefs)

	got, err := expander.ResolveRecipients(ctx, testProjectID, domain.Target{Type: domain.TargetIssueOwners}, schema, attrs)

	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, got.List())
	teams.AssertNotCalled(t, "GetTeamMembers", mock.Anything, mock.Anything, mock.Anything)
}

func TestExpander_ResolveRecipients_IssueOwnersNoMatchNoFallthrough(t *testing.T) {
	ctx := context.Background()

	schema := compileSchema(t, &domain.OwnershipSchema{
		Rules: []domain.OwnershipRule{
			{
				Matcher: domain.Matcher{Kind: domain.MatcherKindPath, Pattern: "*.py"},
				Owners:  []domain.Owner{{Kind: domain.OwnerKindTeam, Identifier: "backend"}},
			},
		},
	})
	attrs := &domain.EventAttributes{Paths: []string{"README.md"}}

	expander := NewExpander(new(TeamRepositoryMock), new(PreferenceRepositoryMock))

	got, err := expander.ResolveRecipients(ctx, testProjectID, domain.Target{Type: domain.TargetIssueOwners}, schema, attrs)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpander_ResolveRecipients_IssueOwnersNilSchema(t *testing.T) {
	ctx := context.Background()

	expander := NewExpander(new(TeamRepositoryMock), new(PreferenceRepositoryMock))

	got, err := expander.ResolveRecipients(ctx, testProjectID, domain.Target{Type: domain.TargetIssueOwners}, nil, &domain.EventAttributes{Paths: []string{"foo.py"}})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpander_ResolveRecipients_IssueOwnersMissingAttributes(t *testing.T) {
	ctx := context.Background()

	expander := NewExpander(new(TeamRepositoryMock), new(PreferenceRepositoryMock))

	got, err := expander.ResolveRecipients(ctx, testProjectID, domain.Target{Type: domain.TargetIssueOwners}, nil, nil)

	assert.ErrorIs(t, err, apperrors.ErrMissingAttributes)
	assert.Nil(t, got)
}

func TestExpander_ResolveRecipients_Team(t *testing.T) {
	ctx := context.Background()

	teams := new(TeamRepositoryMock)
	teams.On("IsTeamInProject", mock.Anything, "backend", testProjectID).Return(true, nil)
	teams.On("GetTeamMembers", mock.Anything, "backend", testProjectID).
		Return([]string{"u1", "u2", "u5"}, nil)

	// u2 has explicitly unsubscribed, u5 is inactive.
	prefs := new(PreferenceRepositoryMock)
	prefs.On("GetPreferences", mock.Anything, testProjectID, []string{"u1", "u2", "u5"}).
		Return(map[string]domain.NotifiablePreference{
			"u1": activePref(),
			"u2": {Active: true, SubscribeByDefault: boolPtr(false)},
			"u5": {Active: false},
		}, nil)

	expander := NewExpander(teams, prefs)

	got, err := expander.ResolveRecipients(ctx, testProjectID, domain.Target{Type: domain.TargetTeam, Identifier: "backend"}, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, got.List())
}

func TestExpander_ResolveRecipients_TeamNotInProject(t *testing.T) {
	ctx := context.Background()

	teams := new(TeamRepositoryMock)
	teams.On("IsTeamInProject", mock.Anything, "rogue", testProjectID).Return(false, nil)

	expander := NewExpander(teams, new(PreferenceRepositoryMock))

	got, err := expander.ResolveRecipients(ctx, testProjectID, domain.Target{Type: domain.TargetTeam, Identifier: "rogue"}, nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTeamNotInProject)

	var teamErr *apperrors.TeamNotInProjectError
	require.ErrorAs(t, err, &teamErr)
	assert.Equal(t, "rogue", teamErr.TeamSlug)
	assert.Nil(t, got)
	teams.AssertNotCalled(t, "GetTeamMembers", mock.Anything, mock.Anything, mock.Anything)
}

func TestExpander_ResolveRecipients_Member(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		pref     map[string]domain.NotifiablePreference
		expected []string
	}{
		{
			name:     "active member is notified",
			pref:     map[string]domain.NotifiablePreference{"u1": activePref()},
			expected: []string{"u1"},
		},
		{
			name:     "explicit target overrides unsubscribed default",
			pref:     map[string]domain.NotifiablePreference{"u1": {Active: true, SubscribeByDefault: boolPtr(false)}},
			expected: []string{"u1"},
		},
		{
			name:     "alert opt-out still vetoes explicit target",
			pref:     map[string]domain.NotifiablePreference{"u1": {Active: true, AlertOptOut: true}},
			expected: []string{},
		},
		{
			name:     "inactive user is never notified",
			pref:     map[string]domain.NotifiablePreference{"u1": {Active: false}},
			expected: []string{},
		},
		{
			name:     "non-member is never notified",
			pref:     map[string]domain.NotifiablePreference{},
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prefs := new(PreferenceRepositoryMock)
			prefs.On("GetPreferences", mock.Anything, testProjectID, []string{"u1"}).
				Return(tc.pref, nil)

			expander := NewExpander(new(TeamRepositoryMock), prefs)

			got, err := expander.ResolveRecipients(ctx, testProjectID, domain.Target{Type: domain.TargetMember, Identifier: "u1"}, nil, nil)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, got.List())
		})
	}
}

func TestExpander_ResolveRecipients_MemberOverridesDefaultButTeamDoesNot(t *testing.T) {
	ctx := context.Background()

	unsubscribed := map[string]domain.NotifiablePreference{
		"u1": {Active: true, SubscribeByDefault: boolPtr(false)},
	}

	teams := new(TeamRepositoryMock)
	teams.On("IsTeamInProject", mock.Anything, "backend", testProjectID).Return(true, nil)
	teams.On("GetTeamMembers", mock.Anything, "backend", testProjectID).Return([]string{"u1"}, nil)

	prefs := new(PreferenceRepositoryMock)
	prefs.On("GetPreferences", mock.Anything, testProjectID, []string{"u1"}).Return(unsubscribed, nil)

	expander := NewExpander(teams, prefs)

	viaTeam, err := expander.ResolveRecipients(ctx, testProjectID, domain.Target{Type: domain.TargetTeam, Identifier: "backend"}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, viaTeam)

	viaMember, err := expander.ResolveRecipients(ctx, testProjectID, domain.Target{Type: domain.TargetMember, Identifier: "u1"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, viaMember.List())
}

func TestExpander_IssueOwnersOutcomeMetric(t *testing.T) {
	ctx := context.Background()
	target := domain.Target{Type: domain.TargetIssueOwners}

	schema := compileSchema(t, &domain.OwnershipSchema{
		Rules: []domain.OwnershipRule{
			{
				Matcher: domain.Matcher{Kind: domain.MatcherKindPath, Pattern: "*.py"},
				Owners:  []domain.Owner{{Kind: domain.OwnerKindUser, Identifier: "u1"}},
			},
		},
		Fallthrough: true,
	})

	teams := new(TeamRepositoryMock)
	teams.On("GetProjectMembers", mock.Anything, testProjectID).Return([]string{}, nil)

	prefs := new(PreferenceRepositoryMock)
	prefs.On("GetPreferences", mock.Anything, testProjectID, []string{"u1"}).
		Return(map[string]domain.NotifiablePreference{"u1": activePref()}, nil)

	expander := NewExpander(teams, prefs)

	matchBefore := testutil.ToFloat64(resolutionOutcomes.WithLabelValues(outcomeMatch))
	_, err := expander.ResolveRecipients(ctx, testProjectID, target, schema, &domain.EventAttributes{Paths: []string{"a.py"}})
	require.NoError(t, err)
	assert.Equal(t, matchBefore+1, testutil.ToFloat64(resolutionOutcomes.WithLabelValues(outcomeMatch)))

	everyoneBefore := testutil.ToFloat64(resolutionOutcomes.WithLabelValues(outcomeEveryone))
	_, err = expander.ResolveRecipients(ctx, testProjectID, target, schema, &domain.EventAttributes{Paths: []string{"README.md"}})
	require.NoError(t, err)
	assert.Equal(t, everyoneBefore+1, testutil.ToFloat64(resolutionOutcomes.WithLabelValues(outcomeEveryone)))

	// An absent schema behaves as empty without fallthrough.
	emptyBefore := testutil.ToFloat64(resolutionOutcomes.WithLabelValues(outcomeEmpty))
	_, err = expander.ResolveRecipients(ctx, testProjectID, target, nil, &domain.EventAttributes{Paths: []string{"a.py"}})
	require.NoError(t, err)
	assert.Equal(t, emptyBefore+1, testutil.ToFloat64(resolutionOutcomes.WithLabelValues(outcomeEmpty)))
}

func TestExpander_ResolveRecipients_BadTargets(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name   string
		target domain.Target
	}{
		{
			name:   "unknown target type",
			target: domain.Target{Type: "broadcast"},
		},
		{
			name:   "team target without identifier",
			target: domain.Target{Type: domain.TargetTeam},
		},
		{
			name:   "member target without identifier",
			target: domain.Target{Type: domain.TargetMember},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			expander := NewExpander(new(TeamRepositoryMock), new(PreferenceRepositoryMock))

			got, err := expander.ResolveRecipients(ctx, testProjectID, tc.target, nil, nil)

			assert.ErrorIs(t, err, apperrors.ErrUnknownTarget)
			assert.Nil(t, got)
		})
	}
}
