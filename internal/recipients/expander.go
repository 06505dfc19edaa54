// package recipients expands a notification target into the final set of
// notifiable user IDs, applying membership and preference filters.
package recipients

import (
	"context"
	"fmt"

	"github.com/notifyhq/recipient-router/internal/apperrors"
	"github.com/notifyhq/recipient-router/internal/domain"
	"github.com/notifyhq/recipient-router/internal/ownership"
	"github.com/notifyhq/recipient-router/internal/repository"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Expander resolves notification targets to user-ID sets. It holds no
// mutable state; membership and preference data are read per call through
// the repository interfaces, so every resolution sees one consistent
// snapshot.
type Expander struct {
	teams repository.TeamRepository
	prefs repository.PreferenceRepository
}

func NewExpander(teams repository.TeamRepository, prefs repository.PreferenceRepository) *Expander {
	return &Expander{
		teams: teams,
		prefs: prefs,
	}
}

// ResolveRecipients expands a target into the set of user IDs to notify.
//
// For an issue-owners target the compiled schema is evaluated against the
// event attributes; team owners expand to their active project members,
// user owners to themselves, and fallthrough to all active project
// members. A nil schema behaves as an empty schema without fallthrough.
//
// Preference filtering is uniform across targets: alert opt-out is an
// unconditional veto, and an explicit subscribe-by-default=false drops a
// user from issue-owners and team expansion but never from an explicit
// member target. Inactive users and non-members are never notifiable.
//
// An empty result is a legitimate outcome, distinct from the
// configuration errors returned for unknown target types, missing
// identifiers, missing event attributes, or a team outside the project.
func (e *Expander) ResolveRecipients(
	ctx context.Context,
	projectID string,
	target domain.Target,
	schema *ownership.CompiledSchema,
	attrs *domain.EventAttributes,
) (sets.String, error) {
	switch target.Type {
	case domain.TargetIssueOwners:
		return e.expandIssueOwners(ctx, projectID, schema, attrs)

	case domain.TargetTeam:
		return e.expandTeam(ctx, projectID, target.Identifier)

	case domain.TargetMember:
		return e.expandMember(ctx, projectID, target.Identifier)

	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownTarget, target.Type)
	}
}

func (e *Expander) expandIssueOwners(
	ctx context.Context,
	projectID string,
	schema *ownership.CompiledSchema,
	attrs *domain.EventAttributes,
) (sets.String, error) {
	if attrs == nil {
		return nil, apperrors.ErrMissingAttributes
	}

	var resolved domain.ResolvedOwners
	if schema != nil {
		resolved = schema.Resolve(*attrs)
	}
	observeResolution(resolved)

	candidates := sets.NewString()

	if resolved.UsedFallthrough {
		members, err := e.teams.GetProjectMembers(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("failed to get project members: %w", err)
		}
		candidates.Insert(members...)
	} else {
		for _, owner := range resolved.Owners {
			switch owner.Kind {
			case domain.OwnerKindTeam:
				members, err := e.teams.GetTeamMembers(ctx, owner.Identifier, projectID)
				if err != nil {
					return nil, fmt.Errorf("failed to get members of team %q: %w", owner.Identifier, err)
				}
				candidates.Insert(members...)

			case domain.OwnerKindUser:
				candidates.Insert(owner.Identifier)
			}
		}
	}

	return e.filter(ctx, projectID, candidates, true)
}

func (e *Expander) expandTeam(ctx context.Context, projectID, teamSlug string) (sets.String, error) {
	if teamSlug == "" {
		return nil, fmt.Errorf("%w: team target requires an identifier", apperrors.ErrUnknownTarget)
	}

	inProject, err := e.teams.IsTeamInProject(ctx, teamSlug, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to check team association: %w", err)
	}
	if !inProject {
		return nil, &apperrors.TeamNotInProjectError{TeamSlug: teamSlug, ProjectID: projectID}
	}

	members, err := e.teams.GetTeamMembers(ctx, teamSlug, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members of team %q: %w", teamSlug, err)
	}

	return e.filter(ctx, projectID, sets.NewString(members...), true)
}

func (e *Expander) expandMember(ctx context.Context, projectID, userID string) (sets.String, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: member target requires an identifier", apperrors.ErrUnknownTarget)
	}

	// An explicit member target bypasses subscribe-by-default, but not
	// the alert opt-out veto and not the active/membership requirements.
	return e.filter(ctx, projectID, sets.NewString(userID), false)
}

// filter applies the uniform post-expansion preference checks.
// respectDefault controls whether an explicit subscribe-by-default=false
// drops the user; the opt-out veto always applies.
func (e *Expander) filter(ctx context.Context, projectID string, candidates sets.String, respectDefault bool) (sets.String, error) {
	result := sets.NewString()
	if candidates.Len() == 0 {
		return result, nil
	}

	prefs, err := e.prefs.GetPreferences(ctx, projectID, candidates.List())
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	for _, userID := range candidates.UnsortedList() {
		pref, ok := prefs[userID]
		if !ok || !pref.Active {
			continue
		}
		if pref.AlertOptOut {
			continue
		}
		if respectDefault && pref.SubscribeByDefault != nil && !*pref.SubscribeByDefault {
			continue
		}
		result.Insert(userID)
	}

	return result, nil
}
