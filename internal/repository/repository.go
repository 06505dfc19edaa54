// package repository defines the interfaces for the data persistence layer.
// These interfaces are the integration boundary of the routing core: all I/O
// happens behind them and results are handed to the core as plain data.
package repository

import (
	"context"

	"github.com/notifyhq/recipient-router/internal/domain"
)

// OwnershipRepository loads persisted ownership schemas.
type OwnershipRepository interface {
	// LoadSchema returns the ownership schema for a project together with
	// its version, used as the compiled-schema cache key.
	// It returns apperrors.ErrNotFound when the project has no schema.
	// A schema that fails to decode is reported as a wrapped
	// apperrors.ErrMalformedSchema; no partial schema is ever returned.
	LoadSchema(ctx context.Context, projectID string) (*domain.OwnershipSchema, int64, error)
}

// TeamRepository answers team and project membership questions.
type TeamRepository interface {
	// GetTeamMembers returns the IDs of the active members of a team that
	// belong to the given project.
	GetTeamMembers(ctx context.Context, teamSlug, projectID string) ([]string, error)

	// IsTeamInProject reports whether a team is associated with a project.
	IsTeamInProject(ctx context.Context, teamSlug, projectID string) (bool, error)

	// GetProjectMembers returns the IDs of all active members of a project.
	// Used for the ownership fallthrough expansion.
	GetProjectMembers(ctx context.Context, projectID string) ([]string, error)
}

// PreferenceRepository batch-loads notification preferences.
type PreferenceRepository interface {
	// GetPreferences returns the notification preferences of the given
	// users within a project. Users that are not members of the project
	// are absent from the result; a member without an explicit settings
	// row gets zero-value preferences (subscribed, not opted out).
	GetPreferences(ctx context.Context, projectID string, userIDs []string) (map[string]domain.NotifiablePreference, error)
}
