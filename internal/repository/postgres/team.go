package postgres

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// TeamRepository answers team and project membership lookups. All reads
// are single statements, so each call observes a consistent snapshot.
type TeamRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewTeamRepository(db *sqlx.DB, log *slog.Logger) *TeamRepository {
	return &TeamRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (tr *TeamRepository) GetTeamMembers(ctx context.Context, teamSlug, projectID string) ([]string, error) {
	const op = "internal.repository.postgres.GetTeamMembers"

	query, args, err := tr.sq.Select("u.id").
		From("users u").
		Join("team_members tm ON tm.user_id = u.id").
		Join("project_members pm ON pm.user_id = u.id").
		Where(sq.Eq{"tm.team_slug": teamSlug, "pm.project_id": projectID, "u.is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var userIDs []string
	if err := tr.db.SelectContext(ctx, &userIDs, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to query team members: %w", op, err)
	}

	return userIDs, nil
}

func (tr *TeamRepository) IsTeamInProject(ctx context.Context, teamSlug, projectID string) (bool, error) {
	const op = "internal.repository.postgres.IsTeamInProject"

	query, args, err := tr.sq.Select("COUNT(1)").
		From("project_teams").
		Where(sq.Eq{"team_slug": teamSlug, "project_id": projectID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var count int
	if err := tr.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("%s: failed to query project teams: %w", op, err)
	}

	return count > 0, nil
}

func (tr *TeamRepository) GetProjectMembers(ctx context.Context, projectID string) ([]string, error) {
	const op = "internal.repository.postgres.GetProjectMembers"

	query, args, err := tr.sq.Select("u.id").
		From("users u").
		Join("project_members pm ON pm.user_id = u.id").
		Where(sq.Eq{"pm.project_id": projectID, "u.is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var userIDs []string
	if err := tr.db.SelectContext(ctx, &userIDs, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to query project members: %w", op, err)
	}

	return userIDs, nil
}
