package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/notifyhq/recipient-router/internal/domain"
)

// PreferenceRepository batch-loads per-(user, project) notification
// preferences. Only project members appear in the result; a member
// without a notification_settings row gets the defaults (subscribed,
// not opted out).
type PreferenceRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewPreferenceRepository(db *sqlx.DB, log *slog.Logger) *PreferenceRepository {
	return &PreferenceRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

type preferenceRow struct {
	UserID             string       `db:"user_id"`
	Active             bool         `db:"is_active"`
	AlertOptOut        bool         `db:"alert_opt_out"`
	SubscribeByDefault sql.NullBool `db:"subscribe_by_default"`
}

func (pr *PreferenceRepository) GetPreferences(ctx context.Context, projectID string, userIDs []string) (map[string]domain.NotifiablePreference, error) {
	const op = "internal.repository.postgres.GetPreferences"

	if len(userIDs) == 0 {
		return map[string]domain.NotifiablePreference{}, nil
	}

	query, args, err := pr.sq.Select(
		"u.id AS user_id",
		"u.is_active",
		"COALESCE(ns.alert_opt_out, FALSE) AS alert_opt_out",
		"ns.subscribe_by_default",
	).
		From("users u").
		Join("project_members pm ON pm.user_id = u.id").
		LeftJoin("notification_settings ns ON ns.user_id = u.id AND ns.project_id = pm.project_id").
		Where(sq.Eq{"pm.project_id": projectID, "u.id": userIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rows []preferenceRow
	if err := pr.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to query preferences: %w", op, err)
	}

	prefs := make(map[string]domain.NotifiablePreference, len(rows))
	for _, row := range rows {
		pref := domain.NotifiablePreference{
			Active:      row.Active,
			AlertOptOut: row.AlertOptOut,
		}
		if row.SubscribeByDefault.Valid {
			v := row.SubscribeByDefault.Bool
			pref.SubscribeByDefault = &v
		}
		prefs[row.UserID] = pref
	}

	return prefs, nil
}
