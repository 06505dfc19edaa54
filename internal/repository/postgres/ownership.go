package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/notifyhq/recipient-router/internal/apperrors"
	"github.com/notifyhq/recipient-router/internal/domain"
	"github.com/notifyhq/recipient-router/internal/ownership"
)

// OwnershipRepository loads persisted ownership schemas from the
// project_ownership table. The schema column holds the JSON wire form
// decoded by ownership.ParseSchema.
type OwnershipRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewOwnershipRepository(db *sqlx.DB, log *slog.Logger) *OwnershipRepository {
	return &OwnershipRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

type ownershipRow struct {
	Schema  []byte `db:"schema"`
	Version int64  `db:"version"`
}

func (or *OwnershipRepository) LoadSchema(ctx context.Context, projectID string) (*domain.OwnershipSchema, int64, error) {
	const op = "internal.repository.postgres.LoadSchema"

	query, args, err := or.sq.Select("schema", "version").
		From("project_ownership").
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var row ownershipRow
	if err := or.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, apperrors.ErrNotFound
		}

		return nil, 0, fmt.Errorf("%s: failed to query ownership: %w", op, err)
	}

	schema, err := ownership.ParseSchema(row.Schema)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: project %q: %w", op, projectID, err)
	}

	return schema, row.Version, nil
}
