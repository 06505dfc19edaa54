package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/notifyhq/recipient-router/internal/apperrors"
	"github.com/notifyhq/recipient-router/internal/digest"
	"github.com/notifyhq/recipient-router/internal/domain"
	"github.com/notifyhq/recipient-router/internal/ownership"
	"github.com/notifyhq/recipient-router/internal/recipients"
	"github.com/notifyhq/recipient-router/internal/repository"
)

type NotificationService interface {
	// ResolveRecipients returns the sorted user IDs that should be
	// notified for an event in a project, for the given target.
	// A project without a persisted ownership schema behaves as an empty
	// schema with fallthrough disabled: no owners, no notification.
	ResolveRecipients(ctx context.Context, projectID string, target domain.Target, attrs *domain.EventAttributes) ([]string, error)

	// PreviewOwners dry-runs ownership resolution for an event without
	// expanding owners to users.
	PreviewOwners(ctx context.Context, projectID string, attrs domain.EventAttributes) (*domain.ResolvedOwners, error)

	// BuildDigest aggregates a batch of records and resolves the digest's
	// recipients. Recipients are resolved once per digest, against the
	// representative event of the first group; an empty batch yields an
	// empty digest and no recipients.
	BuildDigest(ctx context.Context, projectID string, target domain.Target, records []digest.Record) (*domain.Digest, []string, error)
}

type NotificationServiceImpl struct {
	log      *slog.Logger
	owners   repository.OwnershipRepository
	expander *recipients.Expander
	cache    *ownership.Cache
}

func NewNotificationService(
	log *slog.Logger,
	owners repository.OwnershipRepository,
	expander *recipients.Expander,
	cache *ownership.Cache,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		log:      log,
		owners:   owners,
		expander: expander,
		cache:    cache,
	}
}

func (s *NotificationServiceImpl) ResolveRecipients(ctx context.Context, projectID string, target domain.Target, attrs *domain.EventAttributes) ([]string, error) {
	const op = "internal.service.notification.ResolveRecipients"
	log := s.log.With(slog.String("op", op), slog.String("project_id", projectID), slog.String("target", string(target.Type)))

	schema, err := s.compiledSchema(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids, err := s.expander.ResolveRecipients(ctx, projectID, target, schema, attrs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("recipients resolved", slog.Int("count", ids.Len()))

	return ids.List(), nil
}

func (s *NotificationServiceImpl) PreviewOwners(ctx context.Context, projectID string, attrs domain.EventAttributes) (*domain.ResolvedOwners, error) {
	const op = "internal.service.notification.PreviewOwners"

	schema, err := s.compiledSchema(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if schema == nil {
		return &domain.ResolvedOwners{}, nil
	}

	resolved := schema.Resolve(attrs)

	return &resolved, nil
}

func (s *NotificationServiceImpl) BuildDigest(ctx context.Context, projectID string, target domain.Target, records []digest.Record) (*domain.Digest, []string, error) {
	const op = "internal.service.notification.BuildDigest"
	log := s.log.With(slog.String("op", op), slog.String("project_id", projectID))

	d := digest.Aggregate(projectID, records)
	if len(d.Groups) == 0 {
		return d, nil, nil
	}

	attrs := d.Groups[0].Representative.Attributes

	ids, err := s.ResolveRecipients(ctx, projectID, target, &attrs)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("digest built",
		slog.Int("issues", d.TotalIssues),
		slog.Int("events", d.TotalEvents),
		slog.Int("recipients", len(ids)),
	)

	return d, ids, nil
}

// compiledSchema loads and compiles the project's ownership schema,
// consulting the version-keyed cache. An absent schema returns nil,
// which the expander treats as empty with fallthrough disabled.
func (s *NotificationServiceImpl) compiledSchema(ctx context.Context, projectID string) (*ownership.CompiledSchema, error) {
	schema, version, err := s.owners.LoadSchema(ctx, projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to load ownership schema: %w", err)
	}

	if compiled, ok := s.cache.Get(projectID, version); ok {
		return compiled, nil
	}

	compiled, err := ownership.Compile(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMalformedSchema, err)
	}
	s.cache.Put(projectID, version, compiled)

	return compiled, nil
}
