package http

import (
	"context"

	"github.com/notifyhq/recipient-router/internal/digest"
	"github.com/notifyhq/recipient-router/internal/domain"
	"github.com/notifyhq/recipient-router/internal/service"
	"github.com/stretchr/testify/mock"
)

type NotificationServiceMock struct {
	mock.Mock
}

var _ service.NotificationService = (*NotificationServiceMock)(nil)

func (m *NotificationServiceMock) ResolveRecipients(ctx context.Context, projectID string, target domain.Target, attrs *domain.EventAttributes) ([]string, error) {
	args := m.Called(ctx, projectID, target, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

func (m *NotificationServiceMock) PreviewOwners(ctx context.Context, projectID string, attrs domain.EventAttributes) (*domain.ResolvedOwners, error) {
	args := m.Called(ctx, projectID, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.ResolvedOwners), args.Error(1)
}

func (m *NotificationServiceMock) BuildDigest(ctx context.Context, projectID string, target domain.Target, records []digest.Record) (*domain.Digest, []string, error) {
	args := m.Called(ctx, projectID, target, records)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}

	var userIDs []string
	if args.Get(1) != nil {
		userIDs = args.Get(1).([]string)
	}

	return args.Get(0).(*domain.Digest), userIDs, args.Error(2)
}
