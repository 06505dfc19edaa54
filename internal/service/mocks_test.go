package service

import (
	"context"

	"github.com/notifyhq/recipient-router/internal/domain"
	"github.com/notifyhq/recipient-router/internal/repository"
	"github.com/stretchr/testify/mock"
)

type OwnershipRepositoryMock struct {
	mock.Mock
}

var _ repository.OwnershipRepository = (*OwnershipRepositoryMock)(nil)

func (m *OwnershipRepositoryMock) LoadSchema(ctx context.Context, projectID string) (*domain.OwnershipSchema, int64, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}

	return args.Get(0).(*domain.OwnershipSchema), args.Get(1).(int64), args.Error(2)
}

type TeamRepositoryMock struct {
	mock.Mock
}

var _ repository.TeamRepository = (*TeamRepositoryMock)(nil)

func (m *TeamRepositoryMock) GetTeamMembers(ctx context.Context, teamSlug, projectID string) ([]string, error) {
	args := m.Called(ctx, teamSlug, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

func (m *TeamRepositoryMock) IsTeamInProject(ctx context.Context, teamSlug, projectID string) (bool, error) {
	args := m.Called(ctx, teamSlug, projectID)
	return args.Bool(0), args.Error(1)
}

func (m *TeamRepositoryMock) GetProjectMembers(ctx context.Context, projectID string) ([]string, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

type PreferenceRepositoryMock struct {
	mock.Mock
}

var _ repository.PreferenceRepository = (*PreferenceRepositoryMock)(nil)

func (m *PreferenceRepositoryMock) GetPreferences(ctx context.Context, projectID string, userIDs []string) (map[string]domain.NotifiablePreference, error) {
	args := m.Called(ctx, projectID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]domain.NotifiablePreference), args.Error(1)
}
