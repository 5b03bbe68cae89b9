package mocks

import (
	"context"

	"scenario-admin/internal/client"
	"scenario-admin/internal/models"

	"github.com/stretchr/testify/mock"
)

// Backend is a testify mock of client.Backend.
type Backend struct {
	mock.Mock
}

var _ client.Backend = (*Backend)(nil)

func (m *Backend) Login(ctx context.Context, email, password string) (string, models.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(models.User), args.Error(2)
}

func (m *Backend) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	args := m.Called(ctx, token)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *Backend) CreateUser(ctx context.Context, token string, payload models.NewUserPayload) (models.User, error) {
	args := m.Called(ctx, token, payload)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *Backend) DeleteUser(ctx context.Context, token, userID string) error {
	return m.Called(ctx, token, userID).Error(0)
}

func (m *Backend) ToggleAdmin(ctx context.Context, token, userID string) (models.User, error) {
	args := m.Called(ctx, token, userID)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *Backend) ListScenarios(ctx context.Context, token string) ([]models.Scenario, error) {
	args := m.Called(ctx, token)
	list, _ := args.Get(0).([]models.Scenario)
	return list, args.Error(1)
}

func (m *Backend) GetScenario(ctx context.Context, token, scenarioID string) (models.Scenario, error) {
	args := m.Called(ctx, token, scenarioID)
	return args.Get(0).(models.Scenario), args.Error(1)
}

func (m *Backend) CreateScenario(ctx context.Context, token string, payload models.ScenarioPayload) (models.SaveResult, error) {
	args := m.Called(ctx, token, payload)
	return args.Get(0).(models.SaveResult), args.Error(1)
}

func (m *Backend) UpdateScenario(ctx context.Context, token, scenarioID string, payload models.ScenarioPayload) (models.SaveResult, error) {
	args := m.Called(ctx, token, scenarioID, payload)
	return args.Get(0).(models.SaveResult), args.Error(1)
}

func (m *Backend) DeleteScenario(ctx context.Context, token, scenarioID string) error {
	return m.Called(ctx, token, scenarioID).Error(0)
}

func (m *Backend) OpenVideo(ctx context.Context, token, scenarioID string, kind client.VideoKind) (*client.VideoStream, error) {
	args := m.Called(ctx, token, scenarioID, kind)
	stream, _ := args.Get(0).(*client.VideoStream)
	return stream, args.Error(1)
}
