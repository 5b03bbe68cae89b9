package client

import (
	"context"
	"io"

	"scenario-admin/internal/models"
)

// UserAPI covers the /user endpoints of the backend.
type UserAPI interface {
	Login(ctx context.Context, email, password string) (token string, user models.User, err error)
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	CreateUser(ctx context.Context, token string, payload models.NewUserPayload) (models.User, error)
	DeleteUser(ctx context.Context, token, userID string) error
	ToggleAdmin(ctx context.Context, token, userID string) (models.User, error)
}

// ScenarioAPI covers the /scenario endpoints of the backend.
type ScenarioAPI interface {
	ListScenarios(ctx context.Context, token string) ([]models.Scenario, error)
	GetScenario(ctx context.Context, token, scenarioID string) (models.Scenario, error)
	CreateScenario(ctx context.Context, token string, payload models.ScenarioPayload) (models.SaveResult, error)
	UpdateScenario(ctx context.Context, token, scenarioID string, payload models.ScenarioPayload) (models.SaveResult, error)
	DeleteScenario(ctx context.Context, token, scenarioID string) error
	OpenVideo(ctx context.Context, token, scenarioID string, kind VideoKind) (*VideoStream, error)
}

// Backend is everything the admin UI needs from the REST API.
type Backend interface {
	UserAPI
	ScenarioAPI
}

// VideoKind selects the media endpoint.
type VideoKind string

const (
	VideoPreview  VideoKind = "preview"
	VideoDownload VideoKind = "download"
)

// VideoStream is an open media response. The caller must close Body.
type VideoStream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}
