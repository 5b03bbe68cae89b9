package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"scenario-admin/internal/models"

	"go.uber.org/zap"
)

// backendClient implements Backend over HTTP.
type backendClient struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
	logger       *zap.Logger
}

// NewBackendClient creates a client for the REST backend rooted at baseURL.
func NewBackendClient(baseURL string, timeout time.Duration, logger *zap.Logger) (Backend, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL for backend: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &backendClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		// media can take longer than any API call; bounded by the request context
		streamClient: &http.Client{},
		logger:       logger.Named("BackendClient"),
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (c *backendClient) Login(ctx context.Context, email, password string) (string, models.User, error) {
	log := c.logger.With(zap.String("email", email))

	env, status, err := c.do(ctx, http.MethodPost, "/user/login", "", loginRequest{Email: email, Password: password})
	if err != nil {
		if errors.Is(err, models.ErrSessionExpired) {
			// 401 on login means bad credentials, not an expired session
			log.Warn("Login rejected by backend", zap.Int("status", status))
			return "", models.User{}, loginError(env, status)
		}
		return "", models.User{}, err
	}
	if !env.Success || env.Token == "" {
		log.Warn("Login unsuccessful", zap.Int("status", status), zap.String("message", env.Message))
		return "", models.User{}, loginError(env, status)
	}

	var user models.User
	if env.User != nil {
		user = *env.User
	}
	log.Info("Login successful", zap.String("userID", user.ID), zap.Bool("isAdmin", user.IsAdmin))
	return env.Token, user, nil
}

// ListUsers returns all accounts. Admin only.
func (c *backendClient) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	env, err := c.call(ctx, http.MethodGet, "/user", token, nil)
	if err != nil {
		return nil, err
	}
	return env.Users, nil
}

// CreateUser registers a new account. Admin only.
func (c *backendClient) CreateUser(ctx context.Context, token string, payload models.NewUserPayload) (models.User, error) {
	env, err := c.call(ctx, http.MethodPost, "/user", token, payload)
	if err != nil {
		return models.User{}, err
	}
	if env.User != nil {
		return *env.User, nil
	}
	return models.User{FirstName: payload.FirstName, LastName: payload.LastName, Email: payload.Email, IsAdmin: payload.IsAdmin}, nil
}

// DeleteUser removes an account. Admin only.
func (c *backendClient) DeleteUser(ctx context.Context, token, userID string) error {
	_, err := c.call(ctx, http.MethodDelete, "/user/"+url.PathEscape(userID), token, nil)
	return err
}

// ToggleAdmin flips the admin flag of an account. Admin only.
func (c *backendClient) ToggleAdmin(ctx context.Context, token, userID string) (models.User, error) {
	env, err := c.call(ctx, http.MethodPut, "/user/"+url.PathEscape(userID)+"/toggle-admin", token, nil)
	if err != nil {
		return models.User{}, err
	}
	if env.User != nil {
		return *env.User, nil
	}
	return models.User{ID: userID}, nil
}

// ListScenarios returns every scenario visible to the caller.
func (c *backendClient) ListScenarios(ctx context.Context, token string) ([]models.Scenario, error) {
	env, err := c.call(ctx, http.MethodGet, "/scenario", token, nil)
	if err != nil {
		return nil, err
	}
	if env.Scenarios == nil {
		return []models.Scenario{}, nil
	}
	return env.Scenarios, nil
}

// GetScenario fetches a single scenario.
func (c *backendClient) GetScenario(ctx context.Context, token, scenarioID string) (models.Scenario, error) {
	env, err := c.call(ctx, http.MethodGet, "/scenario/"+url.PathEscape(scenarioID), token, nil)
	if err != nil {
		return models.Scenario{}, err
	}
	if env.Scenario == nil {
		return models.Scenario{}, fmt.Errorf("scenario %s: %w", scenarioID, models.ErrNotFound)
	}
	return *env.Scenario, nil
}

// CreateScenario submits a new scenario. The backend starts video generation.
func (c *backendClient) CreateScenario(ctx context.Context, token string, payload models.ScenarioPayload) (models.SaveResult, error) {
	env, err := c.call(ctx, http.MethodPost, "/scenario", token, payload)
	if err != nil {
		return models.SaveResult{}, err
	}
	return saveResult(env), nil
}

// UpdateScenario replaces a scenario. The backend reports whether the video is
// regenerated.
func (c *backendClient) UpdateScenario(ctx context.Context, token, scenarioID string, payload models.ScenarioPayload) (models.SaveResult, error) {
	env, err := c.call(ctx, http.MethodPut, "/scenario/"+url.PathEscape(scenarioID), token, payload)
	if err != nil {
		return models.SaveResult{}, err
	}
	res := saveResult(env)
	if res.Scenario.ID == "" {
		res.Scenario.ID = scenarioID
	}
	return res, nil
}

// DeleteScenario removes a scenario and its video.
func (c *backendClient) DeleteScenario(ctx context.Context, token, scenarioID string) error {
	_, err := c.call(ctx, http.MethodDelete, "/scenario/"+url.PathEscape(scenarioID), token, nil)
	return err
}

// OpenVideo starts streaming the preview or download rendition of a scenario video.
func (c *backendClient) OpenVideo(ctx context.Context, token, scenarioID string, kind VideoKind) (*VideoStream, error) {
	videoURL := c.baseURL + "/scenario/" + url.PathEscape(scenarioID) + "/video/" + string(kind)
	log := c.logger.With(zap.String("url", videoURL))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("internal error creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	httpResp, err := c.streamClient.Do(httpReq)
	if err != nil {
		log.Error("Video request failed", zap.Error(err))
		return nil, fmt.Errorf("failed to communicate with backend: %w", err)
	}
	switch {
	case httpResp.StatusCode == http.StatusUnauthorized:
		httpResp.Body.Close()
		return nil, models.ErrSessionExpired
	case httpResp.StatusCode == http.StatusNotFound:
		httpResp.Body.Close()
		return nil, fmt.Errorf("video for scenario %s: %w", scenarioID, models.ErrNotFound)
	case httpResp.StatusCode != http.StatusOK:
		httpResp.Body.Close()
		log.Warn("Unexpected video status", zap.Int("status", httpResp.StatusCode))
		return nil, &models.BackendError{Status: httpResp.StatusCode, Message: "Download failed"}
	}

	return &VideoStream{
		Body:          httpResp.Body,
		ContentType:   httpResp.Header.Get("Content-Type"),
		ContentLength: httpResp.ContentLength,
	}, nil
}

// call performs an authenticated request and requires success:true.
func (c *backendClient) call(ctx context.Context, method, path, token string, body any) (*models.Envelope, error) {
	env, status, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return env, err
	}
	if !env.Success {
		c.logger.Warn("Backend returned unsuccessful response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("message", env.Message),
		)
		if status == http.StatusNotFound {
			return env, fmt.Errorf("%s %s: %w", method, path, models.ErrNotFound)
		}
		if status == http.StatusForbidden {
			return env, fmt.Errorf("%w: %s", models.ErrForbidden, env.Message)
		}
		return env, &models.BackendError{Status: status, Message: env.Message}
	}
	return env, nil
}

// do sends one JSON request. A 401 always maps to ErrSessionExpired.
func (c *backendClient) do(ctx context.Context, method, path, token string, body any) (*models.Envelope, int, error) {
	reqURL := c.baseURL + path
	log := c.logger.With(zap.String("method", method), zap.String("url", reqURL))

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			log.Error("Failed to marshal request payload", zap.Error(err))
			return nil, 0, fmt.Errorf("internal error marshalling request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		log.Error("Failed to create HTTP request", zap.Error(err))
		return nil, 0, fmt.Errorf("internal error creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug("Sending request to backend")
	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error("HTTP request to backend failed", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, fmt.Errorf("request to backend timed out: %w", err)
		}
		return nil, 0, fmt.Errorf("failed to communicate with backend: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		log.Error("Failed to read backend response", zap.Int("status", httpResp.StatusCode), zap.Error(err))
		return nil, httpResp.StatusCode, fmt.Errorf("failed to read backend response: %w", err)
	}
	log.Debug("Backend responded", zap.Int("status", httpResp.StatusCode), zap.Duration("duration", time.Since(start)))

	env := &models.Envelope{}
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, env); err != nil && httpResp.StatusCode != http.StatusUnauthorized {
			log.Error("Failed to decode backend response", zap.Int("status", httpResp.StatusCode), zap.ByteString("body", respBody), zap.Error(err))
			return nil, httpResp.StatusCode, fmt.Errorf("invalid response format from backend (status %d): %w", httpResp.StatusCode, err)
		}
	}

	if httpResp.StatusCode == http.StatusUnauthorized {
		log.Info("Backend rejected token")
		return env, httpResp.StatusCode, models.ErrSessionExpired
	}
	return env, httpResp.StatusCode, nil
}

func saveResult(env *models.Envelope) models.SaveResult {
	res := models.SaveResult{VideoRegenerated: env.VideoRegenerated}
	if env.Scenario != nil {
		res.Scenario = *env.Scenario
	}
	return res
}

// loginError wraps ErrInvalidCredentials together with the backend's message.
func loginError(env *models.Envelope, status int) error {
	return fmt.Errorf("%w: %w", models.ErrInvalidCredentials, &models.BackendError{
		Status:  status,
		Message: messageOr(env, "Login failed. Please check your credentials."),
	})
}

func messageOr(env *models.Envelope, fallback string) string {
	if env != nil && env.Message != "" {
		return env.Message
	}
	return fallback
}
