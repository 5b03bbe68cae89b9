package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scenario-admin/internal/client"
	"scenario-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) client.Backend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := client.NewBackendClient(srv.URL, 2*time.Second, zap.NewNop())
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestNewBackendClient_InvalidURL(t *testing.T) {
	_, err := client.NewBackendClient("not a url", time.Second, nil)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/user/login", r.URL.Path)
			assert.Empty(t, r.Header.Get("Authorization"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ann@example.com", body["email"])
			assert.Equal(t, "secret1", body["password"])

			writeJSON(t, w, http.StatusOK, map[string]any{
				"success": true,
				"token":   "tok",
				"user":    map[string]any{"_id": "u1", "firstName": "Ann", "lastName": "Lee", "email": "ann@example.com", "isAdmin": true},
			})
		})

		token, user, err := c.Login(context.Background(), "ann@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
		assert.Equal(t, "u1", user.ID)
		assert.True(t, user.IsAdmin)
	})

	t.Run("unsuccessful envelope", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"success": false, "message": "Wrong password"})
		})

		_, _, err := c.Login(context.Background(), "a@b.c", "x")
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
		assert.Equal(t, "Wrong password", models.BackendMessage(err, ""))
	})

	t.Run("401 is invalid credentials not expired session", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusUnauthorized, map[string]any{"success": false})
		})

		_, _, err := c.Login(context.Background(), "a@b.c", "x")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
		assert.NotErrorIs(t, err, models.ErrSessionExpired)
	})
}

func TestAuthenticatedCalls(t *testing.T) {
	t.Run("list scenarios sends bearer token", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/scenario", r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"success":   true,
				"scenarios": []map[string]any{{"_id": "s1", "name": "Route A", "videoStatus": "completed"}},
			})
		})

		list, err := c.ListScenarios(context.Background(), "tok")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "s1", list[0].ID)
		assert.Equal(t, models.VideoStatusCompleted, list[0].VideoStatus)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
		})

		list, err := c.ListScenarios(context.Background(), "tok")
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("401 maps to expired session", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := c.ListUsers(context.Background(), "stale")
		assert.ErrorIs(t, err, models.ErrSessionExpired)
	})

	t.Run("unsuccessful envelope carries backend message", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusBadRequest, map[string]any{"success": false, "message": "Email already exists"})
		})

		_, err := c.CreateUser(context.Background(), "tok", models.NewUserPayload{Email: "a@b.c"})
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrBackend)
		assert.Equal(t, "Email already exists", models.BackendMessage(err, "fallback"))
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusNotFound, map[string]any{"success": false, "message": "Scenario not found"})
		})

		_, err := c.GetScenario(context.Background(), "tok", "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("toggle admin uses PUT", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/user/u2/toggle-admin", r.URL.Path)
			writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "user": map[string]any{"_id": "u2", "isAdmin": true}})
		})

		user, err := c.ToggleAdmin(context.Background(), "tok", "u2")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
	})

	t.Run("delete scenario", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/scenario/s1", r.URL.Path)
			writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
		})

		assert.NoError(t, c.DeleteScenario(context.Background(), "tok", "s1"))
	})
}

func TestSaveScenario(t *testing.T) {
	payload := models.ScenarioPayload{
		Name:  "Route A",
		Theme: models.ThemeDark,
		Stops: []models.Stop{{Name: "A", TravelTimeToNextStop: 30}, {Name: "B", TravelTimeToNextStop: 30}},
	}

	t.Run("create", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			var got models.ScenarioPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, payload.Name, got.Name)
			assert.Len(t, got.Stops, 2)
			writeJSON(t, w, http.StatusCreated, map[string]any{"success": true, "scenario": map[string]any{"_id": "s9", "name": "Route A"}})
		})

		res, err := c.CreateScenario(context.Background(), "tok", payload)
		require.NoError(t, err)
		assert.Equal(t, "s9", res.Scenario.ID)
	})

	t.Run("update reports regeneration", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/scenario/s9", r.URL.Path)
			writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "videoRegenerated": true})
		})

		res, err := c.UpdateScenario(context.Background(), "tok", "s9", payload)
		require.NoError(t, err)
		assert.True(t, res.VideoRegenerated)
		assert.Equal(t, "s9", res.Scenario.ID)
	})
}

func TestOpenVideo(t *testing.T) {
	t.Run("streams body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/scenario/s1/video/download", r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "video/mp4")
			_, _ = w.Write([]byte("mp4-bytes"))
		})

		stream, err := c.OpenVideo(context.Background(), "tok", "s1", client.VideoDownload)
		require.NoError(t, err)
		defer stream.Body.Close()
		data, err := io.ReadAll(stream.Body)
		require.NoError(t, err)
		assert.Equal(t, "mp4-bytes", string(data))
		assert.Equal(t, "video/mp4", stream.ContentType)
	})

	t.Run("missing video", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := c.OpenVideo(context.Background(), "tok", "s1", client.VideoPreview)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("expired token", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := c.OpenVideo(context.Background(), "tok", "s1", client.VideoPreview)
		assert.True(t, errors.Is(err, models.ErrSessionExpired))
	})
}
