package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"scenario-admin/internal/client/mocks"
	"scenario-admin/internal/config"
	"scenario-admin/internal/messaging"
	"scenario-admin/internal/models"
	"scenario-admin/internal/session"
	"scenario-admin/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.AuditEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e messaging.AuditEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) actions() []messaging.AuditAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]messaging.AuditAction, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

type testEnv struct {
	cfg      *config.Config
	router   *gin.Engine
	backend  *mocks.Backend
	sessions session.Store
	audit    *recordingPublisher
}

var (
	adminUser   = models.User{ID: "u1", FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", IsAdmin: true}
	regularUser = models.User{ID: "u2", FirstName: "Bob", LastName: "Ray", Email: "bob@example.com"}
)

func newTestEnv(t *testing.T, loginLimiter gin.HandlerFunc) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		SessionSecret:           "test-secret",
		SessionTTL:              time.Hour,
		ScenarioRefreshInterval: 5 * time.Second,
	}
	env := &testEnv{
		cfg:      cfg,
		backend:  new(mocks.Backend),
		sessions: session.NewMemoryStore(time.Hour, zap.NewNop()),
		audit:    &recordingPublisher{},
	}

	renderer, err := web.NewRenderer(web.Templates(), false, zap.NewNop())
	require.NoError(t, err)

	router := gin.New()
	router.HTMLRender = renderer
	router.Use(CustomErrorMiddleware(zap.NewNop()))
	NewAdminHandler(cfg, zap.NewNop(), env.backend, env.sessions, env.audit).RegisterRoutes(router, loginLimiter)
	env.router = router

	t.Cleanup(func() { env.backend.AssertExpectations(t) })
	return env
}

// signIn creates a session directly in the store and returns its cookie.
func (e *testEnv) signIn(t *testing.T, user models.User) (*http.Cookie, *session.Session) {
	t.Helper()
	sess, err := e.sessions.Create(context.Background(), "tok", user)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookieName, Value: sess.ID}, sess
}

func (e *testEnv) cache(t *testing.T, sess *session.Session, list []models.Scenario) {
	t.Helper()
	require.NoError(t, e.sessions.CacheScenarios(context.Background(), sess.ID, list))
}

func (e *testEnv) cached(t *testing.T, sess *session.Session) []models.Scenario {
	t.Helper()
	list, _, err := e.sessions.CachedScenarios(context.Background(), sess.ID)
	require.NoError(t, err)
	return list
}

func (e *testEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	return nil
}

// flashOf decodes the flash cookie set by a response, if any.
func flashOf(t *testing.T, w *httptest.ResponseRecorder, secret string) *web.Flash {
	t.Helper()
	cookie := responseCookie(w, flashCookieName)
	if cookie == nil {
		return nil
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	flash, err := newFlashCookies(secret, false).pop(c)
	require.NoError(t, err)
	return flash
}

func sampleScenarios() []models.Scenario {
	return []models.Scenario{
		{
			ID:          "s1",
			Name:        "Route A",
			Theme:       models.ThemeDark,
			VideoStatus: models.VideoStatusCompleted,
			Stops: []models.Stop{
				{Name: "Depot", TravelTimeToNextStop: 60},
				{Name: "Square", TravelTimeToNextStop: 30},
			},
		},
		{
			ID:          "s2",
			Name:        "Harbour",
			Theme:       models.ThemeLight,
			VideoStatus: models.VideoStatusGenerating,
			Stops:       []models.Stop{{Name: "Pier", TravelTimeToNextStop: 30}},
		},
	}
}

func recordRequest(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
