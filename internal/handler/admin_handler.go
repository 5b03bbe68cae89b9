package handler

import (
	"context"
	"net/http"
	"time"

	"scenario-admin/internal/account"
	"scenario-admin/internal/client"
	"scenario-admin/internal/config"
	"scenario-admin/internal/messaging"
	"scenario-admin/internal/models"
	"scenario-admin/internal/session"
	"scenario-admin/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the scenario admin web UI.
type AdminHandler struct {
	logger   *zap.Logger
	cfg      *config.Config
	backend  client.Backend
	sessions session.Store
	audit    messaging.AuditPublisher
	flashes  *flashCookies
}

func NewAdminHandler(
	cfg *config.Config,
	logger *zap.Logger,
	backend client.Backend,
	sessions session.Store,
	audit messaging.AuditPublisher,
) *AdminHandler {
	if cfg == nil {
		logger.Fatal("Config is nil during AdminHandler initialization")
	}
	if audit == nil {
		audit = messaging.NewNopPublisher(logger)
	}
	account.RegisterValidators()
	return &AdminHandler{
		logger:   logger.Named("AdminHandler"),
		cfg:      cfg,
		backend:  backend,
		sessions: sessions,
		audit:    audit,
		flashes:  newFlashCookies(cfg.SessionSecret, cfg.CookieSecure),
	}
}

// RegisterRoutes mounts every page. loginLimiter may be nil.
func (h *AdminHandler) RegisterRoutes(router *gin.Engine, loginLimiter gin.HandlerFunc) {
	router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/login") })
	router.GET("/health", h.healthCheck)
	router.GET("/login", h.showLoginPage)

	loginChain := []gin.HandlerFunc{}
	if loginLimiter != nil {
		loginChain = append(loginChain, loginLimiter)
	}
	router.POST("/login", append(loginChain, h.handleLogin)...)

	authGroup := router.Group("", h.sessionMiddleware)
	{
		authGroup.GET("/logout", h.handleLogout)
		authGroup.GET("/dashboard", h.showDashboard)
		authGroup.GET("/dashboard/scenarios", h.scenarioListPartial)
		authGroup.GET("/dashboard/export", h.exportScenarios)

		scenarioGroup := authGroup.Group("/scenarios")
		{
			scenarioGroup.GET("/new", h.showNewScenario)
			scenarioGroup.POST("/new", h.handleNewScenario)
			scenarioGroup.GET("/:id/edit", h.showEditScenario)
			scenarioGroup.POST("/:id/edit", h.handleEditScenario)
			scenarioGroup.POST("/:id/delete", h.handleDeleteScenario)
			scenarioGroup.GET("/:id/video/:kind", h.streamVideo)
		}

		userGroup := authGroup.Group("/users", h.adminOnly)
		{
			userGroup.GET("", h.listUsers)
			userGroup.GET("/new", h.showNewUser)
			userGroup.POST("/new", h.handleNewUser)
			userGroup.POST("/:id/delete", h.handleDeleteUser)
			userGroup.POST("/:id/toggle-admin", h.handleToggleAdmin)
		}
	}
}

func (h *AdminHandler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// render adds the signed-in user and any pending flash message to data.
func (h *AdminHandler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if sess := currentSession(c); sess != nil {
		user := sess.User
		data["User"] = &user
	}
	if _, ok := data["Flash"]; !ok {
		if flash := h.popFlash(c); flash != nil {
			data["Flash"] = flash
		}
	}
	c.HTML(status, name, data)
}

func (h *AdminHandler) flash(c *gin.Context, kind, message string) {
	if err := h.flashes.set(c, web.Flash{Type: kind, Message: message}); err != nil {
		h.logger.Error("Failed to set flash message", zap.Error(err))
	}
}

func (h *AdminHandler) popFlash(c *gin.Context) *web.Flash {
	flash, err := h.flashes.pop(c)
	if err != nil {
		h.logger.Warn("Discarding invalid flash cookie", zap.Error(err))
		return nil
	}
	return flash
}

// redirect sends a 303, or HX-Redirect when the request came from htmx.
func (h *AdminHandler) redirect(c *gin.Context, location string) {
	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Redirect", location)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}

// publishAudit never fails the request; broker problems are only logged.
func (h *AdminHandler) publishAudit(c *gin.Context, action messaging.AuditAction, actor models.User, subjectID, subjectName string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 5*time.Second)
	defer cancel()
	event := messaging.NewAuditEvent(action, actor, subjectID, subjectName)
	if err := h.audit.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish audit event",
			zap.String("action", string(action)),
			zap.String("subjectID", subjectID),
			zap.Error(err),
		)
	}
}
