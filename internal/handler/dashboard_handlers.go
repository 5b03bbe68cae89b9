package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scenario-admin/internal/export"
	"scenario-admin/internal/messaging"
	"scenario-admin/internal/models"
	"scenario-admin/internal/scenario"
	"scenario-admin/internal/session"
	"scenario-admin/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// loadScenarios returns the session's cached list, fetching and caching it on
// a miss or when fresh is set.
func (h *AdminHandler) loadScenarios(c *gin.Context, sess *session.Session, fresh bool) ([]models.Scenario, error) {
	ctx := c.Request.Context()
	if !fresh {
		list, ok, err := h.sessions.CachedScenarios(ctx, sess.ID)
		if err != nil {
			h.logger.Warn("Failed to read scenario cache", zap.String("sessionID", sess.ID), zap.Error(err))
		} else if ok {
			return list, nil
		}
	}

	start := time.Now()
	list, err := h.backend.ListScenarios(ctx, sess.Token)
	h.logger.Debug("Fetched scenarios from backend", zap.Duration("duration", time.Since(start)), zap.Int("count", len(list)), zap.Error(err))
	if err != nil {
		return nil, err
	}
	h.storeScenarios(c, sess, list)
	return list, nil
}

func (h *AdminHandler) storeScenarios(c *gin.Context, sess *session.Session, list []models.Scenario) {
	if err := h.sessions.CacheScenarios(c.Request.Context(), sess.ID, list); err != nil {
		h.logger.Warn("Failed to update scenario cache", zap.String("sessionID", sess.ID), zap.Error(err))
	}
}

// cachedOnly reads the cache without falling back to the backend.
func (h *AdminHandler) cachedOnly(c *gin.Context, sess *session.Session) []models.Scenario {
	list, ok, err := h.sessions.CachedScenarios(c.Request.Context(), sess.ID)
	if err != nil || !ok {
		return nil
	}
	return list
}

func (h *AdminHandler) refreshSeconds() int {
	secs := int(h.cfg.ScenarioRefreshInterval / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (h *AdminHandler) showDashboard(c *gin.Context) {
	sess := currentSession(c)
	query := strings.TrimSpace(c.Query("q"))
	data := gin.H{
		"Query":          query,
		"RefreshSeconds": h.refreshSeconds(),
	}

	list, err := h.loadScenarios(c, sess, c.Query("refresh") == "1")
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.logger.Error("Failed to load scenarios for dashboard", zap.String("userID", sess.User.ID), zap.Error(err))
		list = h.cachedOnly(c, sess)
		data["Flash"] = &web.Flash{Type: web.FlashError, Message: userMessage(err, "Failed to load scenarios")}
	}

	data["Scenarios"] = web.ScenarioRows(scenario.Filter(list, query))
	h.render(c, http.StatusOK, "dashboard.html", data)
}

// scenarioListPartial is polled by htmx. It always asks the backend and falls
// back to the cached list silently.
func (h *AdminHandler) scenarioListPartial(c *gin.Context) {
	sess := currentSession(c)
	query := strings.TrimSpace(c.Query("q"))

	list, err := h.loadScenarios(c, sess, true)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.logger.Debug("Silent scenario refresh failed, serving cache", zap.Error(err))
		list = h.cachedOnly(c, sess)
	}

	c.HTML(http.StatusOK, "partials/scenario_list.html", gin.H{
		"Query":     query,
		"Scenarios": web.ScenarioRows(scenario.Filter(list, query)),
	})
}

func (h *AdminHandler) exportScenarios(c *gin.Context) {
	sess := currentSession(c)

	list, err := h.loadScenarios(c, sess, false)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.logger.Error("Failed to load scenarios for export", zap.Error(err))
		h.flash(c, web.FlashError, userMessage(err, "Failed to export scenarios"))
		h.redirect(c, "/dashboard")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, list); err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			h.flash(c, web.FlashWarning, "No scenarios available to export")
			h.redirect(c, "/dashboard")
			return
		}
		h.logger.Error("Failed to build CSV export", zap.Error(err))
		h.flash(c, web.FlashError, "Failed to export scenarios")
		h.redirect(c, "/dashboard")
		return
	}

	filename := export.Filename(time.Now())
	scenarioExportsTotal.Inc()
	h.publishAudit(c, messaging.ActionScenariosExported, sess.User, "", filename)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
