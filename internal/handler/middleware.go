package handler

import (
	"errors"
	"net/http"

	"scenario-admin/internal/models"
	"scenario-admin/internal/session"
	"scenario-admin/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionCookieName = "admin_session"
	sessionContextKey = "session"

	sessionExpiredMessage = "Your session has expired. Please login again."
)

// sessionMiddleware loads the session named by the cookie or sends the browser
// to the login page.
func (h *AdminHandler) sessionMiddleware(c *gin.Context) {
	log := h.logger.With(zap.String("middleware", "sessionMiddleware"))

	id, err := c.Cookie(sessionCookieName)
	if err != nil || id == "" {
		log.Debug("No session cookie, redirecting to login", zap.String("path", c.Request.URL.Path))
		h.redirect(c, "/login")
		c.Abort()
		return
	}

	sess, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			log.Info("Session expired or unknown", zap.String("sessionID", id))
			h.flash(c, web.FlashWarning, sessionExpiredMessage)
		} else {
			log.Error("Failed to load session", zap.String("sessionID", id), zap.Error(err))
		}
		h.clearSessionCookie(c)
		h.redirect(c, "/login")
		c.Abort()
		return
	}

	c.Set(sessionContextKey, sess)
	c.Next()
}

// adminOnly keeps non-admins out of the user management pages.
func (h *AdminHandler) adminOnly(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil || !sess.User.IsAdmin {
		userID := ""
		if sess != nil {
			userID = sess.User.ID
		}
		h.logger.Warn("Non-admin tried to access admin page", zap.String("userID", userID), zap.String("path", c.Request.URL.Path))
		h.flash(c, web.FlashError, "Admin access only")
		h.redirect(c, "/dashboard")
		c.Abort()
		return
	}
	c.Next()
}

func currentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

func (h *AdminHandler) setSessionCookie(c *gin.Context, sess *session.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, sess.ID, int(h.cfg.SessionTTL.Seconds()), "/", "", h.cfg.CookieSecure, true)
}

func (h *AdminHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", h.cfg.CookieSecure, true)
}

// sessionExpired handles a backend 401: the session and everything cached
// for it are dropped and the browser goes back to login. It reports whether
// err was such a rejection.
func (h *AdminHandler) sessionExpired(c *gin.Context, err error) bool {
	if !errors.Is(err, models.ErrSessionExpired) {
		return false
	}
	if sess := currentSession(c); sess != nil {
		h.logger.Info("Backend rejected session token, logging out", zap.String("userID", sess.User.ID))
		if delErr := h.sessions.Delete(c.Request.Context(), sess.ID); delErr != nil {
			h.logger.Error("Failed to delete expired session", zap.String("sessionID", sess.ID), zap.Error(delErr))
		}
	}
	sessionExpiriesTotal.Inc()
	h.clearSessionCookie(c)
	h.flash(c, web.FlashWarning, sessionExpiredMessage)
	h.redirect(c, "/login")
	c.Abort()
	return true
}

// userMessage turns a backend or transport error into a banner text.
func userMessage(err error, fallback string) string {
	if errors.Is(err, models.ErrForbidden) {
		return "You do not have permission to perform this action."
	}
	return models.BackendMessage(err, fallback)
}
