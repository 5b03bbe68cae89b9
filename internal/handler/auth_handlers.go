package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"scenario-admin/internal/account"
	"scenario-admin/internal/messaging"
	"scenario-admin/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *AdminHandler) showLoginPage(c *gin.Context) {
	if id, err := c.Cookie(sessionCookieName); err == nil && id != "" {
		if _, err := h.sessions.Get(c.Request.Context(), id); err == nil {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
		h.clearSessionCookie(c)
	}
	h.render(c, http.StatusOK, "login.html", gin.H{})
}

func (h *AdminHandler) handleLogin(c *gin.Context) {
	var form account.LoginForm
	bindErr := c.ShouldBind(&form)
	email := strings.ToLower(strings.TrimSpace(form.Email))
	password := form.Password
	log := h.logger.With(zap.String("email", email))

	if bindErr != nil {
		log.Debug("Login form rejected", zap.Error(bindErr))
		h.render(c, http.StatusUnprocessableEntity, "login.html", gin.H{
			"Email": email,
			"Error": "Please enter your email and password",
		})
		return
	}

	log.Info("Login attempt")
	token, user, err := h.backend.Login(c.Request.Context(), email, password)
	if err != nil {
		log.Warn("Login failed", zap.Error(err))
		loginAttemptsTotal.WithLabelValues("failure").Inc()

		message := "Unable to reach the server. Please try again."
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			message = models.BackendMessage(err, "Login failed. Please check your credentials.")
		case errors.Is(err, context.DeadlineExceeded):
			message = "The server took too long to respond. Please try again."
		case errors.Is(err, models.ErrBackend):
			message = models.BackendMessage(err, "Login failed")
		}
		h.render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Email": email,
			"Error": message,
		})
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), token, user)
	if err != nil {
		log.Error("Failed to create session after login", zap.Error(err))
		h.render(c, http.StatusInternalServerError, "login.html", gin.H{
			"Email": email,
			"Error": "Could not start a session. Please try again.",
		})
		return
	}

	h.setSessionCookie(c, sess)
	loginAttemptsTotal.WithLabelValues("success").Inc()
	log.Info("Login successful", zap.String("userID", user.ID), zap.Bool("isAdmin", user.IsAdmin))
	h.publishAudit(c, messaging.ActionLogin, user, user.ID, user.Email)
	h.redirect(c, "/dashboard")
}

// handleLogout drops the session, its token and the cached scenario list.
func (h *AdminHandler) handleLogout(c *gin.Context) {
	sess := currentSession(c)
	if err := h.sessions.Delete(c.Request.Context(), sess.ID); err != nil {
		h.logger.Error("Failed to delete session on logout", zap.String("sessionID", sess.ID), zap.Error(err))
	}
	h.clearSessionCookie(c)
	h.logger.Info("User logged out", zap.String("userID", sess.User.ID))
	h.publishAudit(c, messaging.ActionLogout, sess.User, sess.User.ID, sess.User.Email)
	h.redirect(c, "/login")
}
