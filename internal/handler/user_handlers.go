package handler

import (
	"net/http"
	"strconv"
	"strings"

	"scenario-admin/internal/account"
	"scenario-admin/internal/messaging"
	"scenario-admin/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *AdminHandler) listUsers(c *gin.Context) {
	sess := currentSession(c)
	query := strings.TrimSpace(c.Query("q"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(account.PageSizes[0])))

	data := gin.H{
		"Query":     query,
		"PageSizes": account.PageSizes,
	}

	users, err := h.backend.ListUsers(c.Request.Context(), sess.Token)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.logger.Error("Failed to fetch users", zap.String("userID", sess.User.ID), zap.Error(err))
		data["Flash"] = &web.Flash{Type: web.FlashError, Message: userMessage(err, "Failed to fetch users")}
	}

	visible := account.Filter(account.ExcludeSelf(users, sess.User.ID), query)
	data["Page"] = account.Paginate(visible, page, perPage)
	h.render(c, http.StatusOK, "users.html", data)
}

func (h *AdminHandler) showNewUser(c *gin.Context) {
	h.render(c, http.StatusOK, "user_new.html", gin.H{"Form": account.NewUserForm{}})
}

func (h *AdminHandler) handleNewUser(c *gin.Context) {
	sess := currentSession(c)

	var form account.NewUserForm
	if err := c.ShouldBind(&form); err != nil {
		// never echo passwords back into the page
		echo := form.WithoutPasswords()
		if verr, ok := account.AsValidationError(err); ok {
			h.render(c, http.StatusUnprocessableEntity, "user_new.html", gin.H{"Form": echo, "Error": verr.Error()})
			return
		}
		h.logger.Warn("Failed to bind new user form", zap.Error(err))
		h.render(c, http.StatusBadRequest, "user_new.html", gin.H{"Form": echo, "Error": "Invalid form data"})
		return
	}
	echo := form.WithoutPasswords()

	payload := form.Payload()
	log := h.logger.With(zap.String("adminID", sess.User.ID), zap.String("email", payload.Email))
	created, err := h.backend.CreateUser(c.Request.Context(), sess.Token, payload)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		log.Error("Failed to create user", zap.Error(err))
		h.render(c, http.StatusBadGateway, "user_new.html", gin.H{"Form": echo, "Error": userMessage(err, "Failed to create user")})
		return
	}

	userAdminActionsTotal.WithLabelValues("create").Inc()
	log.Info("User created", zap.String("newUserID", created.ID), zap.Bool("isAdmin", payload.IsAdmin))
	h.publishAudit(c, messaging.ActionUserCreated, sess.User, created.ID, payload.Email)
	h.flash(c, web.FlashSuccess, "User created successfully!")
	h.redirect(c, "/users")
}

func (h *AdminHandler) handleDeleteUser(c *gin.Context) {
	sess := currentSession(c)
	id := c.Param("id")
	log := h.logger.With(zap.String("adminID", sess.User.ID), zap.String("targetUserID", id))

	if id == sess.User.ID {
		log.Warn("Refusing self-delete")
		h.flash(c, web.FlashError, "You cannot delete your own account")
		h.redirect(c, "/users")
		return
	}

	if err := h.backend.DeleteUser(c.Request.Context(), sess.Token, id); err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		log.Error("Failed to delete user", zap.Error(err))
		h.flash(c, web.FlashError, userMessage(err, "Failed to delete user"))
		h.redirect(c, "/users")
		return
	}

	userAdminActionsTotal.WithLabelValues("delete").Inc()
	log.Info("User deleted")
	h.publishAudit(c, messaging.ActionUserDeleted, sess.User, id, "")
	h.flash(c, web.FlashSuccess, "User deleted successfully")
	h.redirect(c, "/users")
}

func (h *AdminHandler) handleToggleAdmin(c *gin.Context) {
	sess := currentSession(c)
	id := c.Param("id")
	log := h.logger.With(zap.String("adminID", sess.User.ID), zap.String("targetUserID", id))

	if id == sess.User.ID {
		h.flash(c, web.FlashError, "You cannot change your own admin status")
		h.redirect(c, "/users")
		return
	}

	updated, err := h.backend.ToggleAdmin(c.Request.Context(), sess.Token, id)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		log.Error("Failed to toggle admin status", zap.Error(err))
		h.flash(c, web.FlashError, userMessage(err, "Failed to update user role"))
		h.redirect(c, "/users")
		return
	}

	userAdminActionsTotal.WithLabelValues("toggle_admin").Inc()
	log.Info("Admin status toggled", zap.Bool("isAdmin", updated.IsAdmin))
	h.publishAudit(c, messaging.ActionUserAdminToggled, sess.User, id, updated.Email)
	h.flash(c, web.FlashSuccess, "User role updated successfully")
	h.redirect(c, "/users")
}
