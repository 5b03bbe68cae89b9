package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"scenario-admin/internal/client"
	"scenario-admin/internal/messaging"
	"scenario-admin/internal/models"
	"scenario-admin/internal/scenario"
	"scenario-admin/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	createSuccessMessage   = "Scenario created successfully!\n\nVideo is being generated and will be available shortly."
	updateSuccessMessage   = "Scenario updated successfully!"
	videoRegeneratedNotice = "Video will be regenerated due to changes in stops."
	videoUnchangedNotice   = "Video remains unchanged."
	videoNotReadyMessage   = "Video is still being generated. Please wait a moment and try again."
)

func (h *AdminHandler) renderScenarioForm(c *gin.Context, status int, draft *scenario.Draft, formErr string) {
	action := "/scenarios/new"
	if draft.IsEdit() {
		action = "/scenarios/" + draft.ID + "/edit"
	}
	h.render(c, status, "scenario_form.html", gin.H{
		"Draft":      draft,
		"FormAction": action,
		"Error":      formErr,
	})
}

func (h *AdminHandler) showNewScenario(c *gin.Context) {
	h.renderScenarioForm(c, http.StatusOK, scenario.NewDraft(), "")
}

func (h *AdminHandler) showEditScenario(c *gin.Context) {
	sess := currentSession(c)
	id := c.Param("id")

	// Always the backend copy: saving replaces the whole scenario.
	s, err := h.backend.GetScenario(c.Request.Context(), sess.Token, id)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		h.logger.Warn("Scenario to edit not available", zap.String("scenarioID", id), zap.String("userID", sess.User.ID), zap.Error(err))
		message := userMessage(err, "Failed to load scenario")
		if errors.Is(err, models.ErrNotFound) {
			message = "Scenario not found"
		}
		h.flash(c, web.FlashError, message)
		h.redirect(c, "/dashboard")
		return
	}
	if s.ID == "" {
		s.ID = id
	}
	h.renderScenarioForm(c, http.StatusOK, scenario.DraftFromScenario(s), "")
}

// findScenario looks in the session cache first and asks the backend otherwise.
// Only the video status check reads through it.
func (h *AdminHandler) findScenario(c *gin.Context, id string) (models.Scenario, error) {
	sess := currentSession(c)
	if list := h.cachedOnly(c, sess); list != nil {
		if s, ok := scenario.Find(list, id); ok {
			return s, nil
		}
	}
	return h.backend.GetScenario(c.Request.Context(), sess.Token, id)
}

func (h *AdminHandler) handleNewScenario(c *gin.Context) {
	h.handleScenarioForm(c, "")
}

func (h *AdminHandler) handleEditScenario(c *gin.Context) {
	h.handleScenarioForm(c, c.Param("id"))
}

// handleScenarioForm applies a structural edit and re-renders, or validates
// and saves when the action is save.
func (h *AdminHandler) handleScenarioForm(c *gin.Context, id string) {
	sess := currentSession(c)
	if err := c.Request.ParseForm(); err != nil {
		h.renderScenarioForm(c, http.StatusBadRequest, scenario.NewDraft(), "Invalid form data")
		return
	}

	draft := scenario.DraftFromForm(id, c.Request.PostForm)
	if draft.Apply(scenario.ParseAction(c.Request.PostForm.Get(scenario.FieldAction))) {
		h.renderScenarioForm(c, http.StatusOK, draft, "")
		return
	}

	if err := scenario.Validate(draft); err != nil {
		h.renderScenarioForm(c, http.StatusUnprocessableEntity, draft, err.Error())
		return
	}

	log := h.logger.With(zap.String("userID", sess.User.ID), zap.String("scenarioID", id))
	payload := draft.Payload()
	var (
		result models.SaveResult
		err    error
	)
	if draft.IsEdit() {
		result, err = h.backend.UpdateScenario(c.Request.Context(), sess.Token, id, payload)
	} else {
		result, err = h.backend.CreateScenario(c.Request.Context(), sess.Token, payload)
	}
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		log.Error("Failed to save scenario", zap.Bool("edit", draft.IsEdit()), zap.Error(err))
		fallback := "Failed to create scenario"
		if draft.IsEdit() {
			fallback = "Failed to update scenario"
		}
		h.renderScenarioForm(c, http.StatusBadGateway, draft, userMessage(err, fallback))
		return
	}

	saved := savedScenario(result.Scenario, id, payload)
	h.cacheSaved(c, saved)

	if draft.IsEdit() {
		scenarioSavesTotal.WithLabelValues("update").Inc()
		notice := videoUnchangedNotice
		if result.VideoRegenerated {
			notice = videoRegeneratedNotice
		}
		log.Info("Scenario updated", zap.Bool("videoRegenerated", result.VideoRegenerated))
		h.publishAudit(c, messaging.ActionScenarioUpdated, sess.User, saved.ID, saved.Name)
		h.flash(c, web.FlashSuccess, updateSuccessMessage+"\n\n"+notice)
	} else {
		scenarioSavesTotal.WithLabelValues("create").Inc()
		log.Info("Scenario created", zap.String("newScenarioID", saved.ID))
		h.publishAudit(c, messaging.ActionScenarioCreated, sess.User, saved.ID, saved.Name)
		h.flash(c, web.FlashSuccess, createSuccessMessage)
	}
	h.redirect(c, "/dashboard")
}

// savedScenario fills in whatever the backend left out of its reply.
func savedScenario(s models.Scenario, id string, payload models.ScenarioPayload) models.Scenario {
	if s.ID == "" {
		s.ID = id
	}
	if s.Name == "" {
		s.Name = payload.Name
		s.Theme = payload.Theme
		s.Stops = payload.Stops
	}
	s.VideoStatus = s.VideoStatus.Normalize()
	return s
}

// cacheSaved replaces or prepends the saved scenario in the cached list. A
// reply without an ID drops the cache so the next view refetches.
func (h *AdminHandler) cacheSaved(c *gin.Context, saved models.Scenario) {
	sess := currentSession(c)
	list, ok, err := h.sessions.CachedScenarios(c.Request.Context(), sess.ID)
	if err != nil || !ok {
		return
	}
	if saved.ID == "" {
		if fresh, err := h.backend.ListScenarios(c.Request.Context(), sess.Token); err == nil {
			h.storeScenarios(c, sess, fresh)
		}
		return
	}
	h.storeScenarios(c, sess, scenario.Upsert(list, saved))
}

// handleDeleteScenario removes the scenario from the cached list before the
// backend call and puts it back if the call fails.
func (h *AdminHandler) handleDeleteScenario(c *gin.Context) {
	sess := currentSession(c)
	id := c.Param("id")
	log := h.logger.With(zap.String("userID", sess.User.ID), zap.String("scenarioID", id))

	previous := h.cachedOnly(c, sess)
	name := ""
	if s, ok := scenario.Find(previous, id); ok {
		name = s.Name
	}
	if previous != nil {
		h.storeScenarios(c, sess, scenario.Remove(previous, id))
	}

	if err := h.backend.DeleteScenario(c.Request.Context(), sess.Token, id); err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		log.Error("Failed to delete scenario, restoring cache", zap.Error(err))
		if previous != nil {
			h.storeScenarios(c, sess, previous)
		}
		h.flash(c, web.FlashError, userMessage(err, "Failed to delete scenario"))
		h.redirect(c, "/dashboard")
		return
	}

	scenarioDeletesTotal.Inc()
	log.Info("Scenario deleted")
	h.publishAudit(c, messaging.ActionScenarioDeleted, sess.User, id, name)
	h.flash(c, web.FlashSuccess, "Scenario deleted successfully")
	h.redirect(c, "/dashboard")
}

// streamVideo proxies the preview or download rendition once the video is ready.
func (h *AdminHandler) streamVideo(c *gin.Context) {
	sess := currentSession(c)
	id := c.Param("id")
	kind := client.VideoKind(c.Param("kind"))
	if kind != client.VideoPreview && kind != client.VideoDownload {
		c.Status(http.StatusNotFound)
		return
	}
	log := h.logger.With(zap.String("scenarioID", id), zap.String("kind", string(kind)))

	s, err := h.findScenario(c, id)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		log.Warn("Scenario for video not available", zap.Error(err))
		h.flash(c, web.FlashError, userMessage(err, "Scenario not found"))
		h.redirect(c, "/dashboard")
		return
	}
	if !s.VideoStatus.Ready() {
		log.Info("Video requested before it was ready", zap.String("status", string(s.VideoStatus)))
		h.flash(c, web.FlashWarning, videoNotReadyMessage)
		h.redirect(c, "/dashboard")
		return
	}

	stream, err := h.backend.OpenVideo(c.Request.Context(), sess.Token, id, kind)
	if err != nil {
		if h.sessionExpired(c, err) {
			return
		}
		log.Error("Failed to open video stream", zap.Error(err))
		message := userMessage(err, "Failed to load video")
		if errors.Is(err, models.ErrNotFound) {
			message = videoNotReadyMessage
		}
		h.flash(c, web.FlashError, message)
		h.redirect(c, "/dashboard")
		return
	}
	defer stream.Body.Close()

	contentType := stream.ContentType
	if contentType == "" {
		contentType = "video/mp4"
	}
	headers := map[string]string{}
	if kind == client.VideoDownload {
		headers["Content-Disposition"] = fmt.Sprintf(`attachment; filename="%s"`, videoFilename(s.Name))
	}
	videoStreamsTotal.WithLabelValues(string(kind)).Inc()
	c.DataFromReader(http.StatusOK, stream.ContentLength, contentType, stream.Body, headers)
}

func videoFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '/', '\r', '\n':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "scenario"
	}
	return name + ".mp4"
}
