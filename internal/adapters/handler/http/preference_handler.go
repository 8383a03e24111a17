package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

type PreferenceHandler struct {
	svc *services.PreferenceService
}

func NewPreferenceHandler(svc *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

func (h *PreferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	prefs := router.Group("/preferences")
	{
		prefs.GET("", h.Get)
		prefs.PUT("", h.Update)
		prefs.DELETE("", h.Reset)
	}
}

// Get godoc
// @Summary      Current preferences, defaults filled in
// @Tags         preferences
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Preferences
// @Router       /preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.svc.Get(c.Request.Context(), userID))
}

// Update godoc
// @Summary      Change some preferences
// @Description  Omitted keys keep their value.
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.PreferencePatch  true  "Changes"
// @Success      200   {object}  domain.Preferences
// @Failure      400   {object}  errorResponse
// @Router       /preferences [put]
func (h *PreferenceHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var patch domain.PreferencePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}

	prefs, err := h.svc.Update(c.Request.Context(), userID, patch)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// Reset godoc
// @Summary      Restore the default preferences
// @Tags         preferences
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Preferences
// @Router       /preferences [delete]
func (h *PreferenceHandler) Reset(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	prefs, err := h.svc.Reset(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}
