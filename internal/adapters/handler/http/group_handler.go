package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

type GroupHandler struct {
	svc *services.GroupService
}

func NewGroupHandler(svc *services.GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

type groupRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (h *GroupHandler) RegisterRoutes(router *gin.RouterGroup) {
	groups := router.Group("/groups")
	{
		groups.POST("", h.Create)
		groups.GET("", h.List)
		groups.PUT("/:id", h.Update)
		groups.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary      Create a habit group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      groupRequest  true  "Group"
// @Success      201   {object}  domain.Group
// @Failure      400   {object}  errorResponse
// @Router       /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	group, err := h.svc.Create(c.Request.Context(), services.GroupInput{
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
		Icon:   req.Icon,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// List godoc
// @Summary      List habit groups
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Group
// @Router       /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	groups, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// Update godoc
// @Summary      Rename or restyle a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Group ID"
// @Param        body  body      groupRequest  true  "Group"
// @Success      200   {object}  domain.Group
// @Failure      404   {object}  errorResponse
// @Router       /groups/{id} [put]
func (h *GroupHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	group, err := h.svc.Update(c.Request.Context(), c.Param("id"), services.GroupInput{
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
		Icon:   req.Icon,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// Delete godoc
// @Summary      Delete a group
// @Description  Habits of the group are kept and detached.
// @Tags         groups
// @Security     BearerAuth
// @Param        id   path  string  true  "Group ID"
// @Success      204
// @Router       /groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
