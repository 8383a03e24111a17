package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type createHabitRequest struct {
	ID           string  `json:"id"`
	GroupID      *string `json:"group_id"`
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	Color        string  `json:"color"`
	Icon         string  `json:"icon"`
	Type         string  `json:"type"`
	ReminderTime string  `json:"reminder_time"`
	Unit         string  `json:"unit"`
	TargetValue  int     `json:"target_value"`
	Interval     int     `json:"interval"`
	Weekdays     []int   `json:"weekdays"`
	SortOrder    int     `json:"sort_order"`
}

// updateHabitRequest leaves empty fields untouched. A group_id of "" detaches
// the habit from its group; an empty reminder_time clears the reminder.
type updateHabitRequest struct {
	GroupID      *string `json:"group_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Color        string  `json:"color"`
	Icon         string  `json:"icon"`
	Type         string  `json:"type"`
	ReminderTime *string `json:"reminder_time"`
	Unit         string  `json:"unit"`
	TargetValue  int     `json:"target_value"`
	Interval     int     `json:"interval"`
	Weekdays     []int   `json:"weekdays"`
	SortOrder    *int    `json:"sort_order"`
	Version      int     `json:"version"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/sync", h.Sync)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/archive", h.Archive)
		habits.POST("/:id/restore", h.Restore)
	}
}

// Create godoc
// @Summary      Create a habit
// @Description  A client-generated id makes retries idempotent.
// @Tags         habits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createHabitRequest  true  "Habit"
// @Success      201   {object}  domain.Habit
// @Failure      400   {object}  errorResponse
// @Router       /habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		ID:           req.ID,
		UserID:       userID,
		GroupID:      req.GroupID,
		Title:        req.Title,
		Description:  req.Description,
		Color:        req.Color,
		Icon:         req.Icon,
		Type:         req.Type,
		ReminderTime: req.ReminderTime,
		Unit:         req.Unit,
		TargetValue:  req.TargetValue,
		Interval:     req.Interval,
		Weekdays:     req.Weekdays,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

// List godoc
// @Summary      List habits, archived ones included
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Habit
// @Router       /habits [get]
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Get godoc
// @Summary      Get one habit
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Habit ID"
// @Success      200  {object}  domain.Habit
// @Failure      404  {object}  errorResponse
// @Router       /habits/{id} [get]
func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Sync godoc
// @Summary      Habits changed after last_sync, tombstones included
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Param        last_sync  query     string  false  "RFC3339 timestamp"
// @Success      200        {object}  map[string]interface{}
// @Router       /habits/sync [get]
func (h *HabitHandler) Sync(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var lastSync time.Time
	if raw := c.Query("last_sync"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "invalid last_sync format, use RFC3339")
			return
		}
		lastSync = parsed
	}

	deltas, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   deltas,
		"timestamp": time.Now().UTC(),
	})
}

// Update godoc
// @Summary      Update a habit
// @Description  A version that does not match the stored one is rejected with 409.
// @Tags         habits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Habit ID"
// @Param        body  body      updateHabitRequest  true  "Changes"
// @Success      200   {object}  domain.Habit
// @Failure      409   {object}  errorResponse
// @Router       /habits/{id} [put]
func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	habit, err := h.svc.Update(c.Request.Context(), services.UpdateHabitInput{
		ID:           c.Param("id"),
		UserID:       userID,
		GroupID:      req.GroupID,
		Title:        req.Title,
		Description:  req.Description,
		Color:        req.Color,
		Icon:         req.Icon,
		Type:         req.Type,
		ReminderTime: req.ReminderTime,
		Unit:         req.Unit,
		TargetValue:  req.TargetValue,
		Interval:     req.Interval,
		Weekdays:     req.Weekdays,
		SortOrder:    req.SortOrder,
		Version:      req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Delete godoc
// @Summary      Delete a habit
// @Tags         habits
// @Security     BearerAuth
// @Param        id   path  string  true  "Habit ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /habits/{id} [delete]
func (h *HabitHandler) Delete(c *gin.Context) {
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

// Archive godoc
// @Summary      Archive a habit
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Habit ID"
// @Success      200  {object}  domain.Habit
// @Router       /habits/{id}/archive [post]
func (h *HabitHandler) Archive(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Archive(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Restore godoc
// @Summary      Restore an archived habit
// @Tags         habits
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Habit ID"
// @Success      200  {object}  domain.Habit
// @Router       /habits/{id}/restore [post]
func (h *HabitHandler) Restore(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Restore(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}
