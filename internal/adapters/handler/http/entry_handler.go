package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

type EntryHandler struct {
	svc *services.EntryService
}

func NewEntryHandler(svc *services.EntryService) *EntryHandler {
	return &EntryHandler{
		svc: svc,
	}
}

type createEntryRequest struct {
	HabitID string          `json:"habit_id" binding:"required"`
	Date    string          `json:"date" binding:"required"`
	Status  calendar.Status `json:"status"`
	Value   int             `json:"value"`
	Notes   string          `json:"notes"`
}

type updateEntryRequest struct {
	Status  calendar.Status `json:"status"`
	Value   int             `json:"value"`
	Notes   string          `json:"notes"`
	Version int             `json:"version" binding:"required"`
}

func (h *EntryHandler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/entries")
	{
		entries.POST("", h.Create)
		entries.GET("", h.ListByHabit)
		entries.GET("/sync", h.Sync)
		entries.PUT("/:id", h.Update)
		entries.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary      Record a log entry for a day
// @Tags         entries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEntryRequest  true  "Entry"
// @Success      201   {object}  domain.HabitEntry
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /entries [post]
func (h *EntryHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.svc.Create(c.Request.Context(), services.CreateEntryInput{
		HabitID: req.HabitID,
		UserID:  userID,
		Date:    req.Date,
		Status:  req.Status,
		Value:   req.Value,
		Notes:   req.Notes,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Update godoc
// @Summary      Update a log entry
// @Tags         entries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Entry ID"
// @Param        body  body      updateEntryRequest  true  "Changes"
// @Success      200   {object}  domain.HabitEntry
// @Failure      409   {object}  errorResponse
// @Router       /entries/{id} [put]
func (h *EntryHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.svc.Update(c.Request.Context(), services.UpdateEntryInput{
		ID:      c.Param("id"),
		UserID:  userID,
		Status:  req.Status,
		Value:   req.Value,
		Notes:   req.Notes,
		Version: req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Delete godoc
// @Summary      Delete a log entry
// @Tags         entries
// @Security     BearerAuth
// @Param        id   path  string  true  "Entry ID"
// @Success      204
// @Router       /entries/{id} [delete]
func (h *EntryHandler) Delete(c *gin.Context) {
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

// ListByHabit godoc
// @Summary      Entries of a habit between two days
// @Tags         entries
// @Produce      json
// @Security     BearerAuth
// @Param        habit_id  query     string  true   "Habit ID"
// @Param        from      query     string  false  "YYYY-MM-DD, inclusive"
// @Param        to        query     string  false  "YYYY-MM-DD, inclusive"
// @Success      200       {array}   domain.HabitEntry
// @Router       /entries [get]
func (h *EntryHandler) ListByHabit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habitID := c.Query("habit_id")
	if habitID == "" {
		badRequest(c, "habit_id is required")
		return
	}

	list, err := h.svc.ListByHabitID(c.Request.Context(), habitID, userID, c.Query("from"), c.Query("to"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Sync godoc
// @Summary      Entries changed after since, tombstones included
// @Tags         entries
// @Produce      json
// @Security     BearerAuth
// @Param        since  query     string  false  "RFC3339 timestamp"
// @Success      200    {object}  map[string]interface{}
// @Router       /entries/sync [get]
func (h *EntryHandler) Sync(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "invalid date format (use RFC3339)")
			return
		}
		since = parsed
	}

	changes, err := h.svc.GetDelta(c.Request.Context(), userID, since)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   changes,
		"timestamp": time.Now().UTC(),
	})
}
