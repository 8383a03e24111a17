package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

// ViewHandler serves the computed views of a habit's log and the day toggles
// that feed it.
type ViewHandler struct {
	views   *services.ViewService
	entries *services.EntryService
}

func NewViewHandler(views *services.ViewService, entries *services.EntryService) *ViewHandler {
	return &ViewHandler{
		views:   views,
		entries: entries,
	}
}

type toggleRequest struct {
	Date string `json:"date"`
}

func (h *ViewHandler) RegisterRoutes(router *gin.RouterGroup) {
	habit := router.Group("/habits/:id")
	{
		habit.GET("/logs", h.Logs)
		habit.GET("/grid", h.Grid)
		habit.GET("/calendar", h.Calendar)
		habit.GET("/streak", h.Streak)
		habit.POST("/toggle", h.Toggle)
		habit.POST("/complete", h.Complete)
	}
	router.GET("/overview", h.Overview)
}

// viewOptions reads the per-request overrides. Only a malformed weeks value
// is rejected here; the service validates the rest.
func viewOptions(c *gin.Context) (services.ViewOptions, bool) {
	opts := services.ViewOptions{
		WeekStart: c.Query("week_start"),
		Timezone:  c.Query("tz"),
		Month:     c.Query("month"),
	}
	if raw := c.Query("weeks"); raw != "" {
		weeks, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "weeks must be an integer")
			return opts, false
		}
		if weeks < 1 {
			badRequest(c, "weeks must be at least 1")
			return opts, false
		}
		opts.Weeks = weeks
	}
	return opts, true
}

// Logs godoc
// @Summary      Raw log of a habit
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "Habit ID"
// @Param        from  query     string  false  "YYYY-MM-DD, inclusive"
// @Param        to    query     string  false  "YYYY-MM-DD, inclusive"
// @Success      200   {array}   domain.HabitEntry
// @Router       /habits/{id}/logs [get]
func (h *ViewHandler) Logs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.entries.ListByHabitID(c.Request.Context(), c.Param("id"), userID, c.Query("from"), c.Query("to"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Grid godoc
// @Summary      Rolling week grid ending with the current week
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string   true   "Habit ID"
// @Param        weeks       query     integer  false  "1-53, overrides grid_weeks"
// @Param        week_start  query     string   false  "Weekday name, overrides week_starts_on"
// @Param        tz          query     string   false  "IANA zone, overrides timezone"
// @Success      200         {object}  domain.HabitGrid
// @Failure      400         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /habits/{id}/grid [get]
func (h *ViewHandler) Grid(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	opts, ok := viewOptions(c)
	if !ok {
		return
	}

	grid, err := h.views.Grid(c.Request.Context(), c.Param("id"), userID, opts)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, grid)
}

// Calendar godoc
// @Summary      One month page of a habit
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string  true   "Habit ID"
// @Param        month       query     string  false  "YYYY-MM, defaults to the current month"
// @Param        week_start  query     string  false  "Weekday name"
// @Param        tz          query     string  false  "IANA zone"
// @Success      200         {object}  domain.HabitCalendar
// @Router       /habits/{id}/calendar [get]
func (h *ViewHandler) Calendar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	opts, ok := viewOptions(c)
	if !ok {
		return
	}

	page, err := h.views.Calendar(c.Request.Context(), c.Param("id"), userID, opts)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Streak godoc
// @Summary      Current and longest streak
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true   "Habit ID"
// @Param        tz   query     string  false  "IANA zone"
// @Success      200  {object}  domain.StreakSummary
// @Router       /habits/{id}/streak [get]
func (h *ViewHandler) Streak(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	opts, ok := viewOptions(c)
	if !ok {
		return
	}

	summary, err := h.views.Streak(c.Request.Context(), c.Param("id"), userID, opts)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Toggle godoc
// @Summary      Flip the completion of one day
// @Description  An empty date toggles today. Days after today are rejected with 422.
// @Tags         views
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true   "Habit ID"
// @Param        tz    query     string         false  "IANA zone"
// @Param        body  body      toggleRequest  false  "Day"
// @Success      200   {object}  services.ToggleResult
// @Failure      422   {object}  errorResponse
// @Router       /habits/{id}/toggle [post]
func (h *ViewHandler) Toggle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req toggleRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	now, err := h.views.Now(ctx, userID, c.Query("tz"))
	if err != nil {
		handleError(c, err)
		return
	}

	date := req.Date
	if date == "" {
		date = calendar.ToLocalDateKey(now)
	}

	result, err := h.entries.Toggle(ctx, c.Param("id"), userID, date, now)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Complete godoc
// @Summary      Mark today as completed
// @Description  Idempotent: completing an already completed day changes nothing.
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true   "Habit ID"
// @Param        tz   query     string  false  "IANA zone"
// @Success      200  {object}  services.ToggleResult
// @Router       /habits/{id}/complete [post]
func (h *ViewHandler) Complete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	now, err := h.views.Now(ctx, userID, c.Query("tz"))
	if err != nil {
		handleError(c, err)
		return
	}

	result, err := h.entries.CompleteToday(ctx, c.Param("id"), userID, now)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Overview godoc
// @Summary      Dashboard of every active habit
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Param        weeks       query     integer  false  "1-53"
// @Param        week_start  query     string   false  "Weekday name"
// @Param        tz          query     string   false  "IANA zone"
// @Success      200         {object}  domain.Overview
// @Router       /overview [get]
func (h *ViewHandler) Overview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	opts, ok := viewOptions(c)
	if !ok {
		return
	}

	overview, err := h.views.Overview(c.Request.Context(), userID, opts)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
