package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

const maxStatsRangeDays = 366

type StatsHandler struct {
	svc   *services.StatsService
	views *services.ViewService
}

func NewStatsHandler(svc *services.StatsService, views *services.ViewService) *StatsHandler {
	return &StatsHandler{svc: svc, views: views}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/weekly", h.GetWeeklyStats)
	r.GET("/habits/:id/progress", h.HabitProgress)
}

// GetWeeklyStats godoc
// @Summary      Completion statistics per habit
// @Description  Defaults to the seven days ending today in the user's zone. Ranges span at most 366 days.
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Param        tz          query     string  false  "IANA zone, overrides the preference"
// @Success      200         {object}  domain.WeeklyStats
// @Failure      400         {object}  errorResponse
// @Router       /stats/weekly [get]
func (h *StatsHandler) GetWeeklyStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	now, err := h.views.Now(c.Request.Context(), userID, c.Query("tz"))
	if err != nil {
		handleError(c, err)
		return
	}
	loc := now.Location()

	endKey := calendar.ToLocalDateKey(now)
	if raw := c.Query("end_date"); raw != "" {
		if !calendar.IsDateKey(raw) {
			badRequest(c, "invalid end_date format, expected YYYY-MM-DD")
			return
		}
		endKey = raw
	}

	startKey := calendar.AddDays(endKey, -6)
	if raw := c.Query("start_date"); raw != "" {
		if !calendar.IsDateKey(raw) {
			badRequest(c, "invalid start_date format, expected YYYY-MM-DD")
			return
		}
		startKey = raw
	}

	if startKey > endKey {
		badRequest(c, "start_date cannot be after end_date")
		return
	}

	if calendar.AddDays(startKey, maxStatsRangeDays-1) < endKey {
		badRequest(c, "date range too large, max 1 year allowed")
		return
	}

	startDate, err := calendar.ParseDateKey(startKey, loc)
	if err != nil {
		handleError(c, err)
		return
	}
	endDate, err := calendar.ParseDateKey(endKey, loc)
	if err != nil {
		handleError(c, err)
		return
	}

	stats, err := h.svc.GetWeeklyStats(c.Request.Context(), domain.StatsInput{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
		Location:  loc,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HabitProgress godoc
// @Summary      Thirty-day progress of one habit
// @Description  Daily values and completion rate for the thirty days ending today in the user's zone, plus lifetime counters.
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true   "Habit ID"
// @Param        tz   query     string  false  "IANA zone, overrides the preference"
// @Success      200  {object}  domain.HabitProgress
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /habits/{id}/progress [get]
func (h *StatsHandler) HabitProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	now, err := h.views.Now(c.Request.Context(), userID, c.Query("tz"))
	if err != nil {
		handleError(c, err)
		return
	}

	progress, err := h.svc.HabitProgress(c.Request.Context(), userID, c.Param("id"), calendar.ToLocalDateKey(now))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}
