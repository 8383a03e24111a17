package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-grid/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-grid/internal/core/calendar"
	"github.com/comitanigiacomo/kanso-grid/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var badRequestErrors = []error{
	domain.ErrHabitTitleEmpty,
	domain.ErrHabitTitleTooLong,
	domain.ErrHabitDescTooLong,
	domain.ErrInvalidColor,
	domain.ErrInvalidWeekdays,
	domain.ErrInvalidTarget,
	domain.ErrInvalidInterval,
	domain.ErrInvalidHabitType,
	domain.ErrInvalidReminder,
	domain.ErrInvalidEntry,
	domain.ErrInvalidDate,
	domain.ErrInvalidStatus,
	domain.ErrInvalidPreference,
	domain.ErrGroupNameEmpty,
	domain.ErrGroupNameTooLong,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	calendar.ErrInvalidDateKey,
	calendar.ErrInvalidYearMonth,
}

func isBadRequest(err error) bool {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleError maps domain errors to status codes. Anything unknown is logged
// and reported as a 500 without details.
func handleError(c *gin.Context, err error) {
	switch {
	case isBadRequest(err):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrFutureDate):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})

	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, errorResponse{Error: "unauthorized access"})

	case errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrHabitNotFound),
		errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})

	case errors.Is(err, domain.ErrEntryConflict), errors.Is(err, domain.ErrHabitConflict):
		c.JSON(http.StatusConflict, errorResponse{
			Error:   "version conflict",
			Message: "data has been modified elsewhere, please sync",
		})

	case errors.Is(err, domain.ErrHabitArchived):
		c.JSON(http.StatusConflict, errorResponse{Error: "habit is archived"})

	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, errorResponse{Error: "email already exists"})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// currentUser reads the id set by the auth middleware, answering 401 itself
// when it is missing.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return "", false
	}
	return userID, true
}
