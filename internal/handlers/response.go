package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"preparedness-service/internal/service"

	"github.com/gin-gonic/gin"
)

// respond writes the response envelope every endpoint uses.
func respond(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": status < 400, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// fail maps a service error to its HTTP status. Unknown errors become a
// generic 500 so internals never leak to clients.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respond(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		respond(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrAlreadyCompleted),
		errors.Is(err, service.ErrDuplicate):
		respond(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCreds):
		respond(c, http.StatusUnauthorized, err.Error(), nil)
	default:
		respond(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// pageParams reads ?page and ?limit with sane bounds.
func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
