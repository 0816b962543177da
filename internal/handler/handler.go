package handler

import (
	"net/http"
	"strconv"

	"memora/internal/domain/user"
	"memora/internal/repository"
	"memora/internal/services"
	"memora/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(value)
}

func parseInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

// writeError renders a service error with its mapped status and attaches it
// to the context for the error middleware to log.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse(services.PublicMessage(err), services.ErrorCode(err)))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(msg, "INVALID_REQUEST"))
}

func requireIdentity(c *gin.Context) (user.Identity, bool) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
	}
	return id, ok
}

// promptFilter reads page, limit and sort from the query string.
func promptFilter(c *gin.Context) (repository.PromptFilter, bool) {
	page, err := parseInt(c.Query("page"))
	if err != nil {
		badRequest(c, "invalid page")
		return repository.PromptFilter{}, false
	}
	limit, err := parseInt(c.Query("limit"))
	if err != nil {
		badRequest(c, "invalid limit")
		return repository.PromptFilter{}, false
	}
	sort := c.DefaultQuery("sort", repository.SortRecent)
	if sort != repository.SortRecent && sort != repository.SortTrending {
		badRequest(c, "sort must be recent or trending")
		return repository.PromptFilter{}, false
	}
	return repository.PromptFilter{Page: page, Limit: limit, Sort: sort, Search: c.Query("q")}, true
}
