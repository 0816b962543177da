package handler

import (
	"net/http"

	"memora/internal/services"
	"memora/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ResponseHandler struct {
	threads *services.ThreadService
}

func NewResponseHandler(threads *services.ThreadService) *ResponseHandler {
	return &ResponseHandler{threads: threads}
}

// Thread serves GET /api/prompts/:id/responses
func (h *ResponseHandler) Thread(c *gin.Context) {
	promptID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid prompt id")
		return
	}
	tree, err := h.threads.BuildTree(c.Request.Context(), promptID)
	if err != nil {
		writeError(c, err)
		return
	}
	var upvoted map[uuid.UUID]bool
	if viewer, ok := services.IdentityFromContext(c.Request.Context()); ok {
		if upvoted, err = h.threads.UpvotedBy(c.Request.Context(), promptID, viewer); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"responses": httpdto.FromResponseTree(tree, upvoted)}))
}

func (h *ResponseHandler) Create(c *gin.Context) {
	var req httpdto.CreateResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	promptID, err := parseUUID(req.PromptID)
	if err != nil {
		badRequest(c, "invalid prompt_id")
		return
	}
	var parentID *uuid.UUID
	if req.ParentID != nil && *req.ParentID != "" {
		id, err := parseUUID(*req.ParentID)
		if err != nil {
			badRequest(c, "invalid parent_id")
			return
		}
		parentID = &id
	}
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}

	r, err := h.threads.CreateResponse(c.Request.Context(), promptID, actor, req.Text, parentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromResponse(&r, nil)))
}

func (h *ResponseHandler) Upvote(c *gin.Context) {
	responseID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid response id")
		return
	}
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}

	res, err := h.threads.ToggleUpvote(c.Request.Context(), responseID, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.UpvoteResultDTO{Upvoted: res.Upvoted, NewCount: res.NewCount}))
}
