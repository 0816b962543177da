package handler

import (
	"net/http"

	"memora/internal/commands"
	"memora/internal/services"
	"memora/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	communities *services.CommunityService
}

func NewCommunityHandler(communities *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{communities: communities}
}

func (h *CommunityHandler) List(c *gin.Context) {
	page, err := parseInt(c.Query("page"))
	if err != nil {
		badRequest(c, "invalid page")
		return
	}
	limit, err := parseInt(c.Query("limit"))
	if err != nil {
		badRequest(c, "invalid limit")
		return
	}

	res, err := h.communities.List(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.CommunityListResponse{
		Communities: httpdto.FromCommunitySlice(res.Communities),
		Pagination:  httpdto.NewPagination(res.Page, res.Limit, res.Total),
	}))
}

func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.communities.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromCommunity(community)))
}

func (h *CommunityHandler) Prompts(c *gin.Context) {
	f, ok := promptFilter(c)
	if !ok {
		return
	}
	page, err := h.communities.Prompts(c.Request.Context(), c.Param("slug"), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PromptListResponse{
		Prompts:    httpdto.FromPromptSlice(page.Prompts),
		Pagination: httpdto.NewPagination(page.Page, page.Limit, page.Total),
	}))
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req httpdto.CreateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}

	community, err := h.communities.Create(c.Request.Context(), commands.CreateCommunityCommand{
		Actor: actor,
		Name:  req.Name,
		Slug:  req.Slug,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromCommunity(community)))
}

func (h *CommunityHandler) Update(c *gin.Context) {
	var req httpdto.UpdateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}

	community, err := h.communities.Update(c.Request.Context(), commands.UpdateCommunityCommand{
		Actor:   actor,
		Slug:    c.Param("slug"),
		Name:    req.Name,
		NewSlug: req.Slug,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromCommunity(community)))
}
