package handler

import (
	"net/http"
	"strings"

	"memora/internal/commands"
	"memora/internal/domain/prompt"
	"memora/internal/domain/user"
	"memora/internal/services"
	"memora/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type PromptHandler struct {
	prompts *services.PromptService
	polls   *services.PollService
}

func NewPromptHandler(prompts *services.PromptService, polls *services.PollService) *PromptHandler {
	return &PromptHandler{prompts: prompts, polls: polls}
}

func (h *PromptHandler) List(c *gin.Context) {
	f, ok := promptFilter(c)
	if !ok {
		return
	}
	if raw := c.Query("community_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			badRequest(c, "invalid community_id")
			return
		}
		f.CommunityID = &id
	}
	if raw := c.Query("type"); raw != "" {
		f.Type = prompt.Type(strings.ToUpper(raw))
		if !f.Type.Valid() {
			badRequest(c, "type must be TEXT or POLL")
			return
		}
	}

	page, err := h.prompts.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PromptListResponse{
		Prompts:    httpdto.FromPromptSlice(page.Prompts),
		Pagination: httpdto.NewPagination(page.Page, page.Limit, page.Total),
	}))
}

func (h *PromptHandler) Get(c *gin.Context) {
	promptID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid prompt id")
		return
	}

	var viewer *user.Identity
	if id, ok := services.IdentityFromContext(c.Request.Context()); ok {
		viewer = &id
	}
	detail, err := h.prompts.Get(c.Request.Context(), promptID, viewer)
	if err != nil {
		writeError(c, err)
		return
	}

	var userVote *string
	if detail.UserVoteOptionID != nil {
		s := detail.UserVoteOptionID.String()
		userVote = &s
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PromptDetailDTO{
		PromptDTO: httpdto.FromPrompt(detail.Prompt),
		BodyHTML:  detail.BodyHTML,
		Responses: httpdto.FromResponseTree(detail.Responses, detail.Upvoted),
		UserVote:  userVote,
		Liked:     detail.Liked,
	}))
}

func (h *PromptHandler) Create(c *gin.Context) {
	var req httpdto.CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}

	cmd := commands.CreatePromptCommand{
		Actor:   actor,
		Title:   req.Title,
		Body:    req.Body,
		Type:    prompt.Type(strings.ToUpper(req.Type)),
		Options: req.Options,
	}
	if req.CommunityID != "" {
		id, err := parseUUID(req.CommunityID)
		if err != nil {
			badRequest(c, "invalid community_id")
			return
		}
		cmd.CommunityID = &id
	}

	p, err := h.prompts.Create(c.Request.Context(), cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromPrompt(p)))
}

func (h *PromptHandler) Delete(c *gin.Context) {
	promptID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid prompt id")
		return
	}
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.prompts.Delete(c.Request.Context(), promptID, actor); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": promptID.String()}))
}

func (h *PromptHandler) Vote(c *gin.Context) {
	promptID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid prompt id")
		return
	}
	var req httpdto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	optionID, err := parseUUID(req.OptionID)
	if err != nil {
		badRequest(c, "invalid option_id")
		return
	}
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}

	options, err := h.polls.CastOrChangeVote(c.Request.Context(), promptID, actor, optionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromPollResult(options)))
}

func (h *PromptHandler) RetractVote(c *gin.Context) {
	promptID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid prompt id")
		return
	}
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}

	options, err := h.polls.RetractVote(c.Request.Context(), promptID, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromPollResult(options)))
}

func (h *PromptHandler) Like(c *gin.Context) {
	promptID, err := parseUUID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid prompt id")
		return
	}
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}

	res, err := h.prompts.ToggleLike(c.Request.Context(), promptID, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.LikeResultDTO{Liked: res.Liked, LikesCount: res.LikesCount}))
}
