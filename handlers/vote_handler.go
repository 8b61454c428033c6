package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickpoll-backend/middleware"
	"quickpoll-backend/service"
)

type VoteHandler struct {
	service *service.PollService
}

func NewVoteHandler(service *service.PollService) *VoteHandler {
	return &VoteHandler{service: service}
}

type voteRequest struct {
	OptionID string `json:"optionId" binding:"required"`
}

// Vote handles POST /api/polls/:pollId/vote. The response carries the vote,
// the fresh per-option counts and whether the vote was added, changed or
// left unchanged.
func (h *VoteHandler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "optionId is required")
		return
	}

	result, err := h.service.Vote(c.Request.Context(), c.Param("pollId"), middleware.SessionID(c), req.OptionID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"vote":          result.Vote,
		"updatedCounts": result.UpdatedCounts,
		"action":        result.Outcome,
	})
}

// Unvote handles DELETE /api/polls/:pollId/vote.
func (h *VoteHandler) Unvote(c *gin.Context) {
	counts, err := h.service.Unvote(c.Request.Context(), c.Param("pollId"), middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"updatedCounts": counts})
}

// ListSessionVotes handles GET /api/session/votes.
func (h *VoteHandler) ListSessionVotes(c *gin.Context) {
	page, limit := pageParams(c)

	votes, pagination, err := h.service.ListSessionVotes(c.Request.Context(), middleware.SessionID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"votes":      votes,
		"pagination": pagination,
	})
}
