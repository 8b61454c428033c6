package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickpoll-backend/middleware"
	"quickpoll-backend/service"
)

type LikeHandler struct {
	service *service.PollService
}

func NewLikeHandler(service *service.PollService) *LikeHandler {
	return &LikeHandler{service: service}
}

// Like handles POST /api/polls/:pollId/like. Liking twice is a no-op and
// still succeeds.
func (h *LikeHandler) Like(c *gin.Context) {
	like, totalLikes, err := h.service.Like(c.Request.Context(), c.Param("pollId"), middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"like":       like,
		"totalLikes": totalLikes,
	})
}

// Unlike handles DELETE /api/polls/:pollId/like.
func (h *LikeHandler) Unlike(c *gin.Context) {
	totalLikes, err := h.service.Unlike(c.Request.Context(), c.Param("pollId"), middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"totalLikes": totalLikes})
}
