package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quickpoll-backend/middleware"
	"quickpoll-backend/service"
)

type PollHandler struct {
	service *service.PollService
}

func NewPollHandler(service *service.PollService) *PollHandler {
	return &PollHandler{service: service}
}

type createPollRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Options     []string `json:"options" binding:"required"`
}

type updatePollRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Options     []string `json:"options"`
}

// Create handles POST /api/polls.
func (h *PollHandler) Create(c *gin.Context) {
	var req createPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	poll, err := h.service.CreatePoll(c.Request.Context(), middleware.SessionID(c), service.CreatePollInput{
		Title:       req.Title,
		Description: req.Description,
		Options:     req.Options,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, poll)
}

// Get handles GET /api/polls/:pollId.
func (h *PollHandler) Get(c *gin.Context) {
	poll, err := h.service.GetPoll(c.Request.Context(), c.Param("pollId"), middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, poll)
}

// List handles GET /api/polls.
func (h *PollHandler) List(c *gin.Context) {
	page, limit := pageParams(c)

	polls, pagination, err := h.service.ListPolls(c.Request.Context(), page, limit, middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"polls":      polls,
		"pagination": pagination,
	})
}

// Update handles PUT /api/polls/:pollId.
func (h *PollHandler) Update(c *gin.Context) {
	var req updatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	poll, err := h.service.UpdatePoll(c.Request.Context(), c.Param("pollId"), middleware.SessionID(c), service.UpdatePollInput{
		Title:       req.Title,
		Description: req.Description,
		Options:     req.Options,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, poll)
}

// Delete handles DELETE /api/polls/:pollId.
func (h *PollHandler) Delete(c *gin.Context) {
	if err := h.service.DeletePoll(c.Request.Context(), c.Param("pollId"), middleware.SessionID(c)); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}

// ListSessionPolls handles GET /api/session/polls.
func (h *PollHandler) ListSessionPolls(c *gin.Context) {
	page, limit := pageParams(c)

	polls, pagination, err := h.service.ListSessionPolls(c.Request.Context(), middleware.SessionID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"polls":      polls,
		"pagination": pagination,
	})
}

// pageParams parses page and limit from the query string. Out-of-range
// values are clamped by the service, not rejected.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	return page, limit
}
