package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"quickpoll-backend/middleware"
	"quickpoll-backend/service"
	"quickpoll-backend/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Anonymous sessions, no credentials to protect.
		return true
	},
}

type WebSocketHandler struct {
	hub     *websocket.Hub
	service *service.PollService
}

func NewWebSocketHandler(hub *websocket.Hub, service *service.PollService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, service: service}
}

// Serve handles GET /ws, upgrading the connection and attaching it to the
// hub. Clients then join poll channels with join_poll messages.
func (h *WebSocketHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	validate := func(ctx context.Context, pollID string) error {
		_, err := h.service.GetPoll(ctx, pollID, "")
		return err
	}

	client := websocket.NewClient(h.hub, conn, middleware.SessionID(c), validate)
	client.Start()
}
