package routes

import (
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"quickpoll-backend/handlers"
	"quickpoll-backend/middleware"
	"quickpoll-backend/repository"
	"quickpoll-backend/service"
	"quickpoll-backend/websocket"
)

// SetupRouter wires middleware, handlers and routes onto a gin engine.
func SetupRouter(
	db *gorm.DB,
	sessions *repository.SessionRepository,
	pollService *service.PollService,
	hub *websocket.Hub,
) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.SessionHeader},
		ExposeHeaders:    []string{middleware.SessionHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64); err == nil && rps > 0 {
		router.Use(middleware.RateLimit(rps, int(rps)*2))
	}

	pollHandler := handlers.NewPollHandler(pollService)
	voteHandler := handlers.NewVoteHandler(pollService)
	likeHandler := handlers.NewLikeHandler(pollService)
	healthHandler := handlers.NewHealthHandler(db)
	wsHandler := handlers.NewWebSocketHandler(hub, pollService)

	router.GET("/health", healthHandler.Check)
	router.GET("/ws", middleware.Session(sessions), wsHandler.Serve)

	api := router.Group("/api")
	api.Use(middleware.Session(sessions))
	{
		api.POST("/polls", pollHandler.Create)
		api.GET("/polls", pollHandler.List)
		api.GET("/polls/:pollId", pollHandler.Get)
		api.PUT("/polls/:pollId", pollHandler.Update)
		api.DELETE("/polls/:pollId", pollHandler.Delete)

		api.POST("/polls/:pollId/vote", voteHandler.Vote)
		api.DELETE("/polls/:pollId/vote", voteHandler.Unvote)

		api.POST("/polls/:pollId/like", likeHandler.Like)
		api.DELETE("/polls/:pollId/like", likeHandler.Unlike)

		api.GET("/session/polls", pollHandler.ListSessionPolls)
		api.GET("/session/votes", voteHandler.ListSessionVotes)
	}

	return router
}
