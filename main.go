package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickpoll-backend/cache"
	"quickpoll-backend/database"
	"quickpoll-backend/repository"
	"quickpoll-backend/routes"
	"quickpoll-backend/service"
	"quickpoll-backend/websocket"
)

func main() {
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	pollCache, err := cache.InitFromEnv()
	if err != nil {
		log.Printf("redis unavailable, poll snapshot cache disabled: %v", err)
		pollCache = nil
	}
	if pollCache != nil {
		defer pollCache.Close()
	}

	hub := websocket.NewHub()
	go hub.Run()

	sessions := repository.NewSessionRepository(db)
	polls := repository.NewPollRepository(db)
	votes := repository.NewVoteRepository(db)
	likes := repository.NewLikeRepository(db)

	pollService := service.NewPollService(sessions, polls, votes, likes, hub, pollCache)

	router := routes.SetupRouter(db, sessions, pollService, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("server listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}
