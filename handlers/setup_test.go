package handlers

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quickpoll-backend/database"
	"quickpoll-backend/middleware"
	"quickpoll-backend/models"
	"quickpoll-backend/repository"
	"quickpoll-backend/service"
)

// SetupTestEnvironment builds the full handler stack over an in-memory
// SQLite database. No cache and no live notifier; those have their own
// package tests.
func SetupTestEnvironment(t *testing.T) (*gin.Engine, *gorm.DB) {
	testing.Init()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	sessions := repository.NewSessionRepository(db)
	polls := repository.NewPollRepository(db)
	votes := repository.NewVoteRepository(db)
	likes := repository.NewLikeRepository(db)
	pollService := service.NewPollService(sessions, polls, votes, likes, nil, nil)

	pollHandler := NewPollHandler(pollService)
	voteHandler := NewVoteHandler(pollService)
	likeHandler := NewLikeHandler(pollService)
	healthHandler := NewHealthHandler(db)

	router := gin.Default()
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.SessionHeader}
	router.Use(cors.New(config))

	router.GET("/health", healthHandler.Check)

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

	return router, db
}

// ClearTables wipes all rows between tests. Order matters because options,
// votes and likes hang off polls.
func ClearTables(db *gorm.DB) {
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Vote{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Like{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.PollOption{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Poll{})
	db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Session{})
}

// doRequest performs a JSON request with the given session id and decodes
// the response envelope.
func doRequest(t *testing.T, router *gin.Engine, method, path, sessionID string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		buf = bytes.NewBuffer(jsonData)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("Failed to decode response body %q: %v", w.Body.String(), err)
		}
	}
	return w, envelope
}

// createTestPoll creates a poll through the API and returns its decoded data.
func createTestPoll(t *testing.T, router *gin.Engine, sessionID, title string, options []string) map[string]interface{} {
	t.Helper()

	w, envelope := doRequest(t, router, "POST", "/api/polls", sessionID, gin.H{
		"title":       title,
		"description": "created at " + time.Now().Format(time.RFC3339Nano),
		"options":     options,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create poll: status %d body %s", w.Code, w.Body.String())
	}
	return envelope["data"].(map[string]interface{})
}

// optionIDByText finds an option id in a decoded poll payload.
func optionIDByText(t *testing.T, poll map[string]interface{}, text string) string {
	t.Helper()

	for _, raw := range poll["options"].([]interface{}) {
		option := raw.(map[string]interface{})
		if option["optionText"] == text {
			return option["optionId"].(string)
		}
	}
	t.Fatalf("Option %q not found in poll payload", text)
	return ""
}
