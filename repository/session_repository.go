package repository

import (
	"context"
	"errors"
	"time"

	"quickpoll-backend/models"

	"gorm.io/gorm"
)

// SessionRepository tracks anonymous session identifiers and their activity.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Ensure creates the session on first contact, otherwise bumps LastActiveAt.
func (r *SessionRepository) Ensure(ctx context.Context, sessionID string) error {
	var session models.Session
	err := r.db.WithContext(ctx).First(&session, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		session = models.Session{
			SessionID:    sessionID,
			CreatedAt:    now,
			LastActiveAt: now,
		}
		// FirstOrCreate tolerates two first-contact requests racing on the
		// same session id.
		return r.db.WithContext(ctx).
			Where("session_id = ?", sessionID).
			FirstOrCreate(&session).Error
	}
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("session_id = ?", sessionID).
		Update("last_active_at", time.Now()).Error
}

// Find returns the session or gorm.ErrRecordNotFound.
func (r *SessionRepository) Find(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Exists reports whether the session id is known.
func (r *SessionRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count > 0, err
}
