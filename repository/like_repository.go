package repository

import (
	"context"
	"errors"
	"time"

	"quickpoll-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LikeRepository is the like ledger: at most one row per (poll, session).
type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Add records a like. Idempotent: if the session already liked the poll the
// existing row is returned untouched and no counter changes.
func (r *LikeRepository) Add(ctx context.Context, pollID, sessionID string) (*models.Like, error) {
	var like models.Like
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("poll_id = ? AND session_id = ?", pollID, sessionID).
			First(&like).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		like = models.Like{
			LikeID:    uuid.NewString(),
			PollID:    pollID,
			SessionID: sessionID,
			LikedAt:   time.Now(),
		}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		return recountLikes(tx, pollID)
	})
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// Remove deletes the session's like and recomputes the counter. The returned
// bool reports whether a like existed.
func (r *LikeRepository) Remove(ctx context.Context, pollID, sessionID string) (bool, error) {
	existed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("poll_id = ? AND session_id = ?", pollID, sessionID).
			Delete(&models.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		existed = true
		return recountLikes(tx, pollID)
	})
	return existed, err
}

// Exists reports whether the session has liked the poll. Pure read.
func (r *LikeRepository) Exists(ctx context.Context, pollID, sessionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("poll_id = ? AND session_id = ?", pollID, sessionID).
		Count(&count).Error
	return count > 0, err
}

// TotalLikes returns the live like count for a poll. Pure read.
func (r *LikeRepository) TotalLikes(ctx context.Context, pollID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("poll_id = ?", pollID).
		Count(&total).Error
	return total, err
}

func recountLikes(tx *gorm.DB, pollID string) error {
	var totalLikes int64
	if err := tx.Model(&models.Like{}).
		Where("poll_id = ?", pollID).
		Count(&totalLikes).Error; err != nil {
		return err
	}

	return tx.Model(&models.Poll{}).
		Where("poll_id = ?", pollID).
		Update("total_likes", totalLikes).Error
}
