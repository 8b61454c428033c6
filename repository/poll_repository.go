package repository

import (
	"context"
	"time"

	"quickpoll-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PollUpdate carries the fields an owner may change. Nil means "leave as is".
type PollUpdate struct {
	Title       *string
	Description *string
}

// PollRepository owns poll records and their ordered options.
type PollRepository struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) *PollRepository {
	return &PollRepository{db: db}
}

// Create inserts the poll and its options in one transaction. Options receive
// a 1-based display order matching input order and are inserted as a single
// batch, so a failure persists nothing.
func (r *PollRepository) Create(ctx context.Context, poll *models.Poll, optionTexts []string) error {
	now := time.Now()
	poll.CreatedAt = now
	poll.UpdatedAt = now

	options := make([]models.PollOption, len(optionTexts))
	for i, text := range optionTexts {
		options[i] = models.PollOption{
			OptionID:     uuid.NewString(),
			PollID:       poll.PollID,
			OptionText:   text,
			DisplayOrder: i + 1,
			CreatedAt:    now,
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Options").Create(poll).Error; err != nil {
			return err
		}
		if err := tx.Create(&options).Error; err != nil {
			return err
		}
		poll.Options = options
		return nil
	})
}

// FindByID loads a poll with its options in display order. When sessionID is
// non-empty the requester's own vote and like status are attached.
// Returns gorm.ErrRecordNotFound if the poll is absent.
func (r *PollRepository) FindByID(ctx context.Context, pollID, sessionID string) (*models.Poll, error) {
	var poll models.Poll
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&poll, "poll_id = ?", pollID).Error
	if err != nil {
		return nil, err
	}

	if sessionID != "" {
		if err := r.annotate(ctx, []*models.Poll{&poll}, sessionID); err != nil {
			return nil, err
		}
	}
	return &poll, nil
}

// FindMany returns one page of active polls, newest first, annotated with the
// requester's vote/like status when a session id is supplied.
func (r *PollRepository) FindMany(ctx context.Context, page, limit int, sessionID string) ([]*models.Poll, models.Pagination, error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Where("is_active = ?", true), page, limit, sessionID)
}

// FindByOwner returns one page of polls created by the session, newest first,
// with no activity filter.
func (r *PollRepository) FindByOwner(ctx context.Context, ownerSessionID string, page, limit int) ([]*models.Poll, models.Pagination, error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Where("created_by = ?", ownerSessionID), page, limit, ownerSessionID)
}

func (r *PollRepository) findPage(ctx context.Context, query *gorm.DB, page, limit int, sessionID string) ([]*models.Poll, models.Pagination, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Model(&models.Poll{}).Count(&total).Error; err != nil {
		return nil, models.Pagination{}, err
	}

	polls := make([]*models.Poll, 0)
	err := query.Session(&gorm.Session{}).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&polls).Error
	if err != nil {
		return nil, models.Pagination{}, err
	}

	if sessionID != "" && len(polls) > 0 {
		if err := r.annotate(ctx, polls, sessionID); err != nil {
			return nil, models.Pagination{}, err
		}
	}

	return polls, models.NewPagination(page, limit, total), nil
}

// annotate attaches the session's own vote and like status to each poll using
// two batched queries.
func (r *PollRepository) annotate(ctx context.Context, polls []*models.Poll, sessionID string) error {
	pollIDs := make([]string, len(polls))
	for i, poll := range polls {
		pollIDs[i] = poll.PollID
	}

	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND poll_id IN ?", sessionID, pollIDs).
		Find(&votes).Error
	if err != nil {
		return err
	}
	votesByPoll := make(map[string]models.Vote, len(votes))
	for _, vote := range votes {
		votesByPoll[vote.PollID] = vote
	}

	var likes []models.Like
	err = r.db.WithContext(ctx).
		Where("session_id = ? AND poll_id IN ?", sessionID, pollIDs).
		Find(&likes).Error
	if err != nil {
		return err
	}
	likedPolls := make(map[string]bool, len(likes))
	for _, like := range likes {
		likedPolls[like.PollID] = true
	}

	for _, poll := range polls {
		if vote, ok := votesByPoll[poll.PollID]; ok {
			v := vote
			poll.SessionVote = &v
		}
		poll.SessionLiked = likedPolls[poll.PollID]
	}
	return nil
}

// Update applies the supplied fields only.
func (r *PollRepository) Update(ctx context.Context, pollID string, update PollUpdate) error {
	fields := map[string]interface{}{"updated_at": time.Now()}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}

	return r.db.WithContext(ctx).Model(&models.Poll{}).
		Where("poll_id = ?", pollID).
		Updates(fields).Error
}

// ReplaceOptions swaps a poll's option set for a new one. Existing options
// and every vote referencing them are removed and counters recomputed, all in
// one transaction.
func (r *PollRepository) ReplaceOptions(ctx context.Context, pollID string, optionTexts []string) error {
	now := time.Now()
	options := make([]models.PollOption, len(optionTexts))
	for i, text := range optionTexts {
		options[i] = models.PollOption{
			OptionID:     uuid.NewString(),
			PollID:       pollID,
			OptionText:   text,
			DisplayOrder: i + 1,
			CreatedAt:    now,
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", pollID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", pollID).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&options).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Poll{}).
			Where("poll_id = ?", pollID).
			Update("updated_at", now).Error; err != nil {
			return err
		}
		return recountVotes(tx, pollID)
	})
}

// Delete removes the poll and cascades to its options, votes and likes in one
// transaction. The returned bool reports whether the poll existed.
func (r *PollRepository) Delete(ctx context.Context, pollID string) (bool, error) {
	existed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", pollID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", pollID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", pollID).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		result := tx.Where("poll_id = ?", pollID).Delete(&models.Poll{})
		if result.Error != nil {
			return result.Error
		}
		existed = result.RowsAffected > 0
		return nil
	})
	return existed, err
}

// Exists reports whether a poll id is known.
func (r *PollRepository) Exists(ctx context.Context, pollID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Poll{}).
		Where("poll_id = ?", pollID).
		Count(&count).Error
	return count > 0, err
}

// IsOwner reports whether the poll was created by the given session.
func (r *PollRepository) IsOwner(ctx context.Context, pollID, sessionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Poll{}).
		Where("poll_id = ? AND created_by = ?", pollID, sessionID).
		Count(&count).Error
	return count > 0, err
}
