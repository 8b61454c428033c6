package repository

import (
	"context"
	"errors"
	"time"

	"quickpoll-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteOutcome classifies the result of casting a vote.
type VoteOutcome string

const (
	VoteAdded     VoteOutcome = "added"
	VoteChanged   VoteOutcome = "changed"
	VoteUnchanged VoteOutcome = "unchanged"
)

// VoteRepository is the vote ledger: one row per (poll, session), with
// per-option and per-poll counters derived from it.
type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Cast records a session's vote for an option. A first vote inserts a row, a
// repeat vote for the same option is a no-op, and a vote for a different
// option re-points the existing row. Counters are recomputed from the ledger
// in the same transaction, so concurrent voters never observe a partially
// updated poll.
func (r *VoteRepository) Cast(ctx context.Context, pollID, sessionID, optionID string) (*models.Vote, VoteOutcome, error) {
	var (
		vote    models.Vote
		outcome VoteOutcome
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Vote
		err := tx.Where("poll_id = ? AND session_id = ?", pollID, sessionID).
			First(&existing).Error

		switch {
		case err == nil && existing.OptionID == optionID:
			vote = existing
			outcome = VoteUnchanged

		case err == nil:
			if err := tx.Model(&models.Vote{}).
				Where("vote_id = ?", existing.VoteID).
				Update("option_id", optionID).Error; err != nil {
				return err
			}
			existing.OptionID = optionID
			vote = existing
			outcome = VoteChanged

		case errors.Is(err, gorm.ErrRecordNotFound):
			vote = models.Vote{
				VoteID:    uuid.NewString(),
				PollID:    pollID,
				OptionID:  optionID,
				SessionID: sessionID,
				VotedAt:   time.Now(),
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			outcome = VoteAdded

		default:
			return err
		}

		return recountVotes(tx, pollID)
	})
	if err != nil {
		return nil, "", err
	}
	return &vote, outcome, nil
}

// Retract deletes the session's vote for a poll and recomputes counters.
// The returned bool reports whether a vote existed.
func (r *VoteRepository) Retract(ctx context.Context, pollID, sessionID string) (bool, error) {
	existed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("poll_id = ? AND session_id = ?", pollID, sessionID).
			Delete(&models.Vote{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		existed = true
		return recountVotes(tx, pollID)
	})
	return existed, err
}

// CountsByOption returns the live vote count per option id. Every option of
// the poll appears in the map, zero-vote ones included. Pure read.
func (r *VoteRepository) CountsByOption(ctx context.Context, pollID string) (map[string]int64, error) {
	var optionIDs []string
	err := r.db.WithContext(ctx).Model(&models.PollOption{}).
		Where("poll_id = ?", pollID).
		Pluck("option_id", &optionIDs).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(optionIDs))
	for _, id := range optionIDs {
		counts[id] = 0
	}

	var rows []struct {
		OptionID string
		Count    int64
	}
	err = r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("option_id, count(*) as count").
		Where("poll_id = ?", pollID).
		Group("option_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.OptionID] = row.Count
	}
	return counts, nil
}

// FindByPollAndSession returns the session's vote on a poll, or
// gorm.ErrRecordNotFound.
func (r *VoteRepository) FindByPollAndSession(ctx context.Context, pollID, sessionID string) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("poll_id = ? AND session_id = ?", pollID, sessionID).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// FindBySession returns one page of the session's votes, newest first.
func (r *VoteRepository) FindBySession(ctx context.Context, sessionID string, page, limit int) ([]models.Vote, models.Pagination, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("session_id = ?", sessionID).
		Count(&total).Error
	if err != nil {
		return nil, models.Pagination{}, err
	}

	votes := make([]models.Vote, 0)
	err = r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("voted_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&votes).Error
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return votes, models.NewPagination(page, limit, total), nil
}

// recountVotes rebuilds the denormalized counters for one poll from the vote
// ledger. Full recount rather than incremental delta: correct under any
// interleaving as long as it runs inside the mutating transaction.
func recountVotes(tx *gorm.DB, pollID string) error {
	if err := tx.Model(&models.PollOption{}).
		Where("poll_id = ?", pollID).
		Update("vote_count", 0).Error; err != nil {
		return err
	}

	var rows []struct {
		OptionID string
		Count    int64
	}
	if err := tx.Model(&models.Vote{}).
		Select("option_id, count(*) as count").
		Where("poll_id = ?", pollID).
		Group("option_id").
		Scan(&rows).Error; err != nil {
		return err
	}

	for _, row := range rows {
		if err := tx.Model(&models.PollOption{}).
			Where("option_id = ? AND poll_id = ?", row.OptionID, pollID).
			Update("vote_count", row.Count).Error; err != nil {
			return err
		}
	}

	var totalVotes int64
	if err := tx.Model(&models.Vote{}).
		Where("poll_id = ?", pollID).
		Count(&totalVotes).Error; err != nil {
		return err
	}

	return tx.Model(&models.Poll{}).
		Where("poll_id = ?", pollID).
		Update("total_votes", totalVotes).Error
}
