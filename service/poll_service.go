package service

import (
	"context"
	"errors"
	"log"

	"quickpoll-backend/apperrors"
	"quickpoll-backend/cache"
	"quickpoll-backend/models"
	"quickpoll-backend/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minOptions = 2
	maxOptions = 10

	defaultPageLimit = 20
	maxPageLimit     = 50
)

// CreatePollInput is the validated payload for creating a poll.
type CreatePollInput struct {
	Title       string
	Description string
	Options     []string
}

// UpdatePollInput carries a partial update; nil fields are left untouched.
type UpdatePollInput struct {
	Title       *string
	Description *string
	Options     []string
}

// VoteResult is the outcome of casting a vote.
type VoteResult struct {
	Vote          *models.Vote
	UpdatedCounts map[string]int64
	Outcome       repository.VoteOutcome
}

// PollService enforces the business rules (ownership, option bounds,
// uniqueness) over the stores and emits one notification per mutation.
type PollService struct {
	sessions *repository.SessionRepository
	polls    *repository.PollRepository
	votes    *repository.VoteRepository
	likes    *repository.LikeRepository
	notifier Notifier
	cache    *cache.PollCache // optional, may be nil
}

func NewPollService(
	sessions *repository.SessionRepository,
	polls *repository.PollRepository,
	votes *repository.VoteRepository,
	likes *repository.LikeRepository,
	notifier Notifier,
	pollCache *cache.PollCache,
) *PollService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PollService{
		sessions: sessions,
		polls:    polls,
		votes:    votes,
		likes:    likes,
		notifier: notifier,
		cache:    pollCache,
	}
}

// CreatePoll validates option bounds and uniqueness, persists the poll and
// returns it with options attached.
func (s *PollService) CreatePoll(ctx context.Context, sessionID string, input CreatePollInput) (*models.Poll, error) {
	if err := s.sessions.Ensure(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := validateOptions(input.Options); err != nil {
		return nil, err
	}

	poll := &models.Poll{
		PollID:      uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		CreatedBy:   sessionID,
		IsActive:    true,
	}
	if err := s.polls.Create(ctx, poll, input.Options); err != nil {
		return nil, err
	}

	created, err := s.GetPoll(ctx, poll.PollID, sessionID)
	if err != nil {
		return nil, err
	}
	s.notifier.PollUpdated(created.PollID, created)
	return created, nil
}

// GetPoll returns the poll with ordered options, annotated with the
// requester's own vote and like status when a session id is supplied.
func (s *PollService) GetPoll(ctx context.Context, pollID, sessionID string) (*models.Poll, error) {
	// Session-free reads (e.g. channel join validation) can be served from
	// the snapshot cache; annotated reads always hit the store.
	if sessionID == "" && s.cache != nil {
		if poll, ok := s.cache.GetPoll(ctx, pollID); ok {
			return poll, nil
		}
	}

	poll, err := s.polls.FindByID(ctx, pollID, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Poll")
	}
	if err != nil {
		return nil, err
	}

	if sessionID == "" && s.cache != nil {
		s.cache.SetPoll(ctx, poll)
	}
	return poll, nil
}

// ListPolls returns one page of active polls, newest first.
func (s *PollService) ListPolls(ctx context.Context, page, limit int, sessionID string) ([]*models.Poll, models.Pagination, error) {
	page, limit = clampPage(page, limit)
	return s.polls.FindMany(ctx, page, limit, sessionID)
}

// ListSessionPolls returns one page of the polls the session owns.
func (s *PollService) ListSessionPolls(ctx context.Context, sessionID string, page, limit int) ([]*models.Poll, models.Pagination, error) {
	page, limit = clampPage(page, limit)
	return s.polls.FindByOwner(ctx, sessionID, page, limit)
}

// ListSessionVotes returns one page of the session's votes, newest first.
func (s *PollService) ListSessionVotes(ctx context.Context, sessionID string, page, limit int) ([]models.Vote, models.Pagination, error) {
	page, limit = clampPage(page, limit)
	return s.votes.FindBySession(ctx, sessionID, page, limit)
}

// UpdatePoll applies a partial update. Owner-only; an options replacement is
// validated under the same rules as creation.
func (s *PollService) UpdatePoll(ctx context.Context, pollID, sessionID string, input UpdatePollInput) (*models.Poll, error) {
	if err := s.requireOwner(ctx, pollID, sessionID, "You can only update your own polls"); err != nil {
		return nil, err
	}

	if input.Options != nil {
		if err := validateOptions(input.Options); err != nil {
			return nil, err
		}
	}

	update := repository.PollUpdate{Title: input.Title, Description: input.Description}
	if input.Title != nil || input.Description != nil {
		if err := s.polls.Update(ctx, pollID, update); err != nil {
			return nil, err
		}
	}
	if input.Options != nil {
		if err := s.polls.ReplaceOptions(ctx, pollID, input.Options); err != nil {
			return nil, err
		}
	}

	s.invalidate(ctx, pollID)
	poll, err := s.GetPoll(ctx, pollID, sessionID)
	if err != nil {
		return nil, err
	}
	s.notifier.PollUpdated(pollID, poll)
	return poll, nil
}

// DeletePoll removes the poll and everything attached to it. Owner-only.
func (s *PollService) DeletePoll(ctx context.Context, pollID, sessionID string) error {
	if err := s.requireOwner(ctx, pollID, sessionID, "You can only delete your own polls"); err != nil {
		return err
	}

	existed, err := s.polls.Delete(ctx, pollID)
	if err != nil {
		return err
	}
	if !existed {
		return apperrors.NotFound("Poll")
	}

	s.invalidate(ctx, pollID)
	s.notifier.PollDeleted(pollID)
	return nil
}

// Vote casts or changes the session's vote. The poll must exist and be
// active, and the option must belong to it.
func (s *PollService) Vote(ctx context.Context, pollID, sessionID, optionID string) (*VoteResult, error) {
	poll, err := s.polls.FindByID(ctx, pollID, "")
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Poll")
	}
	if err != nil {
		return nil, err
	}

	if !poll.IsActive {
		return nil, apperrors.InvalidState("Poll is not active")
	}

	valid := false
	for _, option := range poll.Options {
		if option.OptionID == optionID {
			valid = true
			break
		}
	}
	if !valid {
		return nil, apperrors.InvalidArgument("Invalid option for this poll")
	}

	vote, outcome, err := s.votes.Cast(ctx, pollID, sessionID, optionID)
	if err != nil {
		return nil, err
	}

	counts, err := s.votes.CountsByOption(ctx, pollID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, pollID)
	switch outcome {
	case repository.VoteAdded:
		s.notifier.VoteAdded(pollID, vote, counts)
	case repository.VoteChanged:
		s.notifier.VoteChanged(pollID, vote, counts)
	}

	return &VoteResult{Vote: vote, UpdatedCounts: counts, Outcome: outcome}, nil
}

// Unvote retracts the session's vote.
func (s *PollService) Unvote(ctx context.Context, pollID, sessionID string) (map[string]int64, error) {
	exists, err := s.polls.Exists(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("Poll")
	}

	existed, err := s.votes.Retract(ctx, pollID, sessionID)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, apperrors.NotFound("Vote")
	}

	counts, err := s.votes.CountsByOption(ctx, pollID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, pollID)
	s.notifier.VoteRemoved(pollID, sessionID, counts)
	return counts, nil
}

// Like adds the session's like. Idempotent: a repeat like returns the
// existing record and emits no event.
func (s *PollService) Like(ctx context.Context, pollID, sessionID string) (*models.Like, int64, error) {
	exists, err := s.polls.Exists(ctx, pollID)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, apperrors.NotFound("Poll")
	}

	already, err := s.likes.Exists(ctx, pollID, sessionID)
	if err != nil {
		return nil, 0, err
	}

	like, err := s.likes.Add(ctx, pollID, sessionID)
	if err != nil {
		return nil, 0, err
	}

	totalLikes, err := s.likes.TotalLikes(ctx, pollID)
	if err != nil {
		return nil, 0, err
	}

	if !already {
		s.invalidate(ctx, pollID)
		s.notifier.LikeAdded(pollID, like, totalLikes)
	}
	return like, totalLikes, nil
}

// Unlike removes the session's like; fails if none exists.
func (s *PollService) Unlike(ctx context.Context, pollID, sessionID string) (int64, error) {
	exists, err := s.polls.Exists(ctx, pollID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, apperrors.NotFound("Poll")
	}

	existed, err := s.likes.Remove(ctx, pollID, sessionID)
	if err != nil {
		return 0, err
	}
	if !existed {
		return 0, apperrors.InvalidState("You have not liked this poll")
	}

	totalLikes, err := s.likes.TotalLikes(ctx, pollID)
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, pollID)
	s.notifier.LikeRemoved(pollID, sessionID, totalLikes)
	return totalLikes, nil
}

func (s *PollService) requireOwner(ctx context.Context, pollID, sessionID, message string) error {
	exists, err := s.polls.Exists(ctx, pollID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NotFound("Poll")
	}

	isOwner, err := s.polls.IsOwner(ctx, pollID, sessionID)
	if err != nil {
		return err
	}
	if !isOwner {
		return apperrors.Forbidden(message)
	}
	return nil
}

func (s *PollService) invalidate(ctx context.Context, pollID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, pollID); err != nil {
		log.Printf("failed to invalidate cached poll %s: %v", pollID, err)
	}
}

func validateOptions(options []string) error {
	if len(options) < minOptions {
		return apperrors.InvalidArgument("At least 2 options are required")
	}
	if len(options) > maxOptions {
		return apperrors.InvalidArgument("Maximum 10 options allowed")
	}

	seen := make(map[string]bool, len(options))
	for _, text := range options {
		if text == "" {
			return apperrors.InvalidArgument("Option cannot be empty")
		}
		if seen[text] {
			return apperrors.InvalidArgument("Duplicate options are not allowed")
		}
		seen[text] = true
	}
	return nil
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
