package service

import "quickpoll-backend/models"

// Notifier receives one callback per poll-visible state change. Delivery is
// fire-and-forget: implementations must not block the mutating request, and
// callers never learn whether subscribers were reached.
type Notifier interface {
	PollUpdated(pollID string, poll *models.Poll)
	PollDeleted(pollID string)
	VoteAdded(pollID string, vote *models.Vote, updatedCounts map[string]int64)
	VoteChanged(pollID string, vote *models.Vote, updatedCounts map[string]int64)
	VoteRemoved(pollID, sessionID string, updatedCounts map[string]int64)
	LikeAdded(pollID string, like *models.Like, totalLikes int64)
	LikeRemoved(pollID, sessionID string, totalLikes int64)
}

// NopNotifier discards all events. Used when no live channel is wired up,
// e.g. in tests.
type NopNotifier struct{}

func (NopNotifier) PollUpdated(string, *models.Poll)                {}
func (NopNotifier) PollDeleted(string)                              {}
func (NopNotifier) VoteAdded(string, *models.Vote, map[string]int64)   {}
func (NopNotifier) VoteChanged(string, *models.Vote, map[string]int64) {}
func (NopNotifier) VoteRemoved(string, string, map[string]int64)       {}
func (NopNotifier) LikeAdded(string, *models.Like, int64)              {}
func (NopNotifier) LikeRemoved(string, string, int64)                  {}
