package websocket

import "quickpoll-backend/models"

// Server-to-client event types, one per poll-visible state change.
const (
	EventPollUpdated = "poll_updated"
	EventPollDeleted = "poll_deleted"
	EventVoteAdded   = "vote_added"
	EventVoteChanged = "vote_changed"
	EventVoteRemoved = "vote_removed"
	EventLikeAdded   = "like_added"
	EventLikeRemoved = "like_removed"

	EventJoinedPoll = "joined_poll"
	EventLeftPoll   = "left_poll"
	EventError      = "error"
)

// Client-to-server message types.
const (
	MessageJoinPoll  = "join_poll"
	MessageLeavePoll = "leave_poll"
)

// Event is the wire envelope for server-to-client messages.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// InboundMessage is what clients send to manage their subscriptions.
type InboundMessage struct {
	Type   string `json:"type"`
	PollID string `json:"pollId"`
}

type PollUpdatedPayload struct {
	PollID string       `json:"pollId"`
	Poll   *models.Poll `json:"poll"`
}

type PollDeletedPayload struct {
	PollID string `json:"pollId"`
}

type VotePayload struct {
	PollID        string           `json:"pollId"`
	Vote          *models.Vote     `json:"vote"`
	UpdatedCounts map[string]int64 `json:"updatedCounts"`
}

type VoteRemovedPayload struct {
	PollID        string           `json:"pollId"`
	SessionID     string           `json:"sessionId"`
	UpdatedCounts map[string]int64 `json:"updatedCounts"`
}

type LikeAddedPayload struct {
	PollID     string       `json:"pollId"`
	Like       *models.Like `json:"like"`
	TotalLikes int64        `json:"totalLikes"`
}

type LikeRemovedPayload struct {
	PollID     string `json:"pollId"`
	SessionID  string `json:"sessionId"`
	TotalLikes int64  `json:"totalLikes"`
}

type JoinedPollPayload struct {
	PollID string `json:"pollId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
