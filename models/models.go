package models

import (
	"time"
)

// Session is an anonymous per-client identity. Sessions are created on first
// contact and touched on every request; they are never deleted.
type Session struct {
	SessionID    string    `gorm:"primaryKey;size:36" json:"sessionId"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}

// Poll represents a poll owned by the session that created it.
// TotalVotes and TotalLikes are denormalized counters recomputed from the
// vote/like ledgers inside every mutating transaction.
type Poll struct {
	PollID      string       `gorm:"primaryKey;size:36" json:"pollId"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	CreatedBy   string       `gorm:"size:36;not null;index" json:"createdBy"`
	IsActive    bool         `gorm:"not null;default:true" json:"isActive"`
	TotalVotes  int64        `gorm:"not null;default:0" json:"totalVotes"`
	TotalLikes  int64        `gorm:"not null;default:0" json:"totalLikes"`
	CreatedAt   time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Options     []PollOption `gorm:"foreignKey:PollID;references:PollID" json:"options"`

	// Per-requester annotations, populated on reads when a session id is
	// supplied. Never persisted.
	SessionVote  *Vote `gorm:"-" json:"sessionVote,omitempty"`
	SessionLiked bool  `gorm:"-" json:"sessionLiked"`
}

// PollOption is immutable once created except for its vote counter.
// DisplayOrder is 1-based and fixed at creation time.
type PollOption struct {
	OptionID     string    `gorm:"primaryKey;size:36" json:"optionId"`
	PollID       string    `gorm:"size:36;not null;index:poll_options_poll_idx" json:"pollId"`
	OptionText   string    `gorm:"size:500;not null" json:"optionText"`
	VoteCount    int64     `gorm:"not null;default:0" json:"voteCount"`
	DisplayOrder int       `gorm:"not null" json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Vote records one session's choice on a poll. The unique index on
// (poll_id, session_id) enforces the single-vote-per-session invariant at the
// storage layer; changing a vote re-points the existing row.
type Vote struct {
	VoteID    string    `gorm:"primaryKey;size:36" json:"voteId"`
	PollID    string    `gorm:"size:36;not null;uniqueIndex:votes_poll_session_unique,priority:1" json:"pollId"`
	OptionID  string    `gorm:"size:36;not null;index" json:"optionId"`
	SessionID string    `gorm:"size:36;not null;uniqueIndex:votes_poll_session_unique,priority:2;index" json:"sessionId"`
	VotedAt   time.Time `json:"votedAt"`
}

// Like records one session liking a poll, at most once per (poll, session).
type Like struct {
	LikeID    string    `gorm:"primaryKey;size:36" json:"likeId"`
	PollID    string    `gorm:"size:36;not null;uniqueIndex:likes_poll_session_unique,priority:1" json:"pollId"`
	SessionID string    `gorm:"size:36;not null;uniqueIndex:likes_poll_session_unique,priority:2;index" json:"sessionId"`
	LikedAt   time.Time `json:"likedAt"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes page metadata from a total row count.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
