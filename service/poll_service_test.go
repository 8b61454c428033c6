package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quickpoll-backend/apperrors"
	"quickpoll-backend/database"
	"quickpoll-backend/models"
	"quickpoll-backend/repository"
)

// recordingNotifier captures emitted events in order.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	copy(out, n.events)
	return out
}

func (n *recordingNotifier) PollUpdated(pollID string, poll *models.Poll) { n.record("poll_updated") }
func (n *recordingNotifier) PollDeleted(pollID string)                    { n.record("poll_deleted") }
func (n *recordingNotifier) VoteAdded(pollID string, vote *models.Vote, counts map[string]int64) {
	n.record("vote_added")
}
func (n *recordingNotifier) VoteChanged(pollID string, vote *models.Vote, counts map[string]int64) {
	n.record("vote_changed")
}
func (n *recordingNotifier) VoteRemoved(pollID, sessionID string, counts map[string]int64) {
	n.record("vote_removed")
}
func (n *recordingNotifier) LikeAdded(pollID string, like *models.Like, totalLikes int64) {
	n.record("like_added")
}
func (n *recordingNotifier) LikeRemoved(pollID, sessionID string, totalLikes int64) {
	n.record("like_removed")
}

func setupService(t *testing.T) (*PollService, *recordingNotifier, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	notifier := &recordingNotifier{}
	svc := NewPollService(
		repository.NewSessionRepository(db),
		repository.NewPollRepository(db),
		repository.NewVoteRepository(db),
		repository.NewLikeRepository(db),
		notifier,
		nil,
	)
	return svc, notifier, db
}

func TestCreatePoll_Validation(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		options []string
		message string
	}{
		{"too few", []string{"A"}, "At least 2 options are required"},
		{"empty list", nil, "At least 2 options are required"},
		{"duplicates", []string{"A", "A"}, "Duplicate options are not allowed"},
		{"blank entry", []string{"A", ""}, "Option cannot be empty"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePoll(ctx, "s1", CreatePollInput{Title: "T", Options: tc.options})
			require.Error(t, err)

			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.CodeInvalidArgument, appErr.Code)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
}

func TestCreatePoll_AnnotatesAndNotifies(t *testing.T) {
	svc, notifier, _ := setupService(t)
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, "s1", CreatePollInput{
		Title:   "Snack?",
		Options: []string{"Chips", "Fruit"},
	})
	require.NoError(t, err)

	assert.Equal(t, "s1", poll.CreatedBy)
	assert.True(t, poll.IsActive)
	require.Len(t, poll.Options, 2)
	assert.Equal(t, 1, poll.Options[0].DisplayOrder)
	assert.Equal(t, []string{"poll_updated"}, notifier.Events())
}

func TestVote_OutcomeEvents(t *testing.T) {
	svc, notifier, _ := setupService(t)
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, "owner", CreatePollInput{Title: "Q", Options: []string{"A", "B"}})
	require.NoError(t, err)
	optionA := poll.Options[0].OptionID
	optionB := poll.Options[1].OptionID

	result, err := svc.Vote(ctx, poll.PollID, "voter", optionA)
	require.NoError(t, err)
	assert.Equal(t, repository.VoteAdded, result.Outcome)
	assert.Equal(t, int64(1), result.UpdatedCounts[optionA])
	assert.Equal(t, int64(0), result.UpdatedCounts[optionB])

	result, err = svc.Vote(ctx, poll.PollID, "voter", optionB)
	require.NoError(t, err)
	assert.Equal(t, repository.VoteChanged, result.Outcome)

	// An unchanged re-vote emits nothing.
	result, err = svc.Vote(ctx, poll.PollID, "voter", optionB)
	require.NoError(t, err)
	assert.Equal(t, repository.VoteUnchanged, result.Outcome)

	assert.Equal(t, []string{"poll_updated", "vote_added", "vote_changed"}, notifier.Events())
}

func TestVote_Rejections(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, "owner", CreatePollInput{Title: "Q", Options: []string{"A", "B"}})
	require.NoError(t, err)

	_, err = svc.Vote(ctx, "missing-poll", "voter", "whatever")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)

	_, err = svc.Vote(ctx, poll.PollID, "voter", "foreign-option")
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidArgument, appErr.Code)

	require.NoError(t, db.Model(&models.Poll{}).
		Where("poll_id = ?", poll.PollID).
		Update("is_active", false).Error)

	_, err = svc.Vote(ctx, poll.PollID, "voter", poll.Options[0].OptionID)
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidState, appErr.Code)
}

func TestUnvote_WithoutVote(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, "owner", CreatePollInput{Title: "Q", Options: []string{"A", "B"}})
	require.NoError(t, err)

	_, err = svc.Unvote(ctx, poll.PollID, "voter")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	assert.Equal(t, "Vote not found", appErr.Message)
}

func TestUpdatePoll_Ownership(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, "owner", CreatePollInput{Title: "Q", Options: []string{"A", "B"}})
	require.NoError(t, err)

	title := "hijack"
	_, err = svc.UpdatePoll(ctx, poll.PollID, "intruder", UpdatePollInput{Title: &title})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	err = svc.DeletePoll(ctx, poll.PollID, "intruder")
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	// An update on an absent poll is NotFound, not Forbidden.
	_, err = svc.UpdatePoll(ctx, "missing", "owner", UpdatePollInput{Title: &title})
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestLike_IdempotentEvents(t *testing.T) {
	svc, notifier, _ := setupService(t)
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, "owner", CreatePollInput{Title: "Q", Options: []string{"A", "B"}})
	require.NoError(t, err)

	_, total, err := svc.Like(ctx, poll.PollID, "fan")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// The repeat like emits no second event.
	_, total, err = svc.Like(ctx, poll.PollID, "fan")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	total, err = svc.Unlike(ctx, poll.PollID, "fan")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	_, err = svc.Unlike(ctx, poll.PollID, "fan")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidState, appErr.Code)

	assert.Equal(t, []string{"poll_updated", "like_added", "like_removed"}, notifier.Events())
}

func TestListPolls_ClampsPaging(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreatePoll(ctx, "owner", CreatePollInput{Title: "Q", Options: []string{"A", "B"}})
		require.NoError(t, err)
	}

	_, pagination, err := svc.ListPolls(ctx, -5, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.Limit)

	_, pagination, err = svc.ListPolls(ctx, 1, 500, "")
	require.NoError(t, err)
	assert.Equal(t, 50, pagination.Limit)
}
