package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	domainMessage "github.com/AzielCF/az-blast/domains/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMessage(t *testing.T, repo *MessageGormRepository, scheduledAt time.Time) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now().UTC()
	require.NoError(t, repo.Create(context.Background(), domainMessage.ScheduledMessage{
		ID:            id,
		Content:       "hola",
		Recipients:    []string{"5213312340001", "5213312340002"},
		RecipientType: domainMessage.RecipientTypeContact,
		ScheduledAt:   scheduledAt,
		Status:        domainMessage.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
	return id
}

func TestClaimDue_OnlyDueMessages(t *testing.T) {
	_, messages := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	dueID := seedMessage(t, messages, now.Add(-time.Minute))
	futureID := seedMessage(t, messages, now.Add(time.Hour))

	claimed, err := messages.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, dueID, claimed[0].ID)
	assert.Equal(t, domainMessage.StatusProcessing, claimed[0].Status)

	// El mensaje futuro sigue PENDING
	future, err := messages.GetByID(ctx, futureID)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusPending, future.Status)
}

func TestClaimDue_NeverClaimsTwice(t *testing.T) {
	_, messages := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedMessage(t, messages, now.Add(-time.Minute))

	first, err := messages.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A second cycle sees nothing: the conditional update already flipped
	// the row out of PENDING.
	second, err := messages.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestClaimDue_ConcurrentCyclesSplitTheBatch(t *testing.T) {
	_, messages := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	const total = 8
	for i := 0; i < total; i++ {
		seedMessage(t, messages, now.Add(-time.Minute))
	}

	// Dos ciclos compiten por el mismo lote, como dos instancias del proceso
	results := make([][]domainMessage.ScheduledMessage, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			claimed, err := messages.ClaimDue(ctx, now, total)
			assert.NoError(t, err)
			results[slot] = claimed
		}(i)
	}
	wg.Wait()

	seen := make(map[string]int)
	for _, claimed := range results {
		for _, msg := range claimed {
			seen[msg.ID]++
		}
	}
	require.Len(t, seen, total, "every due message must be claimed by someone")
	for id, count := range seen {
		assert.Equalf(t, 1, count, "message %s claimed by both cycles", id)
	}
}

func TestClaimDue_RespectsBatchSize(t *testing.T) {
	_, messages := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		seedMessage(t, messages, now.Add(-time.Duration(i+1)*time.Minute))
	}

	claimed, err := messages.ClaimDue(ctx, now, 3)
	require.NoError(t, err)
	assert.Len(t, claimed, 3)

	rest, err := messages.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestCancel_OnlyWhilePending(t *testing.T) {
	_, messages := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	id := seedMessage(t, messages, now.Add(-time.Minute))
	require.NoError(t, messages.Cancel(ctx, id))

	msg, err := messages.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domainMessage.StatusCancelled, msg.Status)

	// Claimed messages can no longer be cancelled
	claimedID := seedMessage(t, messages, now.Add(-time.Minute))
	_, err = messages.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	assert.ErrorIs(t, messages.Cancel(ctx, claimedID), ErrNotCancellable)

	assert.ErrorIs(t, messages.Cancel(ctx, "missing"), ErrMessageNotFound)
}

func TestFailStalled_CutoffBoundaries(t *testing.T) {
	_, messages := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	oldID := seedMessage(t, messages, now.Add(-90*time.Minute))
	recentID := seedMessage(t, messages, now.Add(-10*time.Minute))

	reaped, err := messages.FailStalled(ctx, now.Add(-time.Hour), "timed out")
	require.NoError(t, err)
	assert.EqualValues(t, 1, reaped)

	old, _ := messages.GetByID(ctx, oldID)
	assert.Equal(t, domainMessage.StatusFailed, old.Status)
	assert.Equal(t, "timed out", old.Error)

	recent, _ := messages.GetByID(ctx, recentID)
	assert.Equal(t, domainMessage.StatusPending, recent.Status)
}

func TestMarkOutcomes(t *testing.T) {
	_, messages := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sentID := seedMessage(t, messages, now.Add(-time.Minute))
	require.NoError(t, messages.MarkSent(ctx, sentID, "acct-1", now))
	msg, _ := messages.GetByID(ctx, sentID)
	assert.Equal(t, domainMessage.StatusSent, msg.Status)
	assert.Equal(t, "acct-1", msg.AccountID)
	require.NotNil(t, msg.SentAt)

	partialID := seedMessage(t, messages, now.Add(-time.Minute))
	require.NoError(t, messages.MarkPartial(ctx, partialID, "acct-1", "partial failure: 1 of 3", now))
	msg, _ = messages.GetByID(ctx, partialID)
	assert.Equal(t, domainMessage.StatusPartial, msg.Status)
	assert.Equal(t, "partial failure: 1 of 3", msg.Error)

	failedID := seedMessage(t, messages, now.Add(-time.Minute))
	require.NoError(t, messages.MarkFailed(ctx, failedID, "", "no available sessions"))
	msg, _ = messages.GetByID(ctx, failedID)
	assert.Equal(t, domainMessage.StatusFailed, msg.Status)
	assert.Equal(t, "no available sessions", msg.Error)
	assert.Empty(t, msg.AccountID)
}

func TestDeliveryAttempts_RoundTrip(t *testing.T) {
	_, messages := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	id := seedMessage(t, messages, now.Add(-time.Minute))
	require.NoError(t, messages.CreateAttempt(ctx, domainMessage.DeliveryAttempt{
		MessageID: id, Recipient: "5213312340001@s.whatsapp.net", Success: true, CreatedAt: now,
	}))
	require.NoError(t, messages.CreateAttempt(ctx, domainMessage.DeliveryAttempt{
		MessageID: id, Recipient: "5213312340002@s.whatsapp.net", Success: false,
		Error: "recipient unreachable", CreatedAt: now,
	}))

	attempts, err := messages.ListAttempts(ctx, id)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.True(t, attempts[0].Success)
	assert.False(t, attempts[1].Success)
	assert.Equal(t, "recipient unreachable", attempts[1].Error)
}
