package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickplate/quickplate-go/core"
)

type fakeBackend struct {
	chatFn func(ctx context.Context, message string, history []core.ChatExchange) (string, error)
	recsFn func(ctx context.Context, userID int) ([]core.Recommendation, error)
}

func (f *fakeBackend) Chat(ctx context.Context, message string, history []core.ChatExchange) (string, error) {
	if f.chatFn == nil {
		return "", errors.New("chat not stubbed")
	}
	return f.chatFn(ctx, message, history)
}

func (f *fakeBackend) Recommendations(ctx context.Context, userID int) ([]core.Recommendation, error) {
	if f.recsFn == nil {
		return nil, errors.New("recommendations not stubbed")
	}
	return f.recsFn(ctx, userID)
}

func TestAssistant_SendAccumulatesHistory(t *testing.T) {
	var gotHistory []core.ChatExchange
	backend := &fakeBackend{
		chatFn: func(ctx context.Context, message string, history []core.ChatExchange) (string, error) {
			gotHistory = history
			return "reply to " + message, nil
		},
	}
	a := New(backend, nil)

	reply, err := a.Send(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "reply to first", reply)
	assert.Empty(t, gotHistory, "first message carries no history")

	_, err = a.Send(context.Background(), "second")
	require.NoError(t, err)
	require.Len(t, gotHistory, 1, "second message carries the first exchange")
	assert.Equal(t, "first", gotHistory[0].User)
	assert.Equal(t, "reply to first", gotHistory[0].Assistant)

	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[1].User)
}

func TestAssistant_SendRejectsBlankMessage(t *testing.T) {
	a := New(&fakeBackend{}, nil)

	_, err := a.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Empty(t, a.History())
}

func TestAssistant_FailedSendLeavesHistoryIntact(t *testing.T) {
	calls := 0
	backend := &fakeBackend{
		chatFn: func(ctx context.Context, message string, history []core.ChatExchange) (string, error) {
			calls++
			if calls > 1 {
				return "", core.ErrConnectionFailed
			}
			return "ok", nil
		},
	}
	a := New(backend, nil)

	_, err := a.Send(context.Background(), "first")
	require.NoError(t, err)

	_, err = a.Send(context.Background(), "second")
	assert.ErrorIs(t, err, core.ErrConnectionFailed)
	assert.Len(t, a.History(), 1, "failed exchange is not recorded")
}

func TestAssistant_Reset(t *testing.T) {
	backend := &fakeBackend{
		chatFn: func(ctx context.Context, message string, history []core.ChatExchange) (string, error) {
			return "ok", nil
		},
	}
	a := New(backend, nil)

	_, err := a.Send(context.Background(), "hello")
	require.NoError(t, err)
	a.Reset()

	assert.Empty(t, a.History())
}

func TestAssistant_Recommendations(t *testing.T) {
	backend := &fakeBackend{
		recsFn: func(ctx context.Context, userID int) ([]core.Recommendation, error) {
			assert.Equal(t, 7, userID)
			return []core.Recommendation{
				{Name: "Veg Thali", Reason: "You order lunch often", Category: "Lunch"},
			}, nil
		},
	}
	a := New(backend, nil)

	recs, err := a.Recommendations(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Veg Thali", recs[0].Name)
}
