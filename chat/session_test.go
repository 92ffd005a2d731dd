package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func echo(reply string) Completer {
	return CompleterFunc(func(context.Context, []Message, string) (string, error) {
		return reply, nil
	})
}

func TestNewSession_StartsWithGreeting(t *testing.T) {
	s := NewSession(echo("hi"), SessionOptions{})
	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, RoleAssistant, history[0].Role)
	assert.Equal(t, Greeting, history[0].Content)
	assert.True(t, history[0].Synthetic)
	assert.NotEmpty(t, history[0].ID)
	assert.False(t, s.Typing())
}

func TestSend_AppendsUserAndReply(t *testing.T) {
	var gotHistory []Message
	var gotText string
	s := NewSession(CompleterFunc(func(_ context.Context, history []Message, text string) (string, error) {
		gotHistory, gotText = history, text
		return "Paris.", nil
	}), SessionOptions{})

	reply, err := s.Send(context.Background(), "  capital of France?  ")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", reply.Content)
	assert.Equal(t, RoleAssistant, reply.Role)

	assert.Equal(t, "capital of France?", gotText)
	require.Len(t, gotHistory, 1, "history excludes the message being sent")

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, RoleUser, history[1].Role)
	assert.Equal(t, "capital of France?", history[1].Content)
	assert.Equal(t, reply, history[2])
	assert.NotEqual(t, history[1].ID, history[2].ID)
	assert.False(t, s.Typing())
}

func TestSend_FailureAppendsOneFallback(t *testing.T) {
	errModel := errors.New("quota exceeded")
	s := NewSession(CompleterFunc(func(context.Context, []Message, string) (string, error) {
		return "", errModel
	}), SessionOptions{})

	reply, err := s.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, errModel)
	assert.Equal(t, FallbackMessage, reply.Content)

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, "hello", history[1].Content)
	assert.Equal(t, FallbackMessage, history[2].Content)
	assert.True(t, history[2].Synthetic)
	assert.False(t, s.Typing())
}

func TestSend_EmptyReplyIsFailure(t *testing.T) {
	s := NewSession(echo("   "), SessionOptions{})
	reply, err := s.Send(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, FallbackMessage, reply.Content)
}

func TestSend_NoCompleter(t *testing.T) {
	s := NewSession(nil, SessionOptions{})
	_, err := s.Send(context.Background(), "hello")
	assert.Error(t, err)
	assert.Len(t, s.History(), 3)
}

func TestSend_EmptyInputHasNoSideEffects(t *testing.T) {
	called := false
	s := NewSession(CompleterFunc(func(context.Context, []Message, string) (string, error) {
		called = true
		return "x", nil
	}), SessionOptions{})

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := s.Send(context.Background(), input)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.False(t, called)
	assert.Len(t, s.History(), 1)
	assert.False(t, s.Typing())
}

func TestSend_TypingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	s := NewSession(CompleterFunc(func(context.Context, []Message, string) (string, error) {
		close(entered)
		<-release
		return "done", nil
	}), SessionOptions{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Send(context.Background(), "slow question")
	}()

	<-entered
	assert.True(t, s.Typing())
	assert.Len(t, s.History(), 2, "user message is visible before the reply")

	close(release)
	wg.Wait()
	assert.False(t, s.Typing())
	assert.Len(t, s.History(), 3)
}

func TestSend_RateLimited(t *testing.T) {
	s := NewSession(echo("ok"), SessionOptions{RequestsPerMinute: 1, Burst: 1})

	_, err := s.Send(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	reply, err := s.Send(ctx, "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, FallbackMessage, reply.Content)
	assert.False(t, s.Typing())
}

func TestClear_ResetsToGreeting(t *testing.T) {
	s := NewSession(echo("ok"), SessionOptions{})
	_, err := s.Send(context.Background(), "hello")
	require.NoError(t, err)

	s.Clear()
	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, Greeting, history[0].Content)
}

func TestSession_UsesClock(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewSession(echo("ok"), SessionOptions{Clock: func() time.Time { return at }})
	reply, err := s.Send(context.Background(), "time?")
	require.NoError(t, err)
	assert.Equal(t, at, reply.Timestamp)
}
