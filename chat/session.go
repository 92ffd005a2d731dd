package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/leoassist/leo/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var ErrEmptyMessage = errors.New("message is empty")

var metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "leo_chat_requests_total",
	Help: "Chat completion requests by result.",
}, []string{"result"})

// Completer produces the assistant reply to text given the prior
// conversation.
type Completer interface {
	Complete(ctx context.Context, history []Message, text string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, history []Message, text string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, history []Message, text string) (string, error) {
	return f(ctx, history, text)
}

type SessionOptions struct {
	// RequestsPerMinute limits outgoing completions; zero disables.
	RequestsPerMinute int
	Burst             int
	Clock             func() time.Time
}

type Session struct {
	completer Completer
	limiter   *rate.Limiter
	now       func() time.Time

	mu       sync.Mutex
	messages []Message
	inflight int
}

func NewSession(completer Completer, opts SessionOptions) *Session {
	s := &Session{
		completer: completer,
		limiter:   rate.NewLimiter(rate.Inf, 0),
		now:       opts.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.RequestsPerMinute > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), burst)
	}
	s.reset()
	return s
}

func (s *Session) reset() {
	greeting := newMessage(RoleAssistant, Greeting, s.now())
	greeting.Synthetic = true
	s.messages = []Message{greeting}
}

// Send appends the user's message and then either the reply or a single
// fallback message. On failure the fallback is returned with the error.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	history := make([]Message, len(s.messages))
	copy(history, s.messages)
	s.messages = append(s.messages, newMessage(RoleUser, text, s.now()))
	s.inflight++
	s.mu.Unlock()

	reply, err := s.complete(ctx, history, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if err != nil {
		metricRequests.WithLabelValues("error").Inc()
		utils.Error("Chat completion failed: %v", err)
		fallback := newMessage(RoleAssistant, FallbackMessage, s.now())
		fallback.Synthetic = true
		s.messages = append(s.messages, fallback)
		return fallback, err
	}

	metricRequests.WithLabelValues("ok").Inc()
	msg := newMessage(RoleAssistant, reply, s.now())
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *Session) complete(ctx context.Context, history []Message, text string) (string, error) {
	if s.completer == nil {
		return "", errors.New("no chat model configured")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limited: %w", err)
	}
	reply, err := s.completer.Complete(ctx, history, text)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", errors.New("model returned an empty reply")
	}
	return reply, nil
}

func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Typing reports whether a reply is pending.
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Clear drops the conversation back to the greeting.
func (s *Session) Clear() {
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
}
