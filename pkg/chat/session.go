// Package chat keeps a single user's assistant transcript and runs one
// request/response turn at a time against a completion backend.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"legalai-be/pkg/llm"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

type State string

const (
	StateIdle             State = "idle"
	StateAwaitingResponse State = "awaiting_response"
)

// FallbackMessage replaces the reply when the completion call fails.
const FallbackMessage = "I apologize, there was an error processing your request. Please try again later."

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrAwaitingResponse = errors.New("still waiting for the previous reply")
	ErrSuperseded       = errors.New("chat was reset before the reply arrived")
)

type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	IsTyping  bool      `json:"isTyping"`
	CreatedAt time.Time `json:"created_at"`
}

// Turn is the outcome of one Send. Cause is set when the reply is the
// fallback; it is informational and never returned as an error.
type Turn struct {
	Question Message
	Reply    Message
	Cause    error
}

type Completer interface {
	Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error)
}

// ComposePrompt builds the stateless request text for one turn.
func ComposePrompt(systemPrompt, text string) string {
	return fmt.Sprintf("%s\n\nUser query: %s", systemPrompt, text)
}

type Session struct {
	completer    Completer
	systemPrompt string

	mu         sync.Mutex
	state      State
	transcript []Message
	epoch      uint64
	cancel     context.CancelFunc
	now        func() time.Time
}

func NewSession(completer Completer, systemPrompt string) *Session {
	return &Session{
		completer:    completer,
		systemPrompt: systemPrompt,
		state:        StateIdle,
		now:          time.Now,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.transcript...)
}

// Send appends the user's message right away, then makes exactly one
// completion call. A failed call still yields a reply (the fallback).
func (s *Session) Send(ctx context.Context, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state == StateAwaitingResponse {
		s.mu.Unlock()
		return Turn{}, ErrAwaitingResponse
	}
	question := Message{ID: uuid.NewString(), Text: text, Sender: SenderUser, CreatedAt: s.now()}
	s.transcript = append(s.transcript, question)
	s.state = StateAwaitingResponse
	s.epoch++
	epoch := s.epoch
	callCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	reply, err := s.completer.Generate(callCtx, ComposePrompt(s.systemPrompt, text))
	cancel()
	if err == nil && strings.TrimSpace(reply) == "" {
		err = llm.ErrEmptyResponse
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return Turn{Question: question}, ErrSuperseded
	}
	s.cancel = nil
	s.state = StateIdle

	if err != nil {
		reply = FallbackMessage
	}
	answer := Message{ID: uuid.NewString(), Text: reply, Sender: SenderAI, IsTyping: true, CreatedAt: s.now()}
	s.transcript = append(s.transcript, answer)
	return Turn{Question: question, Reply: answer, Cause: err}, nil
}

// FinishTyping clears the reveal flag once the reply has been fully shown.
func (s *Session) FinishTyping(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transcript {
		if s.transcript[i].ID == id {
			s.transcript[i].IsTyping = false
			return true
		}
	}
	return false
}

// Reset clears the transcript and cancels the in-flight call, if any.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epoch++
	s.state = StateIdle
	s.transcript = nil
}
