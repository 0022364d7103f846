package service

import (
	"context"
	"time"

	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/logger"
	"legalai-be/internal/repository/memory"
	"legalai-be/internal/websocket"
	"legalai-be/pkg/chat"
)

type IChatService interface {
	Transcript(ctx context.Context, subject string) *dto.ChatResponse
	Send(ctx context.Context, subject string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	Reset(ctx context.Context, subject string) *dto.ChatResponse
}

// RevealSettings paces the progressive display of a reply.
type RevealSettings struct {
	Step     int
	Interval time.Duration
}

type chatService struct {
	completer    chat.Completer
	systemPrompt string
	workspace    *memory.WorkspaceRepository
	pusher       FramePusher
	reveal       RevealSettings
	logger       logger.ILogger
}

func NewChatService(
	completer chat.Completer,
	systemPrompt string,
	workspace *memory.WorkspaceRepository,
	pusher FramePusher,
	reveal RevealSettings,
	log logger.ILogger,
) IChatService {
	return &chatService{
		completer:    completer,
		systemPrompt: systemPrompt,
		workspace:    workspace,
		pusher:       pusherOrNop(pusher),
		reveal:       reveal,
		logger:       log,
	}
}

func (s *chatService) session(subject string) *chat.Session {
	return s.workspace.ChatSession(subject, func() *chat.Session {
		return chat.NewSession(s.completer, s.systemPrompt)
	})
}

func chatResponse(session *chat.Session) *dto.ChatResponse {
	messages := session.Transcript()
	if messages == nil {
		messages = []chat.Message{}
	}
	return &dto.ChatResponse{State: string(session.State()), Messages: messages}
}

func (s *chatService) Transcript(ctx context.Context, subject string) *dto.ChatResponse {
	return chatResponse(s.session(subject))
}

// Send blocks for the completion, then streams the reply over the hub in the background.
func (s *chatService) Send(ctx context.Context, subject string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	session := s.session(subject)
	turn, err := session.Send(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	if turn.Cause != nil {
		s.logger.Error("ChatService", "Completion failed, sent fallback reply", map[string]interface{}{
			"subject": subject,
			"error":   turn.Cause.Error(),
		})
	}

	go s.stream(subject, session, turn.Reply)

	return &dto.SendMessageResponse{Question: turn.Question, Reply: turn.Reply}, nil
}

func (s *chatService) stream(subject string, session *chat.Session, reply chat.Message) {
	ctx := context.Background()
	err := chat.Reveal(ctx, reply.Text, s.reveal.Step, s.reveal.Interval, func(prefix string, done bool) error {
		s.pusher.Send(ctx, subject, websocket.Frame{
			Type: websocket.FrameChatTyping,
			Data: dto.ChatTypingFrame{MessageID: reply.ID, Text: prefix, Done: done},
		})
		return nil
	})
	if err != nil {
		s.logger.Warn("ChatService", "Reveal interrupted", map[string]interface{}{"subject": subject, "error": err.Error()})
	}
	session.FinishTyping(reply.ID)
}

func (s *chatService) Reset(ctx context.Context, subject string) *dto.ChatResponse {
	session := s.session(subject)
	session.Reset()
	return chatResponse(session)
}
