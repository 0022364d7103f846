package dto

import "legalai-be/pkg/chat"

type SendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

type SendMessageResponse struct {
	Question chat.Message `json:"question"`
	Reply    chat.Message `json:"reply"`
}

type ChatResponse struct {
	State    string         `json:"state"`
	Messages []chat.Message `json:"messages"`
}

type ChatTypingFrame struct {
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
	Done      bool   `json:"done"`
}
