package service

import (
	"context"

	"legalai-be/internal/websocket"
)

// FramePusher delivers live updates to a user's open streams.
// Implemented by the websocket Hub.
type FramePusher interface {
	Send(ctx context.Context, userID string, frame websocket.Frame)
}

type nopPusher struct{}

func (nopPusher) Send(context.Context, string, websocket.Frame) {}

func pusherOrNop(p FramePusher) FramePusher {
	if p == nil {
		return nopPusher{}
	}
	return p
}
