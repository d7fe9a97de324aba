// Package domain contains core concepts of the message board.
// This file defines the Message record and its creation rules.
// Messages are created once and only their reaction counters change afterward.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAvatar    = "anonymous"
	MaxContentLength = 500
)

// Message is the only entity of the board.
// MessageID and Timestamp form the composite store key.
type Message struct {
	MessageID string         `json:"messageId"`
	Timestamp int64          `json:"timestamp"` // milliseconds since epoch
	Content   string         `json:"content"`
	Avatar    string         `json:"avatar"`
	Reactions map[string]int `json:"reactions"`
	CreatedAt string         `json:"createdAt"`
}

// NewMessage builds a fresh record for an already validated request.
func NewMessage(req CreateMessageRequest, now time.Time) Message {
	avatar := DefaultAvatar
	if req.Avatar != nil && *req.Avatar != "" {
		avatar = *req.Avatar
	}
	return Message{
		MessageID: uuid.NewString(),
		Timestamp: now.UnixMilli(),
		Content:   req.Content,
		Avatar:    avatar,
		Reactions: map[string]int{},
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
	}
}
