package amqp

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InboundMessage is one chat message forwarded by the messaging bridge.
type InboundMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ReplyMessage is published back to the bridge for delivery to ChatID.
type ReplyMessage struct {
	ID        string    `json:"id"`
	InReplyTo string    `json:"in_reply_to"`
	ChatID    string    `json:"chat_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// InboundMessageFromJSON decodes a bridge message. Messages without an ID get
// a generated one so logs can correlate the reply. A missing chat ID falls
// back to the sender.
func InboundMessageFromJSON(data []byte) (*InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(msg.ID) == "" {
		msg.ID = uuid.NewString()
	}
	if msg.ChatID == "" {
		msg.ChatID = msg.Sender
	}
	return &msg, nil
}

func NewReply(in *InboundMessage, text string) *ReplyMessage {
	return &ReplyMessage{
		ID:        uuid.NewString(),
		InReplyTo: in.ID,
		ChatID:    in.ChatID,
		Text:      text,
		Timestamp: time.Now(),
	}
}

func (m *ReplyMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
