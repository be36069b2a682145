package line

import (
	"encoding/json"
	"fmt"
	"io"

	"solar-relay/internal/domain/model"
)

// WebhookBody is the envelope LINE posts to the webhook URL.
type WebhookBody struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one webhook event. Only message events carry Message.
type Event struct {
	Type       string        `json:"type"`
	ReplyToken string        `json:"replyToken"`
	Source     EventSource   `json:"source"`
	Message    *EventMessage `json:"message,omitempty"`
}

// EventSource identifies who sent the event.
type EventSource struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// EventMessage is the message object of a message event.
type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// DecodeWebhook reads a webhook body.
func DecodeWebhook(r io.Reader) (WebhookBody, error) {
	var body WebhookBody
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return WebhookBody{}, fmt.Errorf("decode webhook: %w", err)
	}
	return body, nil
}

// TextMessages returns the text message events in arrival order.
func (b WebhookBody) TextMessages() []model.InboundText {
	texts := make([]model.InboundText, 0, len(b.Events))
	for _, ev := range b.Events {
		if ev.Type != "message" || ev.Message == nil || ev.Message.Type != "text" {
			continue
		}
		texts = append(texts, model.InboundText{
			Text:       ev.Message.Text,
			ReplyToken: ev.ReplyToken,
			SourceID:   ev.Source.id(),
		})
	}
	return texts
}

func (s EventSource) id() string {
	switch {
	case s.GroupID != "":
		return s.GroupID
	case s.RoomID != "":
		return s.RoomID
	default:
		return s.UserID
	}
}
