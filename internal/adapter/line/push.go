package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"solar-relay/internal/domain/model"
	"solar-relay/internal/domain/ports"
)

// DefaultPushURL is the LINE Messaging API push endpoint.
const DefaultPushURL = "https://api.line.me/v2/bot/message/push"

const (
	// MaxMessages is the number of message objects LINE accepts per push.
	MaxMessages = 5
	// MaxTextLength is the character limit of one text message.
	MaxTextLength = 5000

	bodyExcerptLimit = 512
)

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// PushClient is a LINE push-message notifier.
type PushClient struct {
	endpoint   string
	token      string
	to         string
	httpClient *http.Client
	logger     ports.Logger
}

var _ ports.Notifier = (*PushClient)(nil)

// NewPushClient creates a notifier that pushes to recipient using the channel access token.
func NewPushClient(endpoint, token, recipient string, timeout time.Duration, logger ports.Logger) *PushClient {
	if endpoint == "" {
		endpoint = DefaultPushURL
	}
	return &PushClient{
		endpoint:   endpoint,
		token:      token,
		to:         recipient,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Deliver posts msg in a single push call. Non-200 responses are reported,
// never retried.
func (p *PushClient) Deliver(ctx context.Context, msg model.OutboundMessage) model.DeliveryResult {
	ctx, span := otel.Tracer("solar-relay/line").Start(ctx, "line.Deliver")
	defer span.End()

	result := p.deliver(ctx, msg)
	span.SetAttributes(
		attribute.Int("line.parts", len(msg.Parts)),
		attribute.Int("http.status_code", result.StatusCode),
	)
	if !result.OK() {
		span.SetStatus(codes.Error, "push failed")
		p.logger.Error(ctx, "failed to push line message", "status", result.StatusCode, "body", result.Body, "error", result.Err)
		return result
	}

	p.logger.Info(ctx, "line message sent", "parts", len(msg.Parts))
	return result
}

func (p *PushClient) deliver(ctx context.Context, msg model.OutboundMessage) model.DeliveryResult {
	if len(msg.Parts) == 0 {
		return failed(0, "", fmt.Errorf("message has no parts"))
	}
	if len(msg.Parts) > MaxMessages {
		return failed(0, "", fmt.Errorf("message has %d parts, limit is %d", len(msg.Parts), MaxMessages))
	}

	payload := pushRequest{To: p.to, Messages: make([]textMessage, 0, len(msg.Parts))}
	for _, part := range msg.Parts {
		payload.Messages = append(payload.Messages, textMessage{Type: "text", Text: truncate(part, MaxTextLength)})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failed(0, "", fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return failed(0, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return failed(0, "", fmt.Errorf("perform request: %w", err))
	}
	defer resp.Body.Close()

	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, bodyExcerptLimit))
	if resp.StatusCode != http.StatusOK {
		return failed(resp.StatusCode, strings.TrimSpace(string(excerpt)), fmt.Errorf("line push returned status %d", resp.StatusCode))
	}

	return model.DeliveryResult{Status: model.Delivered, StatusCode: resp.StatusCode}
}

func failed(status int, body string, err error) model.DeliveryResult {
	return model.DeliveryResult{Status: model.DeliveryFailed, StatusCode: status, Body: body, Err: err}
}

// truncate cuts value to limit runes.
func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}
