package line

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-relay/internal/adapter/logging"
	"solar-relay/internal/domain/model"
)

func TestPushClient_Delivers(t *testing.T) {
	var got pushRequest
	var auth, contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewPushClient(server.URL, "secret-token", "C123", time.Second, logging.Nop())
	result := client.Deliver(context.Background(), model.OutboundMessage{Parts: []string{"one", "two"}})

	assert.True(t, result.OK())
	assert.Equal(t, "Bearer secret-token", auth)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "C123", got.To)
	assert.Equal(t, []textMessage{{Type: "text", Text: "one"}, {Type: "text", Text: "two"}}, got.Messages)
}

func TestPushClient_NonOKIsFailed(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Authentication failed"}`))
	}))
	defer server.Close()

	client := NewPushClient(server.URL, "bad", "C123", time.Second, logging.Nop())
	result := client.Deliver(context.Background(), model.OutboundMessage{Parts: []string{"hi"}})

	assert.False(t, result.OK())
	assert.Equal(t, model.DeliveryFailed, result.Status)
	assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
	assert.Contains(t, result.Body, "Authentication failed")
	assert.Error(t, result.Err)
	assert.Equal(t, 1, calls, "delivery must not retry")
}

func TestPushClient_RejectsInvalidMessages(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := NewPushClient(server.URL, "t", "C123", time.Second, logging.Nop())

	assert.False(t, client.Deliver(context.Background(), model.OutboundMessage{}).OK())
	tooMany := model.OutboundMessage{Parts: []string{"1", "2", "3", "4", "5", "6"}}
	assert.False(t, client.Deliver(context.Background(), tooMany).OK())
	assert.Zero(t, calls)
}

func TestPushClient_TruncatesLongText(t *testing.T) {
	var got pushRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer server.Close()

	client := NewPushClient(server.URL, "t", "C123", time.Second, logging.Nop())
	result := client.Deliver(context.Background(), model.OutboundMessage{Parts: []string{strings.Repeat("電", MaxTextLength+10)}})

	require.True(t, result.OK())
	assert.Len(t, []rune(got.Messages[0].Text), MaxTextLength)
}

func TestDecodeWebhook_TextMessages(t *testing.T) {
	raw := `{"destination":"U0","events":[
		{"type":"message","replyToken":"r1","source":{"type":"group","groupId":"G1","userId":"U1"},"message":{"id":"1","type":"text","text":"抓取資料"}},
		{"type":"message","replyToken":"r2","source":{"type":"user","userId":"U2"},"message":{"id":"2","type":"sticker"}},
		{"type":"follow","replyToken":"r3","source":{"type":"user","userId":"U3"}}
	]}`

	body, err := DecodeWebhook(strings.NewReader(raw))
	require.NoError(t, err)

	texts := body.TextMessages()
	require.Len(t, texts, 1)
	assert.Equal(t, model.InboundText{Text: "抓取資料", ReplyToken: "r1", SourceID: "G1"}, texts[0])
}

func TestDecodeWebhook_Invalid(t *testing.T) {
	_, err := DecodeWebhook(strings.NewReader("not json"))
	assert.Error(t, err)
}
