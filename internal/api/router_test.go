package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-relay/internal/adapter/line"
	"solar-relay/internal/adapter/lock"
	"solar-relay/internal/adapter/logging"
	"solar-relay/internal/adapter/scrape"
	"solar-relay/internal/api/handler"
	"solar-relay/internal/domain/model"
	"solar-relay/internal/metrics"
	"solar-relay/internal/usecase"
)

var fields = []string{"lbl_online_date", "lbl_daily_pw", "lbl_today_price", "lbl_total_price", "lbl_system_time"}

type pushRecorder struct {
	mu     sync.Mutex
	status int
	bodies []map[string]any
}

func (p *pushRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	p.mu.Lock()
	p.bodies = append(p.bodies, body)
	status := p.status
	p.mu.Unlock()
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"message":"rejected"}`))
}

func (p *pushRecorder) texts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, b := range p.bodies {
		for _, m := range b["messages"].([]any) {
			out = append(out, m.(map[string]any)["text"].(string))
		}
	}
	return out
}

func (p *pushRecorder) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bodies)
}

type fixture struct {
	server   *httptest.Server
	push     *pushRecorder
	siteHits []*atomic.Int32
}

func newFixture(t *testing.T, pushStatus int, siteStatus ...int) *fixture {
	t.Helper()
	f := &fixture{push: &pushRecorder{status: pushStatus}}

	pushServer := httptest.NewServer(f.push)
	t.Cleanup(pushServer.Close)

	targets := make([]model.Target, 0, len(siteStatus))
	for i, status := range siteStatus {
		hits := new(atomic.Int32)
		f.siteHits = append(f.siteHits, hits)
		site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(status)
			for _, id := range fields {
				fmt.Fprintf(w, `<span id="%s">v%d</span>`, id, i+1)
			}
		}))
		t.Cleanup(site.Close)
		targets = append(targets, model.Target{Name: fmt.Sprintf("site%d", i+1), URL: site.URL, Fields: fields})
	}

	logger := logging.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	fetcher := scrape.NewFetcher(scrape.FetcherConfig{Timeout: time.Second, Attempts: 3}, logger, m.FetchHooks())
	agg := usecase.NewAggregator(fetcher, scrape.NewExtractor(model.LocaleEN), model.LocaleEN, logger, 0, m.AggregatorHooks())
	notifier := line.NewPushClient(pushServer.URL, "token", "C1", time.Second, logger)
	relay := usecase.NewRelay(agg, notifier, lock.NewLocal(), logger, usecase.RelayConfig{Targets: targets, MaxParts: line.MaxMessages}, m.RelayHooks())
	commands := usecase.NewCommandDispatcher(relay, notifier, usecase.DefaultTriggerPhrase, logger)

	router := NewRouter(Handlers{
		Relay:   handler.NewRelayHandler(relay, logger),
		Webhook: handler.NewWebhookHandler(commands, logger),
		View:    handler.NewViewHandler(relay, model.LocaleZhTW.Labels, logger),
		Health:  handler.NewHealthHandler(),
	}, reg, logger)

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func webhookBody(text string) string {
	return fmt.Sprintf(`{"events":[{"type":"message","replyToken":"r","source":{"type":"group","groupId":"G"},"message":{"id":"1","type":"text","text":%q}}]}`, text)
}

func TestSendData_DeliversAllTargets(t *testing.T) {
	f := newFixture(t, http.StatusOK, 200, 200, 200)

	resp, err := http.Get(f.server.URL + "/send-data")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "success", "message": "Data sent to LINE"}, body)
	assert.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))

	texts := f.push.texts()
	require.Len(t, texts, 1)
	assert.Len(t, strings.Split(texts[0], "\n\n"), 3)
}

func TestSendData_FailedTargetIsIsolated(t *testing.T) {
	f := newFixture(t, http.StatusOK, 200, 503, 200)

	resp, err := http.Get(f.server.URL + "/send-data")
	require.NoError(t, err)
	resp.Body.Close()

	blocks := strings.Split(f.push.texts()[0], "\n\n")
	require.Len(t, blocks, 3)
	assert.Contains(t, blocks[0], "lbl_daily_pw: v1")
	assert.Contains(t, blocks[1], "lbl_daily_pw: error occurred: http status error: 503")
	assert.Contains(t, blocks[2], "lbl_daily_pw: v3")
	assert.EqualValues(t, 3, f.siteHits[1].Load())
}

func TestSendData_AcknowledgesFailedDelivery(t *testing.T) {
	f := newFixture(t, http.StatusBadRequest, 200, 200, 200)

	resp, err := http.Get(f.server.URL + "/send-data")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, 1, f.push.calls())
}

func TestWebhook_TriggerPhrase(t *testing.T) {
	f := newFixture(t, http.StatusOK, 200, 200, 200)

	resp, err := http.Post(f.server.URL+"/webhook", "application/json", strings.NewReader(webhookBody("抓取資料")))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(raw))
	texts := f.push.texts()
	require.Len(t, texts, 2)
	assert.Len(t, strings.Split(texts[0], "\n\n"), 3)
	assert.Equal(t, usecase.ReplyConfirmed, texts[1])
	for _, hits := range f.siteHits {
		assert.EqualValues(t, 1, hits.Load())
	}
}

func TestWebhook_OtherTextIsInvalid(t *testing.T) {
	f := newFixture(t, http.StatusOK, 200, 200, 200)

	resp, err := http.Post(f.server.URL+"/webhook", "application/json", strings.NewReader(webhookBody("hello")))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{usecase.ReplyInvalid}, f.push.texts())
	for _, hits := range f.siteHits {
		assert.Zero(t, hits.Load())
	}
}

func TestWebhook_BadBody(t *testing.T) {
	f := newFixture(t, http.StatusOK, 200)

	resp, err := http.Post(f.server.URL+"/webhook", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, f.push.calls())
}

func TestIndex_RendersWithoutDelivering(t *testing.T) {
	f := newFixture(t, http.StatusOK, 200, 404)

	resp, err := http.Get(f.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	page := string(raw)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "<title>太陽能三期數據整合</title>")
	assert.Contains(t, page, "太陽能第1期")
	assert.Contains(t, page, "今日發電量kw: v1")
	assert.Contains(t, page, `class="fault"`)
	assert.Zero(t, f.push.calls())
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, http.StatusOK, 200)

	resp, err := http.Get(f.server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/send-data")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `solar_deliveries_total{result="delivered"} 1`)
}
