package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"solar-relay/internal/adapter/logging"
	"solar-relay/internal/adapter/scrape"
	"solar-relay/internal/domain/model"
)

var solarFields = []string{"lbl_online_date", "lbl_daily_pw", "lbl_today_price", "lbl_total_price", "lbl_system_time"}

func page(prefix string, fields ...string) []byte {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, f := range fields {
		fmt.Fprintf(&b, `<span id="%s">%s-%s</span>`, f, prefix, f)
	}
	b.WriteString("</body></html>")
	return []byte(b.String())
}

func solarTargets(n int) []model.Target {
	targets := make([]model.Target, n)
	for i := range targets {
		targets[i] = model.Target{
			Name:   fmt.Sprintf("site%d", i+1),
			URL:    fmt.Sprintf("http://solar.test/%d", i+1),
			Fields: solarFields,
		}
	}
	return targets
}

type fakeResponse struct {
	body  []byte
	err   error
	delay time.Duration
	panic bool
}

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []string
	onFetch   func(url string)
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	resp, ok := f.responses[url]
	f.mu.Unlock()

	if f.onFetch != nil {
		f.onFetch(url)
	}
	if !ok {
		return nil, model.NewFetchError(model.FetchHTTPStatus, 404, fmt.Errorf("unexpected status 404"), false)
	}
	if resp.panic {
		panic("boom")
	}
	if resp.delay > 0 {
		time.Sleep(resp.delay)
	}
	return resp.body, resp.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func healthyFetcher(targets []model.Target) *fakeFetcher {
	responses := make(map[string]fakeResponse, len(targets))
	for _, t := range targets {
		responses[t.URL] = fakeResponse{body: page(t.Name, t.Fields...)}
	}
	return &fakeFetcher{responses: responses}
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []model.OutboundMessage
	result   model.DeliveryResult
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{result: model.DeliveryResult{Status: model.Delivered, StatusCode: 200}}
}

func (n *fakeNotifier) Deliver(_ context.Context, msg model.OutboundMessage) model.DeliveryResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.result
}

func (n *fakeNotifier) sent() []model.OutboundMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.OutboundMessage(nil), n.messages...)
}

func newTestAggregator(fetcher *fakeFetcher, maxConcurrency int) *Aggregator {
	return NewAggregator(fetcher, scrape.NewExtractor(model.LocaleEN), model.LocaleEN, logging.Nop(), maxConcurrency, AggregatorHooks{})
}
