package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"solar-relay/internal/domain/model"
)

func TestHooksUpdateInstruments(t *testing.T) {
	m := New(prometheus.NewRegistry())

	fetch := m.FetchHooks()
	fetch.OnAttempt("http_status")
	fetch.OnAttempt("success")
	fetch.OnFault(model.FetchTimeout)

	m.AggregatorHooks().OnTarget(model.Target{Name: "site1"}, 2, time.Second)

	relay := m.RelayHooks()
	relay.OnCycle(3*time.Second, model.DeliveryFailed)
	relay.OnSkipped("in_progress")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchAttempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFaults.WithLabelValues("timeout")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FieldsMissing))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesSkipped.WithLabelValues("in_progress")))
}
