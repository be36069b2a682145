package ports

import (
	"context"

	"solar-relay/internal/domain/model"
)

// Notifier sends messages to the push endpoint (e.g. LINE).
// Deliver makes exactly one outbound call and never retries.
type Notifier interface {
	Deliver(ctx context.Context, msg model.OutboundMessage) model.DeliveryResult
}
