package model

// DeliveryStatus tells whether the push endpoint accepted a message.
type DeliveryStatus string

const (
	Delivered      DeliveryStatus = "delivered"
	DeliveryFailed DeliveryStatus = "failed"
)

// DeliveryResult is the outcome of a single push call.
type DeliveryResult struct {
	Status     DeliveryStatus
	StatusCode int
	Body       string
	Err        error
}

// OK reports whether the message reached the push endpoint.
func (r DeliveryResult) OK() bool {
	return r.Status == Delivered
}

// OutboundMessage is the text sent in one push call, one entry per message bubble.
type OutboundMessage struct {
	Parts []string
}
