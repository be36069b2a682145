package ports

import (
	"context"

	"golang.org/x/net/html"

	"solar-relay/internal/domain/model"
)

// PageFetcher retrieves the raw body of a status page.
// A non-nil error is always a *model.FetchError.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FieldExtractor reads field values out of a parsed page. Missing fields
// yield fault values, never errors.
type FieldExtractor interface {
	Parse(body []byte) (*html.Node, error)
	Extract(doc *html.Node, tag string, fieldIDs []string) []model.FieldValue
}
