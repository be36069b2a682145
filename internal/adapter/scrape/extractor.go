package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"solar-relay/internal/domain/model"
	"solar-relay/internal/domain/ports"
)

// Extractor reads element text by id out of an HTML document.
type Extractor struct {
	locale model.Locale
}

var _ ports.FieldExtractor = (*Extractor)(nil)

// NewExtractor builds an Extractor whose fault strings use locale.
func NewExtractor(locale model.Locale) *Extractor {
	return &Extractor{locale: locale}
}

// Parse turns a raw page body into a document tree.
func Parse(body []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Parse implements ports.FieldExtractor.
func (e *Extractor) Parse(body []byte) (*html.Node, error) {
	return Parse(body)
}

// Extract returns one value per field id, in order. The first element named
// tag whose id matches supplies the trimmed text; absent ids map to a fault string.
func (e *Extractor) Extract(doc *html.Node, tag string, fieldIDs []string) []model.FieldValue {
	if tag == "" {
		tag = model.DefaultTag
	}

	index := make(map[string]*html.Node, len(fieldIDs))
	wanted := make(map[string]struct{}, len(fieldIDs))
	for _, id := range fieldIDs {
		wanted[id] = struct{}{}
	}
	if doc != nil {
		indexByID(doc, tag, wanted, index)
	}

	values := make([]model.FieldValue, 0, len(fieldIDs))
	for _, id := range fieldIDs {
		node, ok := index[id]
		if !ok {
			values = append(values, model.FieldValue{ID: id, Value: e.locale.MissingFieldText(id), Fault: true})
			continue
		}
		values = append(values, model.FieldValue{ID: id, Value: strings.TrimSpace(textContent(node))})
	}
	return values
}

func indexByID(node *html.Node, tag string, wanted map[string]struct{}, index map[string]*html.Node) {
	if node.Type == html.ElementNode && strings.EqualFold(node.Data, tag) {
		if id := attr(node, "id"); id != "" {
			if _, ok := wanted[id]; ok {
				if _, seen := index[id]; !seen {
					index[id] = node
				}
			}
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		indexByID(child, tag, wanted, index)
	}
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(node *html.Node) string {
	var builder strings.Builder
	collectText(node, &builder)
	return builder.String()
}

func collectText(node *html.Node, builder *strings.Builder) {
	if node.Type == html.TextNode {
		builder.WriteString(node.Data)
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, builder)
	}
}
