package usecase

import (
	"strings"

	"solar-relay/internal/domain/model"
)

// MessageMode selects how a report is split into message parts.
type MessageMode string

const (
	// ModeCombined sends the whole report as one text.
	ModeCombined MessageMode = "combined"
	// ModeSplit sends one text per target.
	ModeSplit MessageMode = "split"
)

// ParseMessageMode validates a MESSAGE_MODE value.
func ParseMessageMode(value string) (MessageMode, bool) {
	switch MessageMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeCombined:
		return ModeCombined, true
	case ModeSplit:
		return ModeSplit, true
	default:
		return "", false
	}
}

// FormatBlocks renders one block per target, each field as "label: value".
// Labels come from labels when present, otherwise the raw field id.
func FormatBlocks(report model.Report, labels map[string]string) []string {
	blocks := make([]string, 0, len(report.Results))
	for _, result := range report.Results {
		lines := make([]string, 0, len(result.Fields))
		for _, field := range result.Fields {
			label := field.ID
			if l, ok := labels[field.ID]; ok {
				label = l
			}
			lines = append(lines, label+": "+field.Value)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return blocks
}

// FormatReport renders the report as a single text, blocks separated by a blank line.
func FormatReport(report model.Report, labels map[string]string) string {
	return strings.Join(FormatBlocks(report, labels), "\n\n")
}

// BuildMessage turns a report into the outbound message for mode, using at most maxParts parts.
func BuildMessage(report model.Report, labels map[string]string, mode MessageMode, maxParts int) model.OutboundMessage {
	if mode != ModeSplit {
		return model.OutboundMessage{Parts: []string{FormatReport(report, labels)}}
	}
	return model.OutboundMessage{Parts: packParts(FormatBlocks(report, labels), maxParts)}
}

// packParts folds the overflow of blocks beyond limit into the last part.
func packParts(blocks []string, limit int) []string {
	if limit <= 0 || len(blocks) <= limit {
		return blocks
	}
	parts := make([]string, 0, limit)
	parts = append(parts, blocks[:limit-1]...)
	parts = append(parts, strings.Join(blocks[limit-1:], "\n\n"))
	return parts
}
