package handler

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"solar-relay/internal/domain/model"
	"solar-relay/internal/domain/ports"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

const viewTitle = "太陽能三期數據整合"

// ReportCollector aggregates the configured targets without delivering.
type ReportCollector interface {
	Collect(ctx context.Context) model.Report
}

type viewItem struct {
	Label string
	Value string
	Fault bool
}

type viewSection struct {
	Heading string
	Items   []viewItem
}

type viewData struct {
	Title    string
	Sections []viewSection
}

// ViewHandler renders the latest readings as an HTML page.
type ViewHandler struct {
	collector ReportCollector
	labels    map[string]string
	logger    ports.Logger
}

// NewViewHandler constructs a ViewHandler rendering with labels.
func NewViewHandler(collector ReportCollector, labels map[string]string, logger ports.Logger) *ViewHandler {
	return &ViewHandler{collector: collector, labels: labels, logger: logger}
}

// Index handles GET /.
func (h *ViewHandler) Index(w http.ResponseWriter, r *http.Request) {
	report := h.collector.Collect(r.Context())

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, h.buildView(report)); err != nil {
		h.logger.Error(r.Context(), "failed to render report", "error", err)
		respondText(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *ViewHandler) buildView(report model.Report) viewData {
	data := viewData{Title: viewTitle, Sections: make([]viewSection, 0, len(report.Results))}
	for i, result := range report.Results {
		section := viewSection{
			Heading: fmt.Sprintf("太陽能第%d期", i+1),
			Items:   make([]viewItem, 0, len(result.Fields)),
		}
		for _, f := range result.Fields {
			label := f.ID
			if l, ok := h.labels[f.ID]; ok {
				label = l
			}
			section.Items = append(section.Items, viewItem{Label: label, Value: f.Value, Fault: f.Fault})
		}
		data.Sections = append(data.Sections, section)
	}
	return data
}
