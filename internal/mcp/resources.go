package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/healthvault/internal/score"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) metricCatalog(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	catalog := score.DefaultCatalog()

	data, err := json.Marshal(map[string]any{
		"core":        catalog.Core,
		"recommended": catalog.Recommended,
		"categories":  catalog.Categories,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) dataOverview(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	metrics, err := h.ds.AvailableMetrics(ctx)
	if err != nil {
		return nil, err
	}

	overview := map[string]any{"metrics": metrics}

	start, end, ok, err := h.ds.DateRange(ctx)
	if err != nil {
		h.log.Warn("data_overview: range query failed", "error", err)
	} else if ok {
		overview["start"] = start.Format(time.RFC3339)
		overview["end"] = end.Format(time.RFC3339)
	}

	data, err := json.Marshal(overview)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
