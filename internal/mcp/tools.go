package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/claude/healthvault/internal/aggregate"
	"github.com/claude/healthvault/internal/query"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolQueryHealthData = mcp.NewTool("query_health_data",
	mcp.WithDescription("Query health time series. Routes automatically between the fast local cache (recent data) and the complete archive (full history). Supports grouping and aggregation."),
	mcp.WithString("metrics", mcp.Required(), mcp.Description("Comma-separated metric names (e.g. heart_rate, step_count, sleep_analysis)")),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("group_by", mcp.Description("Grouping bucket. Defaults to none (raw points)."), mcp.Enum("hour", "day", "week", "month")),
	mcp.WithString("aggregation", mcp.Description("Aggregation applied per bucket. Defaults to 'avg'."), mcp.Enum("avg", "min", "max", "sum", "count")),
	mcp.WithNumber("limit", mcp.Description("Maximum points to return")),
)

var toolListAvailableMetrics = mcp.NewTool("list_available_metrics",
	mcp.WithDescription("List metric names with data in either the local cache or the archive."),
)

var toolGetDateRange = mcp.NewTool("get_date_range",
	mcp.WithDescription("Get the overall date span of stored health data across both storage tiers."),
)

var toolGetCompleteness = mcp.NewTool("get_completeness",
	mcp.WithDescription("Compute the data completeness score and quality tier (none/bronze/silver/gold) for the stored metric set."),
)

var toolComparePeriods = mcp.NewTool("compare_periods",
	mcp.WithDescription("Compare a metric's statistics between two time periods (e.g. this month vs last month)."),
	mcp.WithString("metric", mcp.Required(), mcp.Description("Metric name")),
	mcp.WithString("period_a_start", mcp.Required(), mcp.Description("Period A start date")),
	mcp.WithString("period_a_end", mcp.Required(), mcp.Description("Period A end date")),
	mcp.WithString("period_b_start", mcp.Required(), mcp.Description("Period B start date")),
	mcp.WithString("period_b_end", mcp.Required(), mcp.Description("Period B end date")),
)

// --- Tool handlers ---

func (h *handlers) queryHealthData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metricsStr, err := req.RequireString("metrics")
	if err != nil {
		return mcp.NewToolResultError("metrics parameter is required"), nil
	}

	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	var metrics []string
	for _, m := range strings.Split(metricsStr, ",") {
		if m = strings.TrimSpace(m); m != "" {
			metrics = append(metrics, m)
		}
	}

	params := query.Params{
		DataType:    "health_metrics",
		Metrics:     metrics,
		DateRange:   &query.DateRange{Start: start, End: end},
		GroupBy:     query.Period(req.GetString("group_by", "")),
		Aggregation: query.Op(req.GetString("aggregation", "")),
		Limit:       req.GetInt("limit", 0),
	}

	res, err := h.ds.Query(ctx, params)
	if err != nil {
		h.log.Error("mcp query_health_data", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listAvailableMetrics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metrics, err := h.ds.AvailableMetrics(ctx)
	if err != nil {
		h.log.Error("mcp list_available_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"metrics": metrics})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDateRange(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, ok, err := h.ds.DateRange(ctx)
	if err != nil {
		h.log.Error("mcp get_date_range", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	payload := map[string]any{"has_data": ok}
	if ok {
		payload["start"] = start.Format(time.RFC3339)
		payload["end"] = end.Format(time.RFC3339)
	}

	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getCompleteness(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metrics, err := h.ds.AvailableMetrics(ctx)
	if err != nil {
		h.log.Error("mcp get_completeness", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	present := make(map[string]bool, len(metrics))
	for _, m := range metrics {
		present[aggregate.MetricIDForKey(m)] = true
	}

	start, end, ok, err := h.ds.DateRange(ctx)
	if err != nil {
		h.log.Error("mcp get_completeness range", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if !ok {
		start, end = time.Now(), time.Now()
	}

	cr := h.scorer.Score(present, start, end)
	result, err := mcp.NewToolResultJSON(map[string]any{
		"completeness": cr,
		"tier":         h.scorer.TierFor(cr).String(),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) comparePeriods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metric, err := req.RequireString("metric")
	if err != nil {
		return mcp.NewToolResultError("metric parameter is required"), nil
	}

	aStart, aEnd, err := requiredRange(req, "period_a_start", "period_a_end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bStart, bEnd, err := requiredRange(req, "period_b_start", "period_b_end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	statsA, err := h.periodStats(ctx, metric, aStart, aEnd)
	if err != nil {
		h.log.Error("mcp compare_periods A", "error", err)
		return mcp.NewToolResultError("query failed for period A: " + err.Error()), nil
	}
	statsB, err := h.periodStats(ctx, metric, bStart, bEnd)
	if err != nil {
		h.log.Error("mcp compare_periods B", "error", err)
		return mcp.NewToolResultError("query failed for period B: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"metric":   metric,
		"period_a": statsA,
		"period_b": statsB,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

type periodStats struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
}

func (h *handlers) periodStats(ctx context.Context, metric string, start, end time.Time) (*periodStats, error) {
	res, err := h.ds.Query(ctx, query.Params{
		DataType:  "health_metrics",
		Metrics:   []string{metric},
		DateRange: &query.DateRange{Start: start, End: end},
	})
	if err != nil {
		return nil, err
	}

	stats := &periodStats{}
	for i, pt := range res.Data {
		if i == 0 || pt.Value < stats.Min {
			stats.Min = pt.Value
		}
		if i == 0 || pt.Value > stats.Max {
			stats.Max = pt.Value
		}
		stats.Sum += pt.Value
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Avg = stats.Sum / float64(stats.Count)
	}
	return stats, nil
}

func requiredRange(req mcp.CallToolRequest, startKey, endKey string) (time.Time, time.Time, error) {
	startStr, err := req.RequireString(startKey)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endStr, err := req.RequireString(endKey)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseFlexTime(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
