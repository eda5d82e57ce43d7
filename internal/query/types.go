// Package query implements the tiered query layer: a common contract for
// health-data sources plus a router that serves each query from a fast
// local cache, a complete remote archive, or both split at a recency
// boundary.
package query

import (
	"context"
	"time"
)

// Period is a grouping bucket size for time series.
type Period string

const (
	PeriodHour  Period = "hour"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Op is an aggregation applied to grouped series.
type Op string

const (
	OpAvg   Op = "avg"
	OpMin   Op = "min"
	OpMax   Op = "max"
	OpSum   Op = "sum"
	OpCount Op = "count"
)

// DateRange is a half-open [Start, End) query window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Filter constrains point values. Op is one of > < = >= <= != between;
// between is inclusive and uses Value..Value2.
type Filter struct {
	Op     string  `json:"op"`
	Value  float64 `json:"value"`
	Value2 float64 `json:"value2,omitempty"`
}

// Params is the external query contract. Metric names may be canonical
// short keys or raw identifiers; the boundary normalizes transparently.
type Params struct {
	DataType    string            `json:"data_type"`
	Metrics     []string          `json:"metrics,omitempty"`
	DateRange   *DateRange        `json:"date_range,omitempty"`
	Filters     map[string]Filter `json:"filters,omitempty"`
	GroupBy     Period            `json:"group_by,omitempty"`
	Aggregation Op                `json:"aggregation,omitempty"`
	Limit       int               `json:"limit,omitempty"`
	Offset      int               `json:"offset,omitempty"`
}

// TimeSeriesPoint is one observation or grouped bucket in a result.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
}

// Metadata describes where and how a result was produced.
type Metadata struct {
	Source          string     `json:"source"`
	QueriedAt       time.Time  `json:"queried_at"`
	DateRange       *DateRange `json:"date_range,omitempty"`
	TotalRecords    int        `json:"total_records"`
	ReturnedRecords int        `json:"returned_records"`
}

// Result is a query response. Results are recomputed on every call;
// queries hold no state.
type Result struct {
	Data     []TimeSeriesPoint `json:"data"`
	Metadata Metadata          `json:"metadata"`
}

// Source is a stateless provider of health time-series data. The fast
// source is complete for recent data only; the complete source is
// authoritative for all history at higher latency.
type Source interface {
	Name() string
	Query(ctx context.Context, p Params) (*Result, error)
	AvailableMetrics(ctx context.Context) ([]string, error)
	// DateRange reports the min/max span of held data; ok is false when
	// the source holds nothing.
	DateRange(ctx context.Context) (start, end time.Time, ok bool, err error)
	HasData(ctx context.Context, p Params) (bool, error)
}
