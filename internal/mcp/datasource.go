package mcp

import (
	"context"
	"time"

	"github.com/claude/healthvault/internal/query"
)

// DataSource abstracts the query layer for MCP tools. *query.Router
// satisfies this, so tools transparently read from the local cache, the
// archive, or both.
type DataSource interface {
	Query(ctx context.Context, p query.Params) (*query.Result, error)
	AvailableMetrics(ctx context.Context) ([]string, error)
	DateRange(ctx context.Context) (start, end time.Time, ok bool, err error)
	HasData(ctx context.Context, p query.Params) (bool, error)
}

// Compile-time check: *query.Router satisfies DataSource.
var _ DataSource = (*query.Router)(nil)
