package mcp

import (
	"log/slog"

	"github.com/claude/healthvault/internal/score"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, scorer *score.Scorer, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("HealthVault", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("HealthVault health data server. Query health time series across the local cache and the long-term archive, inspect available metrics, and check data completeness."),
	)

	h := &handlers{ds: ds, scorer: scorer, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolQueryHealthData, Handler: h.queryHealthData},
		server.ServerTool{Tool: toolListAvailableMetrics, Handler: h.listAvailableMetrics},
		server.ServerTool{Tool: toolGetDateRange, Handler: h.getDateRange},
		server.ServerTool{Tool: toolGetCompleteness, Handler: h.getCompleteness},
		server.ServerTool{Tool: toolComparePeriods, Handler: h.comparePeriods},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resMetricCatalog, Handler: h.metricCatalog},
		server.ServerResource{Resource: resDataOverview, Handler: h.dataOverview},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds     DataSource
	scorer *score.Scorer
	log    *slog.Logger
}

// --- Resource definitions ---

var resMetricCatalog = mcp.NewResource(
	"healthvault://metric_catalog",
	"Metric Catalog",
	mcp.WithResourceDescription("Core, recommended, and categorized health metric identifiers the completeness score is evaluated against"),
	mcp.WithMIMEType("application/json"),
)

var resDataOverview = mcp.NewResource(
	"healthvault://data_overview",
	"Data Overview",
	mcp.WithResourceDescription("Available metrics and the overall date span of stored health data"),
	mcp.WithMIMEType("application/json"),
)
