package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/commons-mcp-server/internal/commons"
	"github.com/olgasafonova/commons-mcp-server/metrics"
	"github.com/olgasafonova/commons-mcp-server/tracing"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *commons.Client
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *commons.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		client: client,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server and returns how many were registered.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) int {
	count := 0
	for _, spec := range AllTools {
		if h.registerByName(server, spec) {
			count++
		}
	}
	h.logger.Info("Registered all tools", "count", count)
	return count
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) bool {
	tool := h.buildTool(spec)
	c := h.client

	switch spec.Method {
	case "UploadCount":
		register(h, server, tool, spec, c.UploadCountMCP)
	case "WikidataEditCount":
		register(h, server, tool, spec, c.WikidataEditCountMCP)
	case "Achievements":
		register(h, server, tool, spec, c.AchievementsMCP)
	case "UserStats":
		register(h, server, tool, spec, c.UserStatsMCP)
	case "NearbyPlaces":
		register(h, server, tool, spec, c.NearbyPlacesMCP)
	case "Campaigns":
		register(h, server, tool, spec, c.CampaignsMCP)
	case "PictureOfTheDay":
		register(h, server, tool, spec, c.PictureOfTheDayMCP)
	case "MediaList":
		register(h, server, tool, spec, c.MediaListMCP)
	case "ResetContinuation":
		register(h, server, tool, spec, c.ResetContinuationMCP)
	case "RecentFileChanges":
		register(h, server, tool, spec, c.RecentChangesMCP)
	case "FirstRevisionOfFile":
		register(h, server, tool, spec, c.FirstRevisionMCP)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
		return false
	}
	return true
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the client method with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (_ *mcp.CallToolResult, result Result, err error) {
		defer h.recoverPanic(spec.Name, &err)

		// Start trace span
		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(
			attribute.String("mcp.tool.service", spec.Service),
			attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
		)

		// Track in-flight requests
		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err = method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRequest(spec.Name, duration, false)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	})
}

// recoverPanic recovers from panics in tool handlers and reports them as errors.
func (h *HandlerRegistry) recoverPanic(toolName string, err *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		if err != nil {
			*err = fmt.Errorf("%s failed: internal error: %v", toolName, rec)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "service", spec.Service}

	switch a := args.(type) {
	case commons.UserArgs:
		attrs = append(attrs, "user", a.User)
	case commons.NearbyPlacesArgs:
		attrs = append(attrs, "latitude", a.Latitude, "longitude", a.Longitude, "radius", a.Radius)
	case commons.MediaListArgs:
		attrs = append(attrs, "keyword", a.Keyword, "query_type", a.QueryType, "explicit_continue", a.Continue != nil)
	case commons.FirstRevisionArgs:
		attrs = append(attrs, "filename", a.Filename)
	case commons.ResetContinuationArgs:
		attrs = append(attrs, "keyword", a.Keyword)
	}

	switch r := result.(type) {
	case commons.CountResult:
		attrs = append(attrs, "count", r.Count)
	case commons.UserStatsResult:
		if r.Stats != nil {
			attrs = append(attrs, "failed_parts", len(r.Stats.Errors))
		}
	case commons.NearbyPlacesResult:
		attrs = append(attrs, "places", r.Count)
	case commons.CampaignsResult:
		attrs = append(attrs, "campaigns", len(r.Campaigns))
	case commons.PictureOfTheDayResult:
		attrs = append(attrs, "found", r.Media != nil)
	case commons.MediaListResult:
		attrs = append(attrs, "media", r.Count, "has_more", r.HasMore)
	case commons.RecentChangesResult:
		attrs = append(attrs, "changes", r.Count)
	}

	h.logger.Info("Tool executed", attrs...)
}
