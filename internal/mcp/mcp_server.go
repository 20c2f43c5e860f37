// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huangsam/drawbias/internal/contract"
)

const contextDescription = "Analysis context such as 'country=ni,weekday=lun,year=2024,target-slot=9PM'."

// NewMCPServer initializes and configures the drawbias MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Drawbias Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: predict_numbers ---
	s.AddTool(mcp.NewTool("predict_numbers",
		mcp.WithDescription("Run the full bias analysis: patterns, tiers and the final selection of numbers."),
		mcp.WithString("context", mcp.Description(contextDescription)),
		mcp.WithNumber("window_days", mcp.Description("Size of the tier window in days.")),
	), h.handlePredictNumbers)

	// --- 2. Tool: baseline_predictions ---
	s.AddTool(mcp.NewTool("baseline_predictions",
		mcp.WithDescription("Rank numbers by the weighted profile score alone."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleBaseline)

	// --- 3. Tool: detect_patterns ---
	s.AddTool(mcp.NewTool("detect_patterns",
		mcp.WithDescription("Detect recurring gaps, temporal bias, repetitions, transitions, doubles and family clusters."),
		mcp.WithString("context", mcp.Description(contextDescription)),
	), h.handleDetectPatterns)

	// --- 4. Tool: get_profile ---
	s.AddTool(mcp.NewTool("get_profile",
		mcp.WithDescription("Return the historical profile of a single number."),
		mcp.WithNumber("number", mcp.Description("The number to look up (0-99)."), mcp.Required()),
	), h.handleGetProfile)

	// --- 5. Tool: suggest_modes ---
	s.AddTool(mcp.NewTool("suggest_modes",
		mcp.WithDescription("Apply learned game modes to recent draws and suggest follow-up numbers."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of suggestions.")),
	), h.handleSuggestModes)

	return s
}

// StartMCPServer starts the drawbias MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
