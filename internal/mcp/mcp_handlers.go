package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/huangsam/drawbias/core"
	"github.com/huangsam/drawbias/internal/contract"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// configFor clones the base config and applies the shared tool arguments.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if c := request.GetString("context", ""); c != "" {
		parsed, err := contract.ParseAnalysisContext(c)
		if err != nil {
			return nil, err
		}
		cfg.Context = parsed
	}
	if w := request.GetInt("window_days", 0); w > 0 {
		if w > contract.MaxWindowDays {
			return nil, fmt.Errorf("window_days must be at most %d", contract.MaxWindowDays)
		}
		cfg.WindowDays = w
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}
	return cfg, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handlePredictNumbers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, _, err := core.GetAnalysisResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(result), nil
}

func (h *toolHandler) handleBaseline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	preds, err := core.GetBaselinePredictions(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("baseline failed: %v", err)), nil
	}
	return jsonResult(preds), nil
}

func (h *toolHandler) handleDetectPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, err := core.GetPatternReport(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("pattern detection failed: %v", err)), nil
	}
	return jsonResult(report), nil
}

func (h *toolHandler) handleGetProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	number, err := request.RequireInt("number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if number < 0 || number > 99 {
		return mcp.NewToolResultError(fmt.Sprintf("number must be between 0 and 99 (received %d)", number)), nil
	}

	cfg := h.baseCfg.Clone()
	profile, ok, err := core.GetProfile(ctx, h.mgr.GetLedgerStore(), h.mgr.GetKnowledgeStore(), number, cfg.Now)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("profile lookup failed: %v", err)), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("number %02d has never been drawn", number)), nil
	}
	return jsonResult(struct {
		Profile any    `json:"perfil"`
		Summary string `json:"resumen"`
	}{profile, core.DescribeProfile(profile)}), nil
}

func (h *toolHandler) handleSuggestModes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	suggestions, err := core.GetModeSuggestions(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("mode suggestion failed: %v", err)), nil
	}
	if cfg.ResultLimit > 0 && len(suggestions) > cfg.ResultLimit {
		suggestions = suggestions[:cfg.ResultLimit]
	}
	return jsonResult(suggestions), nil
}
