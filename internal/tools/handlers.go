package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/interfaces"
	"github.com/bobmcallan/stockverse/internal/models"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("StockVerse MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleGetQuote implements the get_quote tool
func handleGetQuote(quotes interfaces.QuoteSource, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}

		q, err := quotes.GetQuote(ctx, symbol)
		if err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote tool failed")
			return errorResult(fmt.Sprintf("Quote error: %v", err)), nil
		}
		return textResult(formatQuote(q)), nil
	}
}

func handleListHoldings(portfolio interfaces.PortfolioService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(formatHoldings(portfolio.Holdings(), portfolio.Summary())), nil
	}
}

func handlePortfolioSummary(portfolio interfaces.PortfolioService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(formatSummary(portfolio.Summary())), nil
	}
}

// handleAddHolding implements the add_holding tool
func handleAddHolding(portfolio interfaces.PortfolioService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		quantity, err := request.RequireFloat("quantity")
		if err != nil {
			return errorResult("Error: quantity parameter is required"), nil
		}
		cost, err := request.RequireFloat("cost_basis_per_unit")
		if err != nil {
			return errorResult("Error: cost_basis_per_unit parameter is required"), nil
		}

		h, err := portfolio.AddHolding(ctx, symbol, quantity, cost)
		if err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("Add holding tool failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("Added holding %s: %s x %s @ %s (current %s)",
			h.ID, h.Symbol, fixed2(h.Quantity), formatMoney(h.CostBasisPerUnit), formatMoney(h.CurrentPrice))), nil
	}
}

func handleRemoveHolding(portfolio interfaces.PortfolioService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil || id == "" {
			return errorResult("Error: id parameter is required"), nil
		}
		if err := portfolio.RemoveHolding(ctx, id); err != nil {
			logger.Warn().Err(err).Str("id", id).Msg("Remove holding tool failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("Removed holding %s", id)), nil
	}
}

func handleRefreshPrices(portfolio interfaces.PortfolioService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report := portfolio.RefreshPrices(ctx)
		if report.Skipped {
			return textResult("A price refresh is already running; try again shortly."), nil
		}
		return textResult(formatRefreshReport(report)), nil
	}
}

func handleListAlerts(alerts interfaces.AlertService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(formatAlerts(alerts.Rules(), alerts.Notifications(), alerts.Counts())), nil
	}
}

// handleCreateAlert implements the create_alert tool
func handleCreateAlert(alerts interfaces.AlertService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		kind, ok := models.ParseAlertKind(request.GetString("kind", ""))
		if !ok {
			return errorResult("Error: kind must be price_above, price_below or percent_change"), nil
		}
		threshold, err := request.RequireFloat("threshold")
		if err != nil {
			return errorResult("Error: threshold parameter is required"), nil
		}

		rule, err := alerts.CreateRule(ctx, symbol, kind, threshold)
		if err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("Create alert tool failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("Created alert %s: %s", rule.ID, rule.Describe())), nil
	}
}

func handleRemoveAlert(alerts interfaces.AlertService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil || id == "" {
			return errorResult("Error: id parameter is required"), nil
		}
		if err := alerts.RemoveRule(ctx, id); err != nil {
			logger.Warn().Err(err).Str("id", id).Msg("Remove alert tool failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("Removed alert %s", id)), nil
	}
}

func handleEvaluateAlerts(alerts interfaces.AlertService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report := alerts.EvaluateAll(ctx)
		if report.Skipped {
			return textResult("An evaluation pass is already running; try again shortly."), nil
		}
		return textResult(formatEvaluationReport(report, alerts.Notifications())), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
