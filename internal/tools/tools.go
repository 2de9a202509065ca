// Package tools exposes the alert engine and portfolio ledger as MCP tools,
// served over streamable HTTP at /mcp.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/interfaces"
)

// NewMCPServer creates the MCP server with every tool registered.
func NewMCPServer(quotes interfaces.QuoteSource, alerts interfaces.AlertService, portfolio interfaces.PortfolioService, logger *common.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"stockverse",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGetQuoteTool(), handleGetQuote(quotes, logger))

	s.AddTool(createListHoldingsTool(), handleListHoldings(portfolio))
	s.AddTool(createPortfolioSummaryTool(), handlePortfolioSummary(portfolio))
	s.AddTool(createAddHoldingTool(), handleAddHolding(portfolio, logger))
	s.AddTool(createRemoveHoldingTool(), handleRemoveHolding(portfolio, logger))
	s.AddTool(createRefreshPricesTool(), handleRefreshPrices(portfolio))

	s.AddTool(createListAlertsTool(), handleListAlerts(alerts))
	s.AddTool(createCreateAlertTool(), handleCreateAlert(alerts, logger))
	s.AddTool(createRemoveAlertTool(), handleRemoveAlert(alerts, logger))
	s.AddTool(createEvaluateAlertsTool(), handleEvaluateAlerts(alerts))

	return s
}

func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the StockVerse server version and status. Use this to verify connectivity."),
	)
}

func createGetQuoteTool() mcp.Tool {
	return mcp.NewTool("get_quote",
		mcp.WithDescription("Get the latest price, day change and volume for a ticker."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol (e.g., 'AAPL')"),
		),
	)
}

func createListHoldingsTool() mcp.Tool {
	return mcp.NewTool("list_holdings",
		mcp.WithDescription("List portfolio holdings with market value, unrealized P/L and allocation."),
	)
}

func createPortfolioSummaryTool() mcp.Tool {
	return mcp.NewTool("portfolio_summary",
		mcp.WithDescription("Get total value, total investment and overall P/L of the portfolio."),
	)
}

func createAddHoldingTool() mcp.Tool {
	return mcp.NewTool("add_holding",
		mcp.WithDescription("Record a new holding. Adding the same symbol twice creates two separate holdings."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol"),
		),
		mcp.WithNumber("quantity",
			mcp.Required(),
			mcp.Description("Number of units, greater than zero"),
		),
		mcp.WithNumber("cost_basis_per_unit",
			mcp.Required(),
			mcp.Description("Purchase price per unit, greater than zero"),
		),
	)
}

func createRemoveHoldingTool() mcp.Tool {
	return mcp.NewTool("remove_holding",
		mcp.WithDescription("Remove a holding by id. Unknown ids are ignored."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Holding id as shown by list_holdings"),
		),
	)
}

func createRefreshPricesTool() mcp.Tool {
	return mcp.NewTool("refresh_prices",
		mcp.WithDescription("Fetch current prices for every held symbol and update holdings."),
	)
}

func createListAlertsTool() mcp.Tool {
	return mcp.NewTool("list_alerts",
		mcp.WithDescription("List alert rules with their status, plus pending fired notifications."),
	)
}

func createCreateAlertTool() mcp.Tool {
	return mcp.NewTool("create_alert",
		mcp.WithDescription("Create a price alert. price_above and price_below compare against the threshold; percent_change fires when the price moves more than threshold percent from the price at creation."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol"),
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Enum("price_above", "price_below", "percent_change"),
			mcp.Description("Alert kind"),
		),
		mcp.WithNumber("threshold",
			mcp.Required(),
			mcp.Description("Price level, or percent for percent_change"),
		),
	)
}

func createRemoveAlertTool() mcp.Tool {
	return mcp.NewTool("remove_alert",
		mcp.WithDescription("Remove an alert rule by id. Unknown ids are ignored."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Alert id as shown by list_alerts"),
		),
	)
}

func createEvaluateAlertsTool() mcp.Tool {
	return mcp.NewTool("evaluate_alerts",
		mcp.WithDescription("Evaluate all active alerts against current prices now, instead of waiting for the next scheduled pass."),
	)
}
