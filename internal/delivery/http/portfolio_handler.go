package http

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"brokersim/internal/delivery/http/dto"
	"brokersim/internal/domain"
	"brokersim/internal/middleware"
	"brokersim/internal/service"
	"brokersim/internal/usecase"
)

// PortfolioHandler handles portfolio, trade, history and quote requests
type PortfolioHandler struct {
	valuation *service.ValuationService
	history   *service.HistoryService
	executor  *usecase.TradeExecutor
	oracle    domain.PriceOracle
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(
	valuation *service.ValuationService,
	history *service.HistoryService,
	executor *usecase.TradeExecutor,
	oracle domain.PriceOracle,
) *PortfolioHandler {
	return &PortfolioHandler{
		valuation: valuation,
		history:   history,
		executor:  executor,
		oracle:    oracle,
	}
}

// GetPortfolio returns the user's valued portfolio
// GET /api/portfolio
func (h *PortfolioHandler) GetPortfolio(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	view, err := h.valuation.ValuatePortfolio(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to value portfolio", err)
	}

	return SuccessResponse(c, dto.NewPortfolioOutput(view))
}

// GetHistory returns the user's transaction history
// GET /api/history
func (h *PortfolioHandler) GetHistory(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.history.History(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to get history", err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"transactions": dto.NewHistoryOutput(entries),
		"count":        len(entries),
	})
}

// GetQuote returns a live quote for a symbol
// GET /api/quote/:symbol
func (h *PortfolioHandler) GetQuote(c echo.Context) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	quote, err := h.oracle.Lookup(ctx, c.Param("symbol"))
	if err != nil {
		if errors.Is(err, domain.ErrSymbolNotFound) {
			return NotFoundResponse(c, "Invalid stock symbol")
		}
		return InternalServerErrorResponse(c, "Quote provider unavailable", err)
	}

	return SuccessResponse(c, dto.QuoteOutput{
		Symbol: quote.Symbol,
		Price:  quote.Price.StringFixed(2),
	})
}

// Buy executes a buy order
// POST /api/trades/buy
func (h *PortfolioHandler) Buy(c echo.Context) error {
	return h.trade(c, h.executor.ExecuteBuy)
}

// Sell executes a sell order
// POST /api/trades/sell
func (h *PortfolioHandler) Sell(c echo.Context) error {
	return h.trade(c, h.executor.ExecuteSell)
}

func (h *PortfolioHandler) trade(c echo.Context, execute func(context.Context, uuid.UUID, string, int64) (*domain.TradeEvent, error)) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	var req dto.TradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	shares, err := usecase.ParseShareCount(req.Shares)
	if err != nil {
		return BadRequestResponse(c, "Share quantity must be a positive whole number")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	trade, err := execute(ctx, userID, req.Symbol, shares)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSymbol):
			return BadRequestResponse(c, "Invalid stock symbol")
		case errors.Is(err, domain.ErrInvalidQuantity):
			return BadRequestResponse(c, "Share quantity must be a positive whole number")
		case errors.Is(err, domain.ErrInsufficientFunds):
			return BadRequestResponse(c, "Not enough cash")
		case errors.Is(err, domain.ErrInsufficientShares):
			return BadRequestResponse(c, "Not enough shares")
		case errors.Is(err, domain.ErrQuoteUnavailable):
			return BadRequestResponse(c, "Quote provider unavailable, trade not executed")
		default:
			return InternalServerErrorResponse(c, "Trade failed", err)
		}
	}

	return SuccessResponse(c, dto.NewTradeOutput(trade))
}
