package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"brokersim/internal/domain"
)

// QuoteService fetches live prices from an external quote API. It is the
// production PriceOracle; tests substitute a stub.
type QuoteService struct {
	httpClient *http.Client
	baseURL    string
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(baseURL string) *QuoteService {
	return &QuoteService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// Lookup fetches the current price for a single symbol
func (s *QuoteService) Lookup(ctx context.Context, symbol string) (domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.Quote{}, domain.ErrSymbolNotFound
	}

	url := fmt.Sprintf("%s/v1/quote/%s", s.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: failed to create request: %v", domain.ErrQuoteUnavailable, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: failed to fetch quote: %v", domain.ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Quote{}, domain.ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Quote{}, fmt.Errorf("%w: quote API error: status=%d, body=%s",
			domain.ErrQuoteUnavailable, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: failed to read response body: %v", domain.ErrQuoteUnavailable, err)
	}

	var ticker struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &ticker); err != nil {
		return domain.Quote{}, fmt.Errorf("%w: failed to unmarshal response: %v", domain.ErrQuoteUnavailable, err)
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: malformed price %q: %v", domain.ErrQuoteUnavailable, ticker.Price, err)
	}
	if !price.IsPositive() {
		return domain.Quote{}, fmt.Errorf("%w: non-positive price %s for %s", domain.ErrQuoteUnavailable, price, symbol)
	}

	return domain.Quote{Symbol: symbol, Price: price}, nil
}
