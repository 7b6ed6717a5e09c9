package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/deepstock/deepstock-backend/internal/api/request"
	"github.com/deepstock/deepstock-backend/internal/currency"
	"github.com/deepstock/deepstock-backend/internal/model"
	"github.com/deepstock/deepstock-backend/internal/repository"
	"github.com/deepstock/deepstock-backend/internal/validation"
)

// PortfolioService handles portfolio-level business logic: portfolio CRUD
// plus the derived views that combine both ledgers with live market data.
type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
	stockService  *StockTransactionService
	optionService *OptionTransactionService
	marketService *MarketService
	normalizer    *currency.Normalizer
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	stockService *StockTransactionService,
	optionService *OptionTransactionService,
	marketService *MarketService,
	normalizer *currency.Normalizer,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		stockService:  stockService,
		optionService: optionService,
		marketService: marketService,
		normalizer:    normalizer,
	}
}

// PortfolioSummary is the dashboard view of one portfolio: current market
// value and unrealized P/L of stock holdings, realized P/L from both
// ledgers, and the open option position count.
type PortfolioSummary struct {
	Portfolio              model.Portfolio `json:"portfolio"`
	TotalMarketValueBase   float64         `json:"totalMarketValueBase"`
	TotalInvestedBase      float64         `json:"totalInvestedBase"`
	UnrealizedGainLoss     float64         `json:"unrealizedGainLoss"`
	RealizedStockGainLoss  float64         `json:"realizedStockGainLoss"`
	RealizedOptionGainLoss float64         `json:"realizedOptionGainLoss"`
	Holdings               int             `json:"holdings"`
	OpenOptionPositions    int             `json:"openOptionPositions"`
}

// GetPortfolios retrieves all portfolios.
func (s *PortfolioService) GetPortfolios() ([]model.Portfolio, error) {
	return s.portfolioRepo.GetAll()
}

// GetPortfolio retrieves a single portfolio by ID.
func (s *PortfolioService) GetPortfolio(id string) (*model.Portfolio, error) {
	return s.portfolioRepo.GetByID(id)
}

// CreatePortfolio creates a new portfolio, defaulting its currency to the
// configured base currency.
func (s *PortfolioService) CreatePortfolio(req request.CreatePortfolioRequest) (*model.Portfolio, error) {
	if err := validation.ValidateCreatePortfolio(req); err != nil {
		return nil, err
	}

	portfolioCurrency := req.Currency
	if portfolioCurrency == "" {
		portfolioCurrency = s.normalizer.Base()
	}

	portfolio := &model.Portfolio{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Currency:    portfolioCurrency,
		CreatedAt:   time.Now(),
	}

	if err := s.portfolioRepo.Create(portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// UpdatePortfolio applies the provided fields to an existing portfolio.
func (s *PortfolioService) UpdatePortfolio(id string, req request.UpdatePortfolioRequest) (*model.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		portfolio.Name = *req.Name
	}
	if req.Description != nil {
		portfolio.Description = *req.Description
	}
	if req.Currency != nil {
		portfolio.Currency = *req.Currency
	}

	if err := s.portfolioRepo.Update(portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// DeletePortfolio removes a portfolio and its transaction logs.
func (s *PortfolioService) DeletePortfolio(id string) error {
	return s.portfolioRepo.Delete(id)
}

// GetHoldings returns the portfolio's stock holdings valued against cached
// quotes and rates.
func (s *PortfolioService) GetHoldings(portfolioID string) ([]model.HoldingValuation, error) {
	ledger, err := s.stockService.GetLedger(portfolioID)
	if err != nil {
		return nil, err
	}

	quotes, err := s.marketService.GetQuotes()
	if err != nil {
		return nil, err
	}
	rates, err := s.marketService.GetRates()
	if err != nil {
		return nil, err
	}

	return ValueHoldings(ledger.Holdings(), quotes, s.normalizer, rates), nil
}

// GetOpenLots returns every open lot in the portfolio, in purchase order.
func (s *PortfolioService) GetOpenLots(portfolioID string) ([]model.OpenLot, error) {
	ledger, err := s.stockService.GetLedger(portfolioID)
	if err != nil {
		return nil, err
	}
	return ledger.AllOpenLots(), nil
}

// GetSummary builds the dashboard summary for one portfolio.
func (s *PortfolioService) GetSummary(portfolioID string) (*PortfolioSummary, error) {
	portfolio, err := s.portfolioRepo.GetByID(portfolioID)
	if err != nil {
		return nil, err
	}

	valuations, err := s.GetHoldings(portfolioID)
	if err != nil {
		return nil, err
	}

	stockLedger, err := s.stockService.GetLedger(portfolioID)
	if err != nil {
		return nil, err
	}
	optionLedger, err := s.optionService.GetLedger(portfolioID)
	if err != nil {
		return nil, err
	}

	summary := &PortfolioSummary{
		Portfolio: *portfolio,
		Holdings:  len(valuations),
	}
	for _, v := range valuations {
		summary.TotalMarketValueBase += v.MarketValueBase
		summary.TotalInvestedBase += v.TotalInvestedBase
		summary.UnrealizedGainLoss += v.UnrealizedGainLoss
	}
	for _, trade := range stockLedger.RealizedTrades() {
		summary.RealizedStockGainLoss += trade.RealizedGainLoss
	}
	for _, leg := range optionLedger.RealizedLegs() {
		summary.RealizedOptionGainLoss += leg.RealizedGainLoss
	}
	summary.OpenOptionPositions = len(optionLedger.Holdings())

	summary.TotalMarketValueBase = round(summary.TotalMarketValueBase)
	summary.TotalInvestedBase = round(summary.TotalInvestedBase)
	summary.UnrealizedGainLoss = round(summary.UnrealizedGainLoss)
	summary.RealizedStockGainLoss = round(summary.RealizedStockGainLoss)
	summary.RealizedOptionGainLoss = round(summary.RealizedOptionGainLoss)
	return summary, nil
}

// resolveWindow picks the aggregation window: explicit from/to bounds when
// either is set, the period preset otherwise.
func resolveWindow(period, from, to string) (model.DateRange, error) {
	if from == "" && to == "" {
		return ResolveDateRange(period, time.Now())
	}

	dateRange := model.DateRange{End: time.Now()}
	if from != "" {
		start, err := validation.ParseDate(from)
		if err != nil {
			return model.DateRange{}, err
		}
		dateRange.Start = start
	}
	if to != "" {
		end, err := validation.ParseDate(to)
		if err != nil {
			return model.DateRange{}, err
		}
		dateRange.End = end
	}
	return dateRange, nil
}

// GetStockPerformance aggregates the portfolio's stock results over a period
// preset (1W, 1M, 3M, 6M, MTD, YTD, 1Y, ALL) or an explicit from/to window.
func (s *PortfolioService) GetStockPerformance(portfolioID, period, from, to string) (model.StockPerformance, error) {
	dateRange, err := resolveWindow(period, from, to)
	if err != nil {
		return model.StockPerformance{}, err
	}

	transactions, err := s.stockService.GetTransactions(portfolioID)
	if err != nil {
		return model.StockPerformance{}, err
	}
	// Realized trades come from the full-log fold: a lot opened before the
	// range can still be depleted inside it.
	ledger, err := FoldStockTransactions(transactions)
	if err != nil {
		return model.StockPerformance{}, err
	}

	return ComputeStockPerformance(transactions, ledger.RealizedTrades(), dateRange), nil
}

// GetOptionPerformance aggregates the portfolio's option results over a
// period preset or an explicit from/to window.
func (s *PortfolioService) GetOptionPerformance(portfolioID, period, from, to string) (model.OptionPerformance, error) {
	dateRange, err := resolveWindow(period, from, to)
	if err != nil {
		return model.OptionPerformance{}, err
	}

	transactions, err := s.optionService.GetTransactions(portfolioID)
	if err != nil {
		return model.OptionPerformance{}, err
	}
	ledger, err := FoldOptionTransactions(transactions)
	if err != nil {
		return model.OptionPerformance{}, err
	}

	return ComputeOptionPerformance(transactions, ledger.RealizedLegs(), dateRange), nil
}

// GetPerformanceSeries builds the cumulative realized P/L series over a
// period preset or an explicit from/to window, combining stock trades and
// option legs.
func (s *PortfolioService) GetPerformanceSeries(portfolioID, period, from, to string) (model.PerformanceSeries, error) {
	dateRange, err := resolveWindow(period, from, to)
	if err != nil {
		return model.PerformanceSeries{}, err
	}

	stockTransactions, err := s.stockService.GetTransactions(portfolioID)
	if err != nil {
		return model.PerformanceSeries{}, err
	}
	stockLedger, err := FoldStockTransactions(stockTransactions)
	if err != nil {
		return model.PerformanceSeries{}, err
	}

	optionTransactions, err := s.optionService.GetTransactions(portfolioID)
	if err != nil {
		return model.PerformanceSeries{}, err
	}
	optionLedger, err := FoldOptionTransactions(optionTransactions)
	if err != nil {
		return model.PerformanceSeries{}, err
	}

	return ComputeRealizedSeries(stockTransactions, stockLedger.RealizedTrades(), optionLedger.RealizedLegs(), dateRange), nil
}

// Tickers lists the distinct tickers held or traded in any portfolio, for
// the background quote refresh.
func (s *PortfolioService) Tickers() ([]string, error) {
	portfolios, err := s.portfolioRepo.GetAll()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var tickers []string
	for _, p := range portfolios {
		transactions, err := s.stockService.GetTransactions(p.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range transactions {
			if !seen[t.Ticker] {
				seen[t.Ticker] = true
				tickers = append(tickers, t.Ticker)
			}
		}

		optionTransactions, err := s.optionService.GetTransactions(p.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range optionTransactions {
			if !seen[t.Underlying] {
				seen[t.Underlying] = true
				tickers = append(tickers, t.Underlying)
			}
		}
	}
	return tickers, nil
}
