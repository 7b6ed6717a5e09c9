package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deepstock/deepstock-backend/internal/currency"
	"github.com/deepstock/deepstock-backend/internal/model"
	"github.com/deepstock/deepstock-backend/internal/repository"
	"github.com/deepstock/deepstock-backend/internal/yahoo"
)

// directPairCurrencies have a tradable pair straight to the base currency.
var directPairCurrencies = []string{"USD", "EUR", "GBP", "CHF"}

// crossRateCurrencies have no direct base-currency pair; their rate is
// derived via USD: XXX/base = XXX/USD x USD/base.
var crossRateCurrencies = []string{"HKD", "JPY", "CAD", "AUD", "CNY", "SGD", "TWD", "KRW", "SEK", "NOK", "DKK"}

// fallbackRates are approximate rates to CZK, used when neither a cached nor
// a live rate is available.
var fallbackRates = map[string]float64{
	"CZK": 1.0, "USD": 23.5, "EUR": 25.5, "GBP": 30.0, "CHF": 27.0,
	"HKD": 3.0, "JPY": 0.16, "CAD": 17.0, "AUD": 15.0,
	"CNY": 3.3, "SEK": 2.2, "NOK": 2.1, "DKK": 3.4,
	"SGD": 17.5, "TWD": 0.73, "KRW": 0.017,
}

// maxConcurrentFetches caps parallel requests against the quote provider.
const maxConcurrentFetches = 4

// MarketService maintains the cached market data the valuation layer reads:
// latest stock quotes, option quotes, and exchange rates to the base
// currency. Refreshes fetch concurrently and tolerate individual symbol
// failures; reads never hit the network.
type MarketService struct {
	marketRepo *repository.MarketRepository
	client     yahoo.Client
	normalizer *currency.Normalizer

	mu        sync.RWMutex
	rateCache map[string]float64
}

// NewMarketService creates a new MarketService with the provided dependencies.
func NewMarketService(marketRepo *repository.MarketRepository, client yahoo.Client, normalizer *currency.Normalizer) *MarketService {
	return &MarketService{
		marketRepo: marketRepo,
		client:     client,
		normalizer: normalizer,
	}
}

// GetQuotes returns the cached stock quotes keyed by ticker.
func (s *MarketService) GetQuotes() (map[string]model.Quote, error) {
	return s.marketRepo.GetQuotes()
}

// GetOptionQuotes returns the cached option quotes keyed by OCC symbol.
func (s *MarketService) GetOptionQuotes() (map[string]model.OptionQuote, error) {
	return s.marketRepo.GetOptionQuotes()
}

// GetRates returns the exchange-rate table to the base currency: the
// fallback table overlaid with every cached live rate.
func (s *MarketService) GetRates() (map[string]float64, error) {
	rates := make(map[string]float64, len(fallbackRates))
	for currency, rate := range fallbackRates {
		rates[currency] = rate
	}
	rates[s.normalizer.Base()] = 1.0

	cached, err := s.marketRepo.GetExchangeRates()
	if err != nil {
		return nil, err
	}
	for currency, rate := range cached {
		rates[currency] = rate
	}

	s.mu.Lock()
	s.rateCache = rates
	s.mu.Unlock()
	return rates, nil
}

// LockRate returns the rate to lock onto a new transaction for the given
// currency: the current live rate when cached, the fallback otherwise, 1 for
// the base currency or a currency nobody has a rate for.
func (s *MarketService) LockRate(transactionCurrency string) float64 {
	if transactionCurrency == s.normalizer.Base() || transactionCurrency == "" {
		return 1
	}

	s.mu.RLock()
	cached := s.rateCache
	s.mu.RUnlock()

	if cached == nil {
		rates, err := s.GetRates()
		if err != nil {
			log.Printf("rate lookup for %s failed, locking fallback: %v", transactionCurrency, err)
			cached = fallbackRates
		} else {
			cached = rates
		}
	}

	if rate, ok := cached[transactionCurrency]; ok && rate > 0 {
		return rate
	}
	return 1
}

// RefreshQuotes fetches the latest quote for each ticker concurrently and
// upserts the successes into the cache. A failing ticker is logged and
// skipped; the refresh only errors when the cache itself cannot be written.
func (s *MarketService) RefreshQuotes(ctx context.Context, tickers []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	results := make([]*model.Quote, len(tickers))
	for i, ticker := range tickers {
		g.Go(func() error {
			latest, err := s.client.GetLatestQuote(ctx, ticker)
			if err != nil {
				log.Printf("quote refresh for %s failed: %v", ticker, err)
				return nil
			}
			results[i] = &model.Quote{
				Ticker:    ticker,
				Price:     latest.Price,
				Change:    latest.Change,
				Currency:  latest.Currency,
				UpdatedAt: time.Now().UTC(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var errs []error
	for _, quote := range results {
		if quote == nil {
			continue
		}
		if err := s.marketRepo.UpsertQuote(quote); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RefreshRates fetches fresh exchange rates to the base currency: direct
// pairs first, then USD cross-rates for currencies without one. Failed pairs
// keep their previous cached value (or the fallback).
func (s *MarketService) RefreshRates(ctx context.Context) error {
	base := s.normalizer.Base()

	g, fetchCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	direct := make(map[string]float64)
	var directMu sync.Mutex
	for _, cur := range directPairCurrencies {
		g.Go(func() error {
			rate, err := s.client.GetFxRate(fetchCtx, cur, base)
			if err != nil {
				log.Printf("rate refresh for %s/%s failed: %v", cur, base, err)
				return nil
			}
			directMu.Lock()
			direct[cur] = rate
			directMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	usdBase, ok := direct["USD"]
	if !ok {
		usdBase = fallbackRates["USD"]
	}

	cross := make(map[string]float64)
	var crossMu sync.Mutex
	g, fetchCtx = errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for _, cur := range crossRateCurrencies {
		g.Go(func() error {
			rate, err := s.client.GetFxRate(fetchCtx, cur, "USD")
			if err != nil {
				log.Printf("cross-rate refresh for %s/USD failed: %v", cur, err)
				return nil
			}
			crossMu.Lock()
			cross[cur] = rate * usdBase
			crossMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	now := time.Now().UTC()
	var errs []error
	for currency, rate := range direct {
		if err := s.marketRepo.UpsertExchangeRate(&model.ExchangeRate{Currency: currency, Rate: rate, UpdatedAt: now}); err != nil {
			errs = append(errs, err)
		}
	}
	for currency, rate := range cross {
		if err := s.marketRepo.UpsertExchangeRate(&model.ExchangeRate{Currency: currency, Rate: rate, UpdatedAt: now}); err != nil {
			errs = append(errs, err)
		}
	}

	// Invalidate the in-memory merge so the next read picks up fresh rates.
	s.mu.Lock()
	s.rateCache = nil
	s.mu.Unlock()
	return errors.Join(errs...)
}

// SetOptionQuote stores a caller-supplied option quote. Option chains have
// no free bulk endpoint, so option marks arrive through the API rather than
// the background refresh.
func (s *MarketService) SetOptionQuote(optionSymbol string, price, bid, ask float64) error {
	return s.marketRepo.UpsertOptionQuote(&model.OptionQuote{
		OptionSymbol: optionSymbol,
		Price:        price,
		Bid:          bid,
		Ask:          ask,
		UpdatedAt:    time.Now().UTC(),
	})
}
