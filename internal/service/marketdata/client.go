package marketdata

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

const upstreamKey = "marketdata:upstream"

// Limiter is the token-bucket surface the client throttles upstream calls
// with.
type Limiter interface {
	Allow(key string, capacity, refillPerSec float64) bool
}

// Client implements a PriceSource backed by an HTTP candle API, with a
// cache in front of candle fetches and a token bucket on upstream calls.
type Client struct {
	baseURL  string
	apiKey   string
	rps      float64
	cacheTTL time.Duration

	http  *xhttp.Client
	cache cache.Service
	rl    Limiter
	l     *applogger.Logger
}

// New creates a new market data PriceSource.
func New(cfg *config.Config, c cache.Service, rl Limiter, l *applogger.Logger) drepo.PriceSource {
	timeout := cfg.MarketData.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := float64(cfg.MarketData.UpstreamRPS)
	if rps <= 0 {
		rps = 5
	}
	ttl := cfg.MarketData.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		baseURL:  cfg.MarketData.BaseURL,
		apiKey:   cfg.MarketData.APIKey,
		rps:      rps,
		cacheTTL: ttl,
		http:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
		cache:    c,
		rl:       rl,
		l:        l,
	}
}

type candleResponse struct {
	Symbol  string `json:"symbol"`
	Candles []struct {
		Timestamp int64   `json:"t"` // unix seconds
		Open      float64 `json:"o"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Close     float64 `json:"c"`
		Volume    float64 `json:"v"`
	} `json:"candles"`
}

type quoteResponse struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"`
}

// Candles fetches daily OHLCV history for the range, serving repeats from
// cache. The fetched series is validated before it is cached.
func (c *Client) Candles(ctx context.Context, symbol string, rng drepo.HistoryRange) (*models.PriceSeries, error) {
	key := cache.GenerateKeyWithParams("marketdata:candles", symbol, string(rng))

	var cached models.PriceSeries
	if c.cache != nil {
		if err := c.cache.Get(ctx, key, &cached); err == nil && len(cached.Bars) > 0 {
			return &cached, nil
		}
	}

	if !c.rl.Allow(upstreamKey, c.rps, c.rps) {
		return nil, fmt.Errorf("marketdata: upstream rate limit exceeded")
	}

	var resp candleResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/candles",
		Headers: c.authHeaders(),
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"range":  {string(rng)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", symbol, err)
	}
	if len(resp.Candles) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrSymbolNotFound, symbol)
	}

	series := &models.PriceSeries{Symbol: symbol}
	for _, cd := range resp.Candles {
		series.Bars = append(series.Bars, models.PriceBar{
			Timestamp: time.Unix(cd.Timestamp, 0).UTC(),
			Open:      cd.Open,
			High:      cd.High,
			Low:       cd.Low,
			Close:     cd.Close,
			Volume:    cd.Volume,
		})
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("candles %s: %w", symbol, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, series, c.cacheTTL); err != nil && c.l != nil {
			c.l.Warn("candle cache set failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	}
	return series, nil
}

// Quote fetches the latest trade price. Quotes bypass the cache.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Tick, error) {
	if !c.rl.Allow(upstreamKey, c.rps, c.rps) {
		return nil, fmt.Errorf("marketdata: upstream rate limit exceeded")
	}

	var resp quoteResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/quote",
		Headers: c.authHeaders(),
		QueryParams: map[string][]string{
			"symbol": {symbol},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}
	if resp.Price <= 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrSymbolNotFound, symbol)
	}

	ts := time.Now().UTC()
	if resp.Timestamp > 0 {
		ts = time.Unix(resp.Timestamp, 0).UTC()
	}
	return &models.Tick{Symbol: symbol, Price: resp.Price, Volume: resp.Volume, Timestamp: ts}, nil
}

func (c *Client) authHeaders() map[string]string {
	h := map[string]string{}
	if c.apiKey != "" {
		h["X-Api-Key"] = c.apiKey
	}
	return h
}
