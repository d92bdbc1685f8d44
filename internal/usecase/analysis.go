package usecase

import (
	"context"
	"fmt"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/internal/services/indicators"
)

// AnalysisUseCase provides business logic for the technical analysis
// endpoints: indicator snapshots, signal reports and price levels.
type AnalysisUseCase struct {
	source domrepo.PriceSource
	gen    domsvc.SignalGenerator
}

func NewAnalysisUseCase(source domrepo.PriceSource, gen domsvc.SignalGenerator) *AnalysisUseCase {
	return &AnalysisUseCase{source: source, gen: gen}
}

// TechnicalResult bundles the snapshot with oscillator values the snapshot
// does not carry.
type TechnicalResult struct {
	Symbol     string                 `json:"symbol"`
	Range      string                 `json:"range"`
	Bars       int                    `json:"bars"`
	Indicators *models.IndicatorSet   `json:"indicators"`
	Stochastic models.StochasticPoint `json:"stochastic"`
	ADX        models.ADXPoint        `json:"adx"`
	OBV        float64                `json:"obv"`
	VWAP       float64                `json:"vwap"`
}

func (uc *AnalysisUseCase) Technical(ctx context.Context, symbol string, rng domrepo.HistoryRange) (*TechnicalResult, error) {
	series, err := uc.fetch(ctx, symbol, rng)
	if err != nil {
		return nil, err
	}

	highs, lows, closes, volumes := series.Highs(), series.Lows(), series.Closes(), series.Volumes()
	res := &TechnicalResult{
		Symbol:     symbol,
		Range:      string(rng),
		Bars:       series.Len(),
		Indicators: indicators.Snapshot(series),
	}
	if n := series.Len(); n > 0 {
		stoch := indicators.Stochastic(highs, lows, closes,
			indicators.DefaultStochPeriod, indicators.DefaultStochSmoothK, indicators.DefaultStochSmoothD)
		adx := indicators.ADX(highs, lows, closes, indicators.DefaultADXPeriod)
		res.Stochastic = stoch[n-1]
		res.ADX = adx[n-1]
		obv := indicators.OBV(closes, volumes)
		vwap := indicators.VWAP(highs, lows, closes, volumes)
		res.OBV = obv[n-1]
		res.VWAP = vwap[n-1]
	}
	return res, nil
}

func (uc *AnalysisUseCase) Signals(ctx context.Context, symbol string, rng domrepo.HistoryRange) (*models.SignalReport, error) {
	series, err := uc.fetch(ctx, symbol, rng)
	if err != nil {
		return nil, err
	}
	return uc.gen.Generate(series), nil
}

// LevelsResult carries detected levels with the request context.
type LevelsResult struct {
	Symbol string `json:"symbol"`
	Range  string `json:"range"`
	models.Levels
}

func (uc *AnalysisUseCase) Levels(ctx context.Context, symbol string, rng domrepo.HistoryRange, numLevels int) (*LevelsResult, error) {
	series, err := uc.fetch(ctx, symbol, rng)
	if err != nil {
		return nil, err
	}
	if numLevels <= 0 {
		numLevels = 3
	}
	return &LevelsResult{
		Symbol: symbol,
		Range:  string(rng),
		Levels: indicators.DetectLevels(series, indicators.DefaultLevelWindow, numLevels),
	}, nil
}

func (uc *AnalysisUseCase) fetch(ctx context.Context, symbol string, rng domrepo.HistoryRange) (*models.PriceSeries, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol required", models.ErrInvalidSeries)
	}
	series, err := uc.source.Candles(ctx, symbol, rng)
	if err != nil {
		return nil, fmt.Errorf("fetch series: %w", err)
	}
	return series, nil
}
