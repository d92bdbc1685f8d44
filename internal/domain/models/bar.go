package models

import (
	"fmt"
	"time"
)

// PriceBar is a single OHLCV candle.
type PriceBar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// PriceSeries is an ordered run of daily bars for one symbol.
type PriceSeries struct {
	Symbol string
	Bars   []PriceBar
}

// Validate rejects malformed series: timestamps must be strictly
// increasing, prices and volumes non-negative. A short (or empty) series
// is valid; downstream computations degrade to neutral values instead.
func (s *PriceSeries) Validate() error {
	for i, b := range s.Bars {
		if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 {
			return fmt.Errorf("%w: negative price at bar %d", ErrInvalidSeries, i)
		}
		if b.Volume < 0 {
			return fmt.Errorf("%w: negative volume at bar %d", ErrInvalidSeries, i)
		}
		if i > 0 && !b.Timestamp.After(s.Bars[i-1].Timestamp) {
			return fmt.Errorf("%w: non-increasing timestamp at bar %d", ErrInvalidSeries, i)
		}
	}
	return nil
}

func (s *PriceSeries) Len() int { return len(s.Bars) }

// Closes returns the close column.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column.
func (s *PriceSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column.
func (s *PriceSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volume column.
func (s *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s *PriceSeries) LastClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// Tick is a lightweight last-price update used by the streaming pipeline.
type Tick struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}
