package signals

import (
	"fmt"
	"math"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/indicators"
)

// Rule strengths and thresholds.
const (
	rsiOverbought = 70.0
	rsiOversold   = 30.0

	trendPeriod    = 20
	trendSlopeBars = 5

	crossFast = 50
	crossSlow = 200
)

// Generator derives component trading signals from a price series and
// aggregates them into an overall call.
type Generator struct{}

func New() *Generator { return &Generator{} }

// Generate evaluates every rule that has enough data and aggregates the
// results. A series too short for a rule yields that rule's neutral hold.
func (g *Generator) Generate(series *models.PriceSeries) *models.SignalReport {
	closes := series.Closes()

	components := map[string]models.Signal{
		"rsi":       rsiSignal(closes),
		"macd":      macdSignal(closes),
		"trend":     trendSignal(closes),
		"bollinger": bollingerSignal(closes),
	}
	if len(closes) >= crossSlow {
		components["sma_cross"] = smaCrossSignal(closes)
	}

	ts := time.Now().UTC()
	if n := series.Len(); n > 0 && !series.Bars[n-1].Timestamp.IsZero() {
		ts = series.Bars[n-1].Timestamp
	}

	return &models.SignalReport{
		Symbol:     series.Symbol,
		Timestamp:  ts,
		Components: components,
		Overall:    Aggregate(components),
	}
}

func rsiSignal(closes []float64) models.Signal {
	rsi := lastOf(indicators.RSI(closes, indicators.DefaultRSIPeriod), 50)
	switch {
	case rsi > rsiOverbought:
		return models.Signal{Kind: models.SignalSell, Strength: 80, Reason: fmt.Sprintf("RSI %.1f overbought", rsi)}
	case rsi < rsiOversold:
		return models.Signal{Kind: models.SignalBuy, Strength: 80, Reason: fmt.Sprintf("RSI %.1f oversold", rsi)}
	default:
		return models.Signal{Kind: models.SignalHold, Strength: 50, Reason: fmt.Sprintf("RSI %.1f neutral", rsi)}
	}
}

func macdSignal(closes []float64) models.Signal {
	points := indicators.MACD(closes, indicators.DefaultMACDFast, indicators.DefaultMACDSlow, indicators.DefaultMACDSignal)
	if len(points) < 2 {
		return models.Signal{Kind: models.SignalHold, Strength: 50, Reason: "MACD needs more history"}
	}
	cur, prev := points[len(points)-1].Histogram, points[len(points)-2].Histogram
	switch {
	case cur > 0 && cur > prev:
		return models.Signal{Kind: models.SignalBuy, Strength: 70, Reason: "MACD histogram positive and rising"}
	case cur < 0 && cur < prev:
		return models.Signal{Kind: models.SignalSell, Strength: 70, Reason: "MACD histogram negative and falling"}
	default:
		return models.Signal{Kind: models.SignalHold, Strength: 50, Reason: "MACD histogram mixed"}
	}
}

// trendSignal reads the slope of the 20-bar SMA over the last 5 bars against
// a 0.1% threshold, confirmed by price position relative to the SMA.
func trendSignal(closes []float64) models.Signal {
	if len(closes) < trendPeriod+trendSlopeBars {
		return models.Signal{Kind: models.SignalHold, Strength: 50, Reason: "trend needs more history"}
	}
	sma := indicators.SMA(closes, trendPeriod)
	cur := sma[len(sma)-1]
	slope := cur - sma[len(sma)-1-trendSlopeBars]
	threshold := 0.001 * cur
	price := closes[len(closes)-1]
	switch {
	case slope > threshold && price > cur:
		return models.Signal{Kind: models.SignalBuy, Strength: 60, Reason: "uptrend: rising SMA, price above"}
	case slope < -threshold && price < cur:
		return models.Signal{Kind: models.SignalSell, Strength: 60, Reason: "downtrend: falling SMA, price below"}
	default:
		return models.Signal{Kind: models.SignalHold, Strength: 50, Reason: "sideways trend"}
	}
}

func bollingerSignal(closes []float64) models.Signal {
	if len(closes) == 0 {
		return models.Signal{Kind: models.SignalHold, Strength: 50, Reason: "no data"}
	}
	bands := indicators.Bollinger(closes, indicators.DefaultBBPeriod, indicators.DefaultBBMult)
	b := bands[len(bands)-1]
	price := closes[len(closes)-1]
	switch {
	case price > b.Upper:
		return models.Signal{Kind: models.SignalSell, Strength: 65, Reason: "price above upper band"}
	case price < b.Lower:
		return models.Signal{Kind: models.SignalBuy, Strength: 65, Reason: "price below lower band"}
	default:
		return models.Signal{Kind: models.SignalHold, Strength: 50, Reason: "price inside bands"}
	}
}

func smaCrossSignal(closes []float64) models.Signal {
	fast := indicators.SMA(closes, crossFast)
	slow := indicators.SMA(closes, crossSlow)
	n := len(closes)
	curF, curS := fast[n-1], slow[n-1]
	prevF, prevS := fast[n-2], slow[n-2]
	switch {
	case prevF <= prevS && curF > curS:
		return models.Signal{Kind: models.SignalBuy, Strength: 90, Reason: "golden cross"}
	case prevF >= prevS && curF < curS:
		return models.Signal{Kind: models.SignalSell, Strength: 90, Reason: "death cross"}
	case curF > curS:
		return models.Signal{Kind: models.SignalBuy, Strength: 55, Reason: "50-day SMA above 200-day"}
	default:
		return models.Signal{Kind: models.SignalSell, Strength: 55, Reason: "50-day SMA below 200-day"}
	}
}

// Aggregate sums component strengths per bucket; the strictly largest bucket
// wins with a normalized strength. Ties and empty input resolve to hold.
func Aggregate(components map[string]models.Signal) models.Signal {
	var buy, sell, hold float64
	for _, s := range components {
		switch s.Kind {
		case models.SignalBuy:
			buy += s.Strength
		case models.SignalSell:
			sell += s.Strength
		default:
			hold += s.Strength
		}
	}
	total := buy + sell + hold
	if total == 0 {
		return models.Signal{Kind: models.SignalHold, Strength: 50, Reason: "insufficient data for signals"}
	}
	switch {
	case buy > sell && buy > hold:
		return models.Signal{Kind: models.SignalBuy, Strength: round1(buy / total * 100), Reason: "buy signals dominate"}
	case sell > buy && sell > hold:
		return models.Signal{Kind: models.SignalSell, Strength: round1(sell / total * 100), Reason: "sell signals dominate"}
	case hold > buy && hold > sell:
		return models.Signal{Kind: models.SignalHold, Strength: round1(hold / total * 100), Reason: "hold signals dominate"}
	default:
		return models.Signal{Kind: models.SignalHold, Strength: round1(hold / total * 100), Reason: "mixed signals"}
	}
}

func lastOf(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	return values[len(values)-1]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
