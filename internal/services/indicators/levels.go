package indicators

import (
	"math"
	"sort"

	"StockPulse/internal/domain/models"
)

// DetectLevels finds support and resistance levels on the close series: a
// bar is support when the closes window bars before and after it are both
// strictly higher, resistance when both are strictly lower. Levels are
// deduplicated, rounded to cents, support sorted ascending and resistance
// descending, each truncated to numLevels.
func DetectLevels(series *models.PriceSeries, window, numLevels int) models.Levels {
	closes := series.Closes()

	var support, resistance []float64
	for i := window; i < len(closes)-window; i++ {
		before, after := closes[i-window], closes[i+window]
		if before > closes[i] && after > closes[i] {
			support = append(support, closes[i])
		}
		if before < closes[i] && after < closes[i] {
			resistance = append(resistance, closes[i])
		}
	}

	support = dedupe(support)
	resistance = dedupe(resistance)
	sort.Float64s(support)
	sort.Sort(sort.Reverse(sort.Float64Slice(resistance)))
	if len(support) > numLevels {
		support = support[:numLevels]
	}
	if len(resistance) > numLevels {
		resistance = resistance[:numLevels]
	}

	return models.Levels{
		Support:    round2(support),
		Resistance: round2(resistance),
		Pivots:     Pivots(series),
	}
}

func round2(values []float64) []float64 {
	for i, v := range values {
		values[i] = math.Round(v*100) / 100
	}
	return values
}

// Pivots computes classic floor-trader pivot points from the last bar.
func Pivots(series *models.PriceSeries) models.PivotPoints {
	if series.Len() == 0 {
		return models.PivotPoints{}
	}
	last := series.Bars[series.Len()-1]
	h, l, c := last.High, last.Low, last.Close
	p := (h + l + c) / 3
	return models.PivotPoints{
		Pivot: p,
		R1:    2*p - l,
		R2:    p + (h - l),
		R3:    h + 2*(p-l),
		S1:    2*p - h,
		S2:    p - (h - l),
		S3:    l - 2*(h-p),
	}
}

func dedupe(values []float64) []float64 {
	seen := make(map[float64]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
