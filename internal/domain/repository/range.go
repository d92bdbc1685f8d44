package repository

// HistoryRange represents supported candle history spans.
type HistoryRange string

const (
	Range1Mo HistoryRange = "1mo"
	Range3Mo HistoryRange = "3mo"
	Range6Mo HistoryRange = "6mo"
	Range1Y  HistoryRange = "1y"
	Range2Y  HistoryRange = "2y"
)

// IsValidRange returns true if r is a supported history range.
func IsValidRange(r HistoryRange) bool {
	switch r {
	case Range1Mo, Range3Mo, Range6Mo, Range1Y, Range2Y:
		return true
	default:
		return false
	}
}

// DefaultRange returns the default history range.
func DefaultRange() HistoryRange { return Range3Mo }

// NormalizeRange converts a raw string to a valid range (or default).
func NormalizeRange(s string) HistoryRange {
	if s == "" {
		return DefaultRange()
	}
	r := HistoryRange(s)
	if IsValidRange(r) {
		return r
	}
	return DefaultRange()
}

// Days returns the approximate calendar span of the range.
func (r HistoryRange) Days() int {
	switch r {
	case Range1Mo:
		return 30
	case Range3Mo:
		return 91
	case Range6Mo:
		return 182
	case Range1Y:
		return 365
	case Range2Y:
		return 730
	default:
		return 91
	}
}
