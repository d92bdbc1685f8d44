package usecase

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

// TicksUseCase provides business logic for querying recent live ticks.
type TicksUseCase struct {
	store domrepo.TickStore
}

func NewTicksUseCase(store domrepo.TickStore) *TicksUseCase {
	return &TicksUseCase{store: store}
}

type GetTicksParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

type GetTicksResult struct {
	Symbol string         `json:"symbol"`
	From   time.Time      `json:"from"`
	To     time.Time      `json:"to"`
	Count  int            `json:"count"`
	Ticks  []*models.Tick `json:"ticks"`
}

func (uc *TicksUseCase) GetTicks(ctx context.Context, p GetTicksParams) (*GetTicksResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol required", models.ErrInvalidSeries)
	}
	if p.To.IsZero() {
		p.To = time.Now().UTC()
	}
	if p.From.IsZero() {
		p.From = p.To.Add(-time.Hour)
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("%w: from must be <= to", models.ErrInvalidSeries)
	}
	if p.Limit <= 0 {
		p.Limit = 1000
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}

	ticks, err := uc.store.Query(ctx, p.Symbol, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("query ticks: %w", err)
	}

	return &GetTicksResult{
		Symbol: p.Symbol,
		From:   p.From,
		To:     p.To,
		Count:  len(ticks),
		Ticks:  ticks,
	}, nil
}
