package usecase

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/internal/services/indicators"
	"StockPulse/internal/services/predict"
	applogger "StockPulse/pkg/logger"
)

// PredictionUseCase fetches history, queries the model server and blends
// the output into a persisted forecast.
type PredictionUseCase struct {
	source    domrepo.PriceSource
	modelSrv  domsvc.ModelServer
	predictor *predict.Predictor
	store     domrepo.PredictionStore
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

func NewPredictionUseCase(
	source domrepo.PriceSource,
	modelSrv domsvc.ModelServer,
	predictor *predict.Predictor,
	store domrepo.PredictionStore,
	metrics domrepo.Metrics,
) *PredictionUseCase {
	return &PredictionUseCase{
		source:    source,
		modelSrv:  modelSrv,
		predictor: predictor,
		store:     store,
		metrics:   metrics,
	}
}

// SetLogger injects a structured logger.
func (uc *PredictionUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

// Predict builds the forecast for symbol. Model-server failures degrade to
// the heuristic; persistence failures degrade to an unstored result.
func (uc *PredictionUseCase) Predict(ctx context.Context, symbol string, daysAhead int, rng domrepo.HistoryRange) (*models.PredictionResult, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol required", models.ErrInvalidSeries)
	}
	if daysAhead <= 0 {
		daysAhead = 1
	}

	series, err := uc.source.Candles(ctx, symbol, rng)
	if err != nil {
		return nil, fmt.Errorf("fetch series: %w", err)
	}

	set := indicators.Snapshot(series)
	preds, err := uc.modelSrv.Predict(ctx, symbol, set.Features(), daysAhead)
	if err != nil {
		if uc.l != nil {
			uc.l.Warn("model server unavailable, using heuristic",
				applogger.String("symbol", symbol), applogger.Error(err))
		}
		preds = nil
	}

	res := uc.predictor.Predict(series, preds, daysAhead)
	uc.metrics.RecordPrediction(res.Source, string(res.Quality))

	if uc.store != nil {
		rec := recordFromResult(res)
		if err := uc.store.Store(ctx, rec); err != nil {
			uc.metrics.RecordError("prediction_store")
			if uc.l != nil {
				uc.l.Error("store prediction failed",
					applogger.String("symbol", symbol), applogger.Error(err))
			}
		}
	}
	return res, nil
}

// History returns stored predictions for a symbol within [from, to].
func (uc *PredictionUseCase) History(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.PredictionRecord, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol required", models.ErrInvalidSeries)
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from must be <= to", models.ErrInvalidSeries)
	}
	if limit <= 0 {
		limit = 100
	}
	return uc.store.History(ctx, symbol, from, to, limit)
}

// Accuracy aggregates evaluated predictions for a symbol.
func (uc *PredictionUseCase) Accuracy(ctx context.Context, symbol string) (*models.AccuracyReport, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol required", models.ErrInvalidSeries)
	}
	return uc.store.Accuracy(ctx, symbol)
}

func recordFromResult(res *models.PredictionResult) *models.PredictionRecord {
	created := res.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &models.PredictionRecord{
		ID:             fmt.Sprintf("%s-%d", res.Symbol, created.UnixNano()),
		Symbol:         res.Symbol,
		DaysAhead:      res.DaysAhead,
		TargetDate:     created.AddDate(0, 0, res.DaysAhead),
		CurrentPrice:   res.CurrentPrice,
		PredictedPrice: res.PredictedPrice,
		Confidence:     res.Confidence,
		Quality:        res.Quality,
		Source:         res.Source,
		CreatedAt:      created,
	}
}
