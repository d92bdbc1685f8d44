package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgch "StockPulse/pkg/clickhouse"
	applogger "StockPulse/pkg/logger"
)

// CHPredictionStore implements PredictionStore backed by ClickHouse.
type CHPredictionStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHPredictionStore(ch *pkgch.Client, table string) domrepo.PredictionStore {
	return &CHPredictionStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHPredictionStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPredictionStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *CHPredictionStore) Store(ctx context.Context, rec *models.PredictionRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s
        (id, symbol, days_ahead, target_date, current_price, predicted_price,
         confidence, quality, source, created_at, evaluated, actual_price,
         abs_pct_error, direction_correct)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		rec.ID,
		rec.Symbol,
		rec.DaysAhead,
		rec.TargetDate,
		rec.CurrentPrice,
		rec.PredictedPrice,
		rec.Confidence,
		string(rec.Quality),
		rec.Source,
		rec.CreatedAt,
		boolToUInt8(rec.Evaluated),
		rec.ActualPrice,
		rec.AbsPercentError,
		boolToUInt8(rec.DirectionCorrect),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse store prediction error",
				applogger.String("symbol", rec.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store prediction: %w", err)
	}
	return nil
}

func (s *CHPredictionStore) History(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.PredictionRecord, error) {
	q := fmt.Sprintf(`SELECT id, symbol, days_ahead, target_date, current_price,
        predicted_price, confidence, quality, source, created_at, evaluated,
        actual_price, abs_pct_error, direction_correct
        FROM %s
        WHERE symbol = ? AND created_at >= ? AND created_at <= ?
        ORDER BY created_at DESC
        LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("prediction history: %w", err)
	}
	defer rows.Close()
	return scanPredictions(rows)
}

func (s *CHPredictionStore) Unevaluated(ctx context.Context, before time.Time, limit int) ([]*models.PredictionRecord, error) {
	q := fmt.Sprintf(`SELECT id, symbol, days_ahead, target_date, current_price,
        predicted_price, confidence, quality, source, created_at, evaluated,
        actual_price, abs_pct_error, direction_correct
        FROM %s
        WHERE evaluated = 0 AND target_date <= ?
        ORDER BY target_date ASC
        LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, before, limit)
	if err != nil {
		return nil, fmt.Errorf("unevaluated predictions: %w", err)
	}
	defer rows.Close()
	return scanPredictions(rows)
}

func (s *CHPredictionStore) MarkEvaluated(ctx context.Context, id string, actual, absPctError float64, directionCorrect bool) error {
	// ClickHouse mutation; applied asynchronously which is fine for
	// accuracy aggregates.
	q := fmt.Sprintf(`ALTER TABLE %s UPDATE
        evaluated = 1, actual_price = ?, abs_pct_error = ?, direction_correct = ?
        WHERE id = ?`, s.table)
	if _, err := s.db.ExecContext(ctx, q, actual, absPctError, boolToUInt8(directionCorrect), id); err != nil {
		return fmt.Errorf("mark evaluated: %w", err)
	}
	return nil
}

func (s *CHPredictionStore) Accuracy(ctx context.Context, symbol string) (*models.AccuracyReport, error) {
	q := fmt.Sprintf(`SELECT count(), avg(abs_pct_error), avg(direction_correct)
        FROM %s
        WHERE symbol = ? AND evaluated = 1`, s.table)
	row := s.db.QueryRowContext(ctx, q, symbol)

	var count uint64
	var mape, hitRate sql.NullFloat64
	if err := row.Scan(&count, &mape, &hitRate); err != nil {
		return nil, fmt.Errorf("accuracy query: %w", err)
	}

	rep := &models.AccuracyReport{Symbol: symbol, Evaluated: int(count)}
	if mape.Valid {
		rep.MAPE = mape.Float64
	}
	if hitRate.Valid {
		rep.DirectionHitRate = hitRate.Float64 * 100
	}
	return rep, nil
}

func (s *CHPredictionStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHPredictionStore) Close() error {
	return nil // Managed by pkg
}

func scanPredictions(rows *sql.Rows) ([]*models.PredictionRecord, error) {
	var out []*models.PredictionRecord
	for rows.Next() {
		var r models.PredictionRecord
		var quality string
		var evaluated, direction uint8
		if err := rows.Scan(
			&r.ID, &r.Symbol, &r.DaysAhead, &r.TargetDate, &r.CurrentPrice,
			&r.PredictedPrice, &r.Confidence, &quality, &r.Source, &r.CreatedAt,
			&evaluated, &r.ActualPrice, &r.AbsPercentError, &direction,
		); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		r.Quality = models.PredictionQuality(quality)
		r.Evaluated = evaluated == 1
		r.DirectionCorrect = direction == 1
		out = append(out, &r)
	}
	return out, rows.Err()
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
