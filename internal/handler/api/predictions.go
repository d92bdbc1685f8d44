package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	models "StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/metrics"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
)

// PredictionsHandler implements the prediction and accuracy HTTP endpoints.
type PredictionsHandler struct {
	logger     *xlogger.Logger
	prediction *usecase.PredictionUseCase
	ticks      *usecase.TicksUseCase
}

func NewPredictionsHandler(logger *xlogger.Logger, prediction *usecase.PredictionUseCase, ticks *usecase.TicksUseCase) *PredictionsHandler {
	metrics.Register()
	return &PredictionsHandler{logger: logger, prediction: prediction, ticks: ticks}
}

func (h *PredictionsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/predict", h.Predict)
	g.GET("/predictions/history", h.History)
	g.GET("/accuracy", h.Accuracy)
	g.GET("/ticks", h.Ticks)
}

func (h *PredictionsHandler) Predict(c echo.Context) error {
	start := time.Now()
	endpoint := "predict"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.prediction.Predict(c.Request().Context(), req.Symbol, req.Days, domrepo.NormalizeRange(req.Range))
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsHandler) History(c echo.Context) error {
	endpoint := "history"
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	from := xhttp.ParseTimeDefault(req.From, time.Time{})
	to := xhttp.ParseTimeDefault(req.To, time.Time{})

	recs, err := h.prediction.History(c.Request().Context(), req.Symbol, from, to, req.Limit)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.ListResponse(c, historyRows(recs), int64(len(recs)))
}

func (h *PredictionsHandler) Accuracy(c echo.Context) error {
	endpoint := "accuracy"
	req := &models.AccuracyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rep, err := h.prediction.Accuracy(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, rep)
}

func (h *PredictionsHandler) Ticks(c echo.Context) error {
	endpoint := "ticks"
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.ticks.GetTicks(c.Request().Context(), usecase.GetTicksParams{
		Symbol: req.Symbol,
		From:   xhttp.ParseTimeDefault(req.From, time.Time{}),
		To:     xhttp.ParseTimeDefault(req.To, time.Time{}),
		Limit:  req.Limit,
	})
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
	switch {
	case errors.Is(err, models.ErrInvalidSeries):
		return xhttp.BadRequestResponse(c, err.Error())
	case errors.Is(err, models.ErrSymbolNotFound):
		return xhttp.NotFoundResponse(c, err.Error())
	default:
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}

// historyRow is the transport shape of a stored prediction.
type historyRow struct {
	ID               string    `json:"id"`
	Symbol           string    `json:"symbol"`
	DaysAhead        int       `json:"days_ahead"`
	TargetDate       time.Time `json:"target_date"`
	CurrentPrice     float64   `json:"current_price"`
	PredictedPrice   float64   `json:"predicted_price"`
	Confidence       float64   `json:"confidence"`
	Quality          string    `json:"quality"`
	Source           string    `json:"source"`
	CreatedAt        time.Time `json:"created_at"`
	Evaluated        bool      `json:"evaluated"`
	ActualPrice      *float64  `json:"actual_price,omitempty"`
	AbsPercentError  *float64  `json:"abs_percent_error,omitempty"`
	DirectionCorrect *bool     `json:"direction_correct,omitempty"`
}

func historyRows(recs []*models.PredictionRecord) []historyRow {
	rows := make([]historyRow, 0, len(recs))
	for _, r := range recs {
		row := historyRow{
			ID:             r.ID,
			Symbol:         r.Symbol,
			DaysAhead:      r.DaysAhead,
			TargetDate:     r.TargetDate,
			CurrentPrice:   r.CurrentPrice,
			PredictedPrice: r.PredictedPrice,
			Confidence:     r.Confidence,
			Quality:        string(r.Quality),
			Source:         r.Source,
			CreatedAt:      r.CreatedAt,
			Evaluated:      r.Evaluated,
		}
		if r.Evaluated {
			actual, absErr, dir := r.ActualPrice, r.AbsPercentError, r.DirectionCorrect
			row.ActualPrice = &actual
			row.AbsPercentError = &absErr
			row.DirectionCorrect = &dir
		}
		rows = append(rows, row)
	}
	return rows
}
