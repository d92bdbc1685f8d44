package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	models "StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	icache "StockPulse/internal/service/cache"
	"StockPulse/internal/service/metrics"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
)

// AnalysisHandler implements the technical analysis HTTP endpoints.
type AnalysisHandler struct {
	logger   *xlogger.Logger
	analysis *usecase.AnalysisUseCase
	cache    icache.BytesCache
	cacheTTL time.Duration
}

func NewAnalysisHandler(logger *xlogger.Logger, analysis *usecase.AnalysisUseCase) *AnalysisHandler {
	metrics.Register()
	return &AnalysisHandler{logger: logger, analysis: analysis, cacheTTL: 30 * time.Second}
}

// SetCache enables short-TTL response caching for analysis endpoints.
func (h *AnalysisHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	h.cache = c
	if ttl > 0 {
		h.cacheTTL = ttl
	}
}

func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/analysis/technical", h.Technical)
	g.GET("/analysis/signals", h.Signals)
	g.GET("/analysis/levels", h.Levels)
}

func (h *AnalysisHandler) Technical(c echo.Context) error {
	start := time.Now()
	endpoint := "technical"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.TechnicalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := "analysis:technical:" + req.Symbol + ":" + req.Range
	if b, ok := h.cached(key, endpoint); ok {
		return rawJSON(c, b)
	}

	res, err := h.analysis.Technical(c.Request().Context(), req.Symbol, domrepo.NormalizeRange(req.Range))
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	h.store(key, res)
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Signals(c echo.Context) error {
	start := time.Now()
	endpoint := "signals"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := "analysis:signals:" + req.Symbol + ":" + req.Range
	if b, ok := h.cached(key, endpoint); ok {
		return rawJSON(c, b)
	}

	res, err := h.analysis.Signals(c.Request().Context(), req.Symbol, domrepo.NormalizeRange(req.Range))
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	h.store(key, res)
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Levels(c echo.Context) error {
	start := time.Now()
	endpoint := "levels"
	defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.LevelsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analysis.Levels(c.Request().Context(), req.Symbol, domrepo.NormalizeRange(req.Range), req.Levels)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) fail(c echo.Context, endpoint string, err error) error {
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

// cached returns a previously stored response envelope for key.
func (h *AnalysisHandler) cached(key, endpoint string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil || !ok {
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(endpoint).Inc()
	return b, true
}

func (h *AnalysisHandler) store(key string, res interface{}) {
	if h.cache == nil {
		return
	}
	env := xhttp.APIResponse{Status: 200, Message: "OK", Data: res}
	if b, err := json.Marshal(env); err == nil {
		_ = h.cache.SetBytes(key, b, h.cacheTTL)
	}
}

func rawJSON(c echo.Context, b []byte) error {
	return c.JSONBlob(200, b)
}
