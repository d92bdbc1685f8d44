package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	mid "StockPulse/internal/middleware"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/service/stream"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
)

// HealthChecker reports readiness of a backing service.
type HealthChecker func(ctx context.Context) error

// Router aggregates the API handlers and registers them on the server.
type Router struct {
	logger      *xlogger.Logger
	analysis    *AnalysisHandler
	predictions *PredictionsHandler
	hub         *stream.Hub
	limiter     *ratelimit.Limiter
	rps         float64
	burst       float64
	health      map[string]HealthChecker
}

func NewRouter(
	logger *xlogger.Logger,
	analysis *AnalysisHandler,
	predictions *PredictionsHandler,
	hub *stream.Hub,
	limiter *ratelimit.Limiter,
	rps float64,
	burst int,
) *Router {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 20
	}
	return &Router{
		logger:      logger,
		analysis:    analysis,
		predictions: predictions,
		hub:         hub,
		limiter:     limiter,
		rps:         rps,
		burst:       float64(burst),
		health:      map[string]HealthChecker{},
	}
}

// AddHealthCheck registers a named readiness probe.
func (r *Router) AddHealthCheck(name string, hc HealthChecker) {
	r.health[name] = hc
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	if r.limiter != nil {
		g.Use(mid.RateLimit(r.limiter, r.burst, r.rps))
	}
	r.analysis.RegisterRoutes(g)
	r.predictions.RegisterRoutes(g)

	if r.hub != nil {
		e.GET("/ws", r.serveWS)
	}
	e.GET("/healthz", r.healthz)
}

func (r *Router) serveWS(c echo.Context) error {
	if err := r.hub.ServeWS(c.Response(), c.Request()); err != nil {
		r.logger.Error("ws upgrade failed", xlogger.Error(err))
		return err
	}
	return nil
}

func (r *Router) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{}
	for name, hc := range r.health {
		if err := hc(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]interface{}{"status": http.StatusText(status), "checks": checks}
	if r.hub != nil {
		body["ws_clients"] = r.hub.ClientCount()
	}
	if status != http.StatusOK {
		return c.JSON(status, body)
	}
	return xhttp.SuccessResponse(c, body)
}
