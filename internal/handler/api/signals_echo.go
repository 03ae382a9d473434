package api

import (
	"time"

	models "Conflux/internal/domain/models"
	"Conflux/internal/usecase"
	xhttp "Conflux/pkg/http"
	xlogger "Conflux/pkg/logger"
	"Conflux/pkg/util"

	"github.com/labstack/echo/v4"
)

// SignalsEchoHandler exposes the signal engine over HTTP.
type SignalsEchoHandler struct {
	logger *xlogger.Logger
	engine *usecase.SignalEngine
}

func NewSignalsEchoHandler(logger *xlogger.Logger, engine *usecase.SignalEngine) *SignalsEchoHandler {
	return &SignalsEchoHandler{logger: logger, engine: engine}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/signal", h.Signal)
	g.POST("/outcome", h.Outcome)
	g.GET("/stats/setups", h.SetupStats)
	g.GET("/weights", h.Weights)
}

// Signal evaluates a submitted multi-timeframe snapshot and returns the
// resulting signal, executed or not.
func (h *SignalsEchoHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snapshot := &models.MarketSnapshot{
		Symbol:     req.Symbol,
		Timeframes: make(map[string][]models.Candle, len(req.Timeframes)),
	}
	for tf, payload := range req.Timeframes {
		cs := make([]models.Candle, 0, len(payload))
		for _, p := range payload {
			cs = append(cs, models.Candle{
				Timestamp: time.Unix(p.T, 0),
				Open:      p.O,
				High:      p.H,
				Low:       p.L,
				Close:     p.C,
				Volume:    p.V,
			})
		}
		snapshot.Timeframes[tf] = cs
	}

	sig := h.engine.GenerateSignal(c.Request().Context(), snapshot)
	return xhttp.SuccessResponse(c, sig)
}

// Outcome feeds a realized trade result back into the learning loop.
func (h *SignalsEchoHandler) Outcome(c echo.Context) error {
	req := &models.OutcomeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	outcome := models.TradeOutcome{
		SignalID: req.SignalID,
		Success:  req.Success,
		PnL:      req.PnL,
	}
	if t, ok := util.ParseTime(req.EntryTime); ok {
		outcome.EntryTime = t
	}
	if t, ok := util.ParseTime(req.ExitTime); ok {
		outcome.ExitTime = t
	}

	h.engine.UpdateSignalResult(c.Request().Context(), outcome)
	return xhttp.SuccessResponse(c, map[string]string{"signal_id": req.SignalID, "status": "recorded"})
}

// SetupStats returns accumulated per-setup performance.
func (h *SignalsEchoHandler) SetupStats(c echo.Context) error {
	stats := h.engine.SetupStats()
	return xhttp.ListResponse(c, stats, int64(len(stats)))
}

// Weights returns the effective merged filter weights for a symbol and regime.
func (h *SignalsEchoHandler) Weights(c echo.Context) error {
	req := &models.WeightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	weights := h.engine.EffectiveWeights(req.Symbol, models.RegimeType(req.Regime))
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol":  req.Symbol,
		"regime":  req.Regime,
		"weights": weights,
	})
}
