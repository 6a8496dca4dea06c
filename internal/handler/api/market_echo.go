package api

import (
	"time"

	"CandlePull/internal/domain/models"
	"CandlePull/internal/usecase"
	xhttp "CandlePull/pkg/http"
	xlogger "CandlePull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TransportStatus reports the ingestion transport currently in use.
type TransportStatus interface {
	ActiveTransport() string
}

// ProviderInfo is the static provider configuration shown by /v1/providers.
type ProviderInfo struct {
	Enabled         []string
	Transport       string
	Symbols         []string
	RestPollSeconds float64
}

// MarketEchoHandler binds the read API: health, providers, bars, instrument
// metadata, and on-demand signals.
type MarketEchoHandler struct {
	logger   *xlogger.Logger
	bars     *usecase.BarsUseCase
	meta     *usecase.MetaUseCase
	signal   *usecase.SignalUseCase
	status   TransportStatus
	provider ProviderInfo
}

func NewMarketEchoHandler(
	logger *xlogger.Logger,
	bars *usecase.BarsUseCase,
	meta *usecase.MetaUseCase,
	signal *usecase.SignalUseCase,
	status TransportStatus,
	provider ProviderInfo,
) *MarketEchoHandler {
	return &MarketEchoHandler{
		logger:   logger,
		bars:     bars,
		meta:     meta,
		signal:   signal,
		status:   status,
		provider: provider,
	}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	v1 := e.Group("/v1")
	v1.GET("/providers", h.Providers)
	v1.GET("/bars", h.Bars)
	v1.GET("/meta/instruments", h.Instruments)
	v1.POST("/signal", h.Signal)
}

func (h *MarketEchoHandler) Health(c echo.Context) error {
	return c.JSON(200, models.HealthResponse{
		OK:       true,
		Ts:       time.Now().Unix(),
		Provider: "binance",
	})
}

func (h *MarketEchoHandler) Providers(c echo.Context) error {
	return c.JSON(200, models.ProvidersResponse{
		Enabled: h.provider.Enabled,
		Binance: models.BinanceProviders{
			Transport:       h.provider.Transport,
			ActiveTransport: h.status.ActiveTransport(),
			Symbols:         h.provider.Symbols,
			RestPollSeconds: h.provider.RestPollSeconds,
		},
	})
}

func (h *MarketEchoHandler) Bars(c echo.Context) error {
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bars, err := h.bars.GetBars(c.Request().Context(), req.Symbol, req.Interval, req.Limit)
	if err != nil {
		h.logger.Error("bars usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return c.JSON(200, bars)
}

func (h *MarketEchoHandler) Instruments(c echo.Context) error {
	req := &models.InstrumentsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	resp, err := h.meta.Instruments(c.Request().Context(), req.MinBars1m)
	if err != nil {
		h.logger.Error("instruments usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return c.JSON(200, resp)
}

func (h *MarketEchoHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	resp, err := h.signal.Generate(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("signal usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return c.JSON(200, resp)
}
