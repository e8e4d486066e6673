package proxy

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tuncerburak97/bekci/internal/config"
	"github.com/tuncerburak97/bekci/internal/httplog"
	"github.com/tuncerburak97/bekci/internal/metrics"
)

// Handler forwards every request to the configured target. Log emission is
// owned by the httplog middleware wrapped around it; the handler only
// registers its identity and feeds metrics.
type Handler struct {
	transport http.RoundTripper
	target    string
	logger    *zerolog.Logger
	metrics   *metrics.Collector
}

func NewHandler(cfg *config.ProxyConfig, logger *zerolog.Logger, m *metrics.Collector) (*Handler, error) {
	if _, err := url.Parse(cfg.Target); err != nil {
		return nil, err
	}

	transport := &http.Transport{
		MaxIdleConns:          cfg.MaxIdleConns,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		ExpectContinueTimeout: cfg.ExpectContinueTimeout,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
	}

	return &Handler{
		transport: transport,
		target:    cfg.Target,
		logger:    logger,
		metrics:   m,
	}, nil
}

func (h *Handler) Handle(c *fiber.Ctx) error {
	httplog.SetHandler(c, "ProxyHandler", "handle")

	h.metrics.IncActiveRequests()
	defer h.metrics.DecActiveRequests()

	startTime := time.Now()

	req, err := http.NewRequest(c.Method(), h.target+c.OriginalURL(), bytes.NewReader(c.Body()))
	if err != nil {
		return err
	}
	for k, vals := range c.GetReqHeaders() {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := h.transport.RoundTrip(req)
	if err != nil {
		h.logger.Error().Err(err).Str("target", h.target).Msg("Upstream request failed")
		return fiber.NewError(fiber.StatusBadGateway, "upstream unavailable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	h.metrics.ObserveRequest(c.Method(), c.Path(), strconv.Itoa(resp.StatusCode), time.Since(startTime), nil)

	c.Status(resp.StatusCode)
	for k, vals := range resp.Header {
		for _, v := range vals {
			c.Set(k, v)
		}
	}

	return c.Send(body)
}
