// Package function exposes the completion service as an HTTP entrypoint.
package function

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bootstrap/controller"
	"bootstrap/failure"
	"bootstrap/logging"
	"bootstrap/message"
)

const (
	// DefaultPrompt is sent when the request carries no prompt.
	DefaultPrompt = "Hello, GPT!"

	SuccessMessage = "SUCCESS 🎉"
)

// Request is the optional JSON body of an invocation.
type Request struct {
	Prompt string `json:"prompt" query:"prompt"`
}

// Response is returned with status 200.
type Response struct {
	Message  string             `json:"message"`
	Response message.Completion `json:"response"`
}

// ErrorResponse is returned for failed invocations.
type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// Handler serves invocations by sending a single user message to the
// completer.
type Handler struct {
	completer controller.Completer
	logger    *log.Logger
	region    string
	zones     string
}

// Option configures a Handler.
type Option func(*Handler)

// WithEnvironment sets the region and availability zones logged per call.
func WithEnvironment(region, zones string) Option {
	return func(h *Handler) {
		h.region = region
		h.zones = zones
	}
}

func NewHandler(c controller.Completer, logger *log.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{completer: c, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Main handles one invocation.
func (h *Handler) Main(c echo.Context) error {
	ctx := c.Request().Context()
	logger := logging.FromContext(ctx, h.logger)
	logger.Info("Invocation", "region", h.region, "availability_zones", h.zones)

	var req Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}

	completion, err := h.completer.SendPrompt(ctx, message.PromptRequest{message.User(prompt)})
	if err != nil {
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: err.Error(),
			Kind:    string(failure.KindOf(err)),
		})
	}

	return c.JSON(http.StatusOK, Response{Message: SuccessMessage, Response: completion})
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// NewServer wires the handler, health and metrics routes into an echo
// instance. gatherer may be nil to skip the metrics route.
func NewServer(h *Handler, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestID)
	e.Use(middleware.BodyLimit("1M"))

	e.GET("/health", h.Health)
	e.GET("/base-agent", h.Main)
	e.POST("/base-agent", h.Main)

	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return e
}

// requestID tags each request with an id taken from X-Request-Id or a new
// UUID, and echoes it back.
func requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, id)
		ctx := logging.WithRequestID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
