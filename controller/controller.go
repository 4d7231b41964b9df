// Package controller is the seam between agent-facing calls and the
// completion service.
package controller

import (
	"context"

	"github.com/charmbracelet/log"

	"bootstrap/failure"
	"bootstrap/logging"
	"bootstrap/message"
)

// Completer sends a prompt and returns the reduced completion.
// *service.Service and *router.Router implement it.
type Completer interface {
	SendPrompt(ctx context.Context, req message.PromptRequest) (message.Completion, error)
}

// Controller turns completions into agent replies and collapses every
// failure into a single caller-facing error.
type Controller struct {
	completer Completer
	logger    *log.Logger
}

// New returns a Controller over c. A nil logger uses the default logger.
func New(c Completer, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{completer: c, logger: logger}
}

// GenerateResponse returns the first choice's message. On failure the
// original error is logged and a *failure.ServiceFailure with a fixed
// message is returned instead.
func (c *Controller) GenerateResponse(ctx context.Context, req message.PromptRequest) (message.Message, error) {
	completion, err := c.completer.SendPrompt(ctx, req)
	if err != nil {
		kind := failure.KindOf(err)
		logging.FromContext(ctx, c.logger).Error("Controller Error", "error", err, "kind", kind)
		return message.Message{}, failure.NewServiceFailure(kind, failure.MsgGenerateResponse, err)
	}
	return completion.Message, nil
}
