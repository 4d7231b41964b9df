// Package router spreads completion calls across several completers, for
// example one service per API key.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"bootstrap/controller"
	"bootstrap/failure"
	"bootstrap/message"
)

// ErrNoClients is returned when the router has nothing to route to.
var ErrNoClients = errors.New("no clients available")

type namedClient struct {
	client controller.Completer
	name   string
}

// Router hands calls to its clients in round-robin order.
type Router struct {
	clients []namedClient
	counter uint64
	logger  *log.Logger
}

func NewRouter(clients []controller.Completer, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}

	named := make([]namedClient, len(clients))
	for i, c := range clients {
		named[i] = namedClient{client: c, name: fmt.Sprintf("client-%d", i+1)}
	}

	return &Router{clients: named, logger: logger}
}

// Len returns the number of clients.
func (r *Router) Len() int {
	return len(r.clients)
}

// SendPrompt forwards the call to the next client.
func (r *Router) SendPrompt(ctx context.Context, req message.PromptRequest) (message.Completion, error) {
	if len(r.clients) == 0 {
		return message.Completion{}, failure.NewServiceFailure(failure.KindUnknown, failure.MsgServiceCommunication, ErrNoClients)
	}

	index := atomic.AddUint64(&r.counter, 1) - 1
	selected := r.clients[index%uint64(len(r.clients))]

	r.logger.Debug("Routing request", "client", selected.name)

	return selected.client.SendPrompt(ctx, req)
}
