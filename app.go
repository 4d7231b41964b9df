package main

import (
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"bootstrap/agent"
	"bootstrap/config"
	"bootstrap/controller"
	"bootstrap/metrics"
	"bootstrap/router"
	"bootstrap/service"
	"bootstrap/sink"
	"bootstrap/usage"
)

// app holds the shared pieces every command builds agents from.
type app struct {
	cfg       config.Config
	logger    *log.Logger
	registry  *prometheus.Registry
	agents    *agent.Registry
	tracker   *usage.Tracker
	services  []*service.Service
	completer controller.Completer
	sink      *sink.Writer
}

func newApp(logger *log.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheusRecorder(registry)
	tracker := usage.NewTracker()

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		agents:   agent.NewRegistry(),
		tracker:  tracker,
	}

	for _, key := range cfg.APIKeys() {
		svc, err := service.New(service.Config{
			APIKey:            key,
			Model:             cfg.Model,
			BaseURL:           cfg.BaseURL,
			RequestsPerMinute: cfg.RequestsPerMinute,
			Logger:            logger,
			Recorder:          recorder,
			Tracker:           tracker,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.services = append(a.services, svc)
	}

	if len(a.services) == 1 {
		a.completer = a.services[0]
	} else {
		clients := make([]controller.Completer, len(a.services))
		for i, svc := range a.services {
			clients[i] = svc
		}
		a.completer = router.NewRouter(clients, logger)
	}

	a.sink, err = sink.New(cfg.OutputRoot, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// newAgent builds an agent with its own controller over the shared completer.
func (a *app) newAgent(id string) *agent.Agent {
	return agent.New(id, controller.New(a.completer, a.logger), agent.WithLogger(a.logger))
}

// register adds the agents to the registry and records that dependent
// waits on the output of dependency.
func (a *app) register(dependency, dependent *agent.Agent) error {
	to, err := a.agents.Add(dependency)
	if err != nil {
		return err
	}
	from, err := a.agents.Add(dependent)
	if err != nil {
		return err
	}
	return a.agents.AddDependency(from, to)
}

// saveUsage writes the token usage report next to the generated output.
func (a *app) saveUsage() {
	if a.tracker.Total().TotalTokens == 0 {
		return
	}
	if err := a.tracker.Save(a.sink, usage.FileName); err != nil {
		a.logger.Warn("Failed to save token usage", "error", err)
	}
}

func (a *app) Close() {
	for _, svc := range a.services {
		svc.Close()
	}
}
