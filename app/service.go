// Package app wires the configuration into a running allocation service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apifleet "github.com/kilianp07/sirene/api/fleet"
	"github.com/kilianp07/sirene/config"
	"github.com/kilianp07/sirene/core/dispatch"
	"github.com/kilianp07/sirene/core/fleet"
	coremetrics "github.com/kilianp07/sirene/core/metrics"
	"github.com/kilianp07/sirene/core/model"
	"github.com/kilianp07/sirene/core/rebalance"
	"github.com/kilianp07/sirene/infra/ai"
	"github.com/kilianp07/sirene/infra/logger"
	inframetrics "github.com/kilianp07/sirene/infra/metrics"
	"github.com/kilianp07/sirene/infra/mqtt"
	"github.com/kilianp07/sirene/internal/eventbus"
	"github.com/kilianp07/sirene/internal/store"
)

// Service orchestrates the fleet registry, dispatcher, rebalancer and the
// HTTP surface.
type Service struct {
	Registry   *fleet.Registry
	Dispatcher *dispatch.Manager
	Rebalancer *rebalance.Rebalancer

	scenarios []model.Scenario
	cfg       *config.Config
	bus       eventbus.EventBus
	log       logger.Logger
	publisher mqtt.Publisher
	bridge    *mqtt.Bridge
}

// New creates a Service from the configuration. The CSV files named in the
// data section seed the fleet.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	units, err := store.LoadUnits(cfg.Data.Vehicles)
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	stations, err := store.LoadStations(cfg.Data.Stations)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	scenarios, err := store.LoadScenarios(cfg.Data.Factors)
	if err != nil {
		return nil, fmt.Errorf("load factors: %w", err)
	}
	logg.Infof("loaded %d units, %d stations, %d scenarios", len(units), len(stations), len(scenarios))

	reg, err := fleet.NewRegistry(units, stations)
	if err != nil {
		return nil, fmt.Errorf("fleet registry: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	bus := eventbus.New()

	manager, err := dispatch.NewManager(reg, cfg.Dispatch, sink, bus, logger.New("dispatch"))
	if err != nil {
		return nil, fmt.Errorf("dispatch manager: %w", err)
	}

	var alloc rebalance.Allocator
	switch cfg.Rebalance.Allocator {
	case "ai":
		alloc, err = ai.New(cfg.Rebalance.AI, logger.New("ai"))
		if err != nil {
			return nil, fmt.Errorf("ai allocator: %w", err)
		}
	default:
		alloc = rebalance.NewWeightedAllocator(logger.New("rebalance"))
	}
	rb, err := rebalance.New(reg, alloc, sink, bus, logger.New("rebalance"))
	if err != nil {
		return nil, fmt.Errorf("rebalancer: %w", err)
	}

	svc := &Service{
		Registry:   reg,
		Dispatcher: manager,
		Rebalancer: rb,
		scenarios:  scenarios,
		cfg:        cfg,
		bus:        bus,
		log:        logg,
	}

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
		svc.bridge = mqtt.NewBridge(pub, bus, cfg.MQTT.TopicPrefix, logger.New("mqtt"))
	}
	return svc, nil
}

// Scenarios returns the demand scenarios loaded at startup.
func (s *Service) Scenarios() []model.Scenario {
	return append([]model.Scenario(nil), s.scenarios...)
}

// Run starts the HTTP API and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.bridge != nil {
		go s.bridge.Run(ctx)
	}
	if addr := s.cfg.Monitoring.PrometheusAddr; addr != "" {
		go func() {
			if err := inframetrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	mux := apifleet.NewMux(s.Dispatcher, s.Rebalancer, s.Registry, s.Scenarios, s.bus, s.log)
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("api listening on %s", s.cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	s.bus.Close()
	return nil
}
