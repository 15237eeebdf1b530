package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"BlanketWatch/internal/model"
)

// StaticSource returns a fixed register. Used for development and tests.
type StaticSource struct {
	Contracts []model.Contract
	Err       error
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Load(_ context.Context) ([]model.Contract, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Contract, len(s.Contracts))
	copy(out, s.Contracts)
	return out, nil
}

// Collection is the register as loaded, narrowed to active contracts.
type Collection struct {
	Loaded int
	Active []model.Contract
}

// Collector loads the register and keeps the contracts still active at the run instant.
type Collector struct {
	Source Source
	Logger *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(source Source, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{Source: source, Logger: logger}
}

// Collect loads every contract and filters out those whose end date is not after now.
func (c *Collector) Collect(ctx context.Context, now time.Time) (*Collection, error) {
	all, err := c.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load from %s: %w", c.Source.Name(), err)
	}

	active := make([]model.Contract, 0, len(all))
	for _, ct := range all {
		if ct.IsActive(now) {
			active = append(active, ct)
		}
	}
	c.Logger.Info("register loaded",
		zap.String("source", c.Source.Name()),
		zap.Int("loaded", len(all)),
		zap.Int("active", len(active)))
	return &Collection{Loaded: len(all), Active: active}, nil
}
