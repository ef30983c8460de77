// Package engine holds the market-state generator and the derived
// analytics that run over each snapshot: aggregates, trading signals,
// alerts, and forecasts.
package engine

import (
	"fmt"
	"time"

	"github.com/sawpanic/gridpulse/internal/config"
	"github.com/sawpanic/gridpulse/internal/market"
)

// Engine wires the five analytics components over one shared catalog.
// It is owned by the scheduler and carries no published state itself.
type Engine struct {
	generator  *Generator
	aggregator *Aggregator
	detector   *Detector
	classifier *Classifier
	projector  *Projector
	clock      Clock
}

// New builds an engine from validated configuration. Catalog problems
// surface here and are fatal: the engine never starts over a broken
// universe.
func New(cfg *config.Config, sampler Sampler, clock Clock) (*Engine, error) {
	if clock == nil {
		clock = time.Now
	}
	if sampler == nil {
		sampler = NewSampler(cfg.Seed)
	}
	gen, err := NewGenerator(cfg.Catalog, sampler, clock)
	if err != nil {
		return nil, err
	}
	return &Engine{
		generator:  gen,
		aggregator: NewAggregator(cfg.Catalog),
		detector:   NewDetector(cfg.Catalog, cfg.Signals, sampler),
		classifier: NewClassifier(cfg.Catalog, cfg.Alerts),
		projector:  NewProjector(cfg.Catalog, sampler),
		clock:      clock,
	}, nil
}

// BuildBundle runs one full cycle in fixed order: generate, compute
// aggregates, detect signals, classify alerts, project forecasts.
// Signals, alerts, and predictions all read the same immutable
// snapshot; aggregates are stamped into it before the dependent
// passes run.
func (e *Engine) BuildBundle(seq uint64) (*market.Bundle, error) {
	snap := e.generator.Generate()

	agg, err := e.aggregator.Compute(snap)
	if err != nil {
		return nil, fmt.Errorf("aggregate pass: %w", err)
	}
	snap.System.TotalLoad = agg.TotalLoad
	snap.System.AvgPrice = agg.AvgPrice
	snap.System.RenewableShare = agg.RenewableShare
	snap.TotalGeneration = agg.TotalGeneration

	return &market.Bundle{
		Sequence:    seq,
		GeneratedAt: e.clock(),
		Snapshot:    *snap,
		Signals:     e.detector.Detect(snap),
		Alerts:      e.classifier.Classify(snap),
		Predictions: e.projector.Project(snap),
	}, nil
}
