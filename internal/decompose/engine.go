package decompose

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/slicekit/slicer/internal/antipattern"
	"github.com/slicekit/slicer/internal/depgraph"
	"github.com/slicekit/slicer/internal/errors"
	"github.com/slicekit/slicer/internal/extract"
	"github.com/slicekit/slicer/internal/generator"
	"github.com/slicekit/slicer/internal/invest"
	"github.com/slicekit/slicer/internal/logging"
	"github.com/slicekit/slicer/internal/prd"
)

// Engine runs the full decomposition pipeline for one roadmap item at a
// time. It holds no state across runs; the generator connection is scoped
// per call.
type Engine struct {
	cfg  EngineConfig
	orch *Orchestrator
	log  *logging.Logger
}

// NewEngine validates the configuration and wires the pipeline.
func NewEngine(cfg EngineConfig, gen generator.Generator, log *logging.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:  cfg,
		orch: NewOrchestrator(cfg, gen, log),
		log:  log.WithComponent("engine"),
	}, nil
}

// Decompose produces the validated decomposition for one roadmap item.
//
// The pipeline is one-way: strategy selection, consistency-sampled draft
// generation, per-unit INVEST scoring, graph construction, cycle
// validation and repair, anti-pattern scanning, and confidence
// aggregation. Non-fatal findings are carried in the result rather than
// aborting the run; hard failures are reserved for cases where no
// structurally valid result exists.
func (e *Engine) Decompose(ctx context.Context, item prd.RoadmapItem) (*prd.DecompositionResult, error) {
	return e.run(ctx, item, nil)
}

// DecomposeWithStrategy bypasses automatic strategy selection and runs
// the pipeline with the given strategy.
func (e *Engine) DecomposeWithStrategy(ctx context.Context, item prd.RoadmapItem, strategy *SlicingStrategy) (*prd.DecompositionResult, error) {
	if strategy == nil {
		return nil, errors.NewValidationError("strategy must not be nil").WithField("strategy")
	}
	return e.run(ctx, item, strategy)
}

func (e *Engine) run(ctx context.Context, item prd.RoadmapItem, strategy *SlicingStrategy) (*prd.DecompositionResult, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := e.log.WithRun(runID)

	if strategy == nil {
		strategy = SelectStrategy(item)
	}
	log.Info("strategy selected", "item", item.ID, "strategy", strategy.Strategy)

	outcome, err := e.orch.Run(ctx, item, strategy)
	if err != nil {
		return nil, err
	}
	units := outcome.Draft.Units

	// Feature extraction and INVEST scoring. Scores attach to the units;
	// a badly scoring unit is flagged, never removed.
	features := make(map[string]extract.Features, len(units))
	for i := range units {
		u := &units[i]
		features[u.ID] = extract.Scan(u.Text())
		u.Score = invest.Score(u, features[u.ID], e.cfg.Weights)
	}

	graph, builderWarnings := depgraph.Build(units, features, e.cfg.ImplicitConfidenceFloor)
	for _, w := range builderWarnings {
		log.Warn("graph builder warning", "message", w.Message, "unit", w.UnitID)
	}

	if err := depgraph.Resolve(graph); err != nil {
		log.Error("dependency graph unresolvable", "error", err)
		return nil, err
	}
	builderWarnings = append(builderWarnings, depgraph.Audit(graph, e.cfg.MaxDepth)...)

	warnings := antipattern.Detect(units, features, graph)

	result := &prd.DecompositionResult{
		ID:              runID,
		ItemID:          item.ID,
		Strategy:        strategy.Strategy,
		Units:           units,
		Graph:           graph,
		AntiPatterns:    warnings,
		BuilderWarnings: builderWarnings,
		Consistency:     outcome.Consistency,
		GeneratedAt:     time.Now().UTC(),
	}
	result.Confidence = Confidence(
		outcome.Consistency,
		result.AverageComposite(),
		graph.State == prd.GraphValid,
		result.HighSeverityCount(),
		result.MediumSeverityCount(),
	)
	result.RequiresReview = result.Confidence < e.cfg.ConfidenceThreshold

	log.Info("decomposition complete",
		"units", len(units),
		"consistency", result.Consistency,
		"confidence", result.Confidence,
		"antipatterns", len(warnings),
		"requires_review", result.RequiresReview)

	return result, nil
}

func validateItem(item prd.RoadmapItem) error {
	if item.ID == "" {
		return errors.NewValidationError("roadmap item needs an id").WithField("id")
	}
	if item.Title == "" && item.Description == "" {
		return errors.NewValidationError("roadmap item needs a title or description").
			WithField("description")
	}
	if item.Type != "" && !item.Type.IsValid() {
		return errors.NewValidationError("unknown item type").
			WithField("type").WithValue(string(item.Type))
	}
	return nil
}
