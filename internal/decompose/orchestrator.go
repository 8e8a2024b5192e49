package decompose

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slicekit/slicer/internal/errors"
	"github.com/slicekit/slicer/internal/extract"
	"github.com/slicekit/slicer/internal/generator"
	"github.com/slicekit/slicer/internal/invest"
	"github.com/slicekit/slicer/internal/logging"
	"github.com/slicekit/slicer/internal/prd"
)

// Orchestrator owns the consistency-sampling loop against the external
// draft generator. It is the only component that talks to the generator.
type Orchestrator struct {
	cfg EngineConfig
	gen generator.Generator
	log *logging.Logger
}

// NewOrchestrator wires an orchestrator.
func NewOrchestrator(cfg EngineConfig, gen generator.Generator, log *logging.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, gen: gen, log: log.WithComponent("orchestrator")}
}

// Outcome is the chosen candidate plus the agreement evidence behind it.
type Outcome struct {
	// Draft is the best-scoring candidate decomposition.
	Draft *generator.Draft

	// Consistency is the cross-sample agreement of the round that
	// produced Draft. Low values propagate into the confidence score.
	Consistency float64
}

type sampleResult struct {
	draft *generator.Draft
	err   error
}

// Run executes the sampling loop for one item: fan out Samples parallel
// generator calls, join, compare, regenerate once with divergence
// guidance if agreement is poor, and enforce unit-count bounds. Returns
// the best candidate or a fatal error.
func (o *Orchestrator) Run(ctx context.Context, item prd.RoadmapItem, strategy *SlicingStrategy) (*Outcome, error) {
	req := generator.Request{
		Item:           item,
		Strategy:       strategy.Strategy,
		StrategyPrompt: strategy.Prompt,
	}

	drafts, err := o.sampleBatch(ctx, req)
	if err != nil {
		return nil, err
	}
	consistency := Consistency(drafts)
	o.log.Debug("initial round complete", "samples", len(drafts), "consistency", consistency)

	// One guided regeneration when the samples disagree. If the retry
	// round fails or agrees even less, keep the original round; low
	// consistency is a penalty, not a failure.
	if consistency < o.cfg.ConsistencyThreshold {
		req.Guidance = DivergenceSummary(drafts)
		o.log.Info("consistency below threshold, regenerating",
			"consistency", consistency, "threshold", o.cfg.ConsistencyThreshold)

		if redo, rerr := o.sampleBatch(ctx, req); rerr == nil {
			if rc := Consistency(redo); rc > consistency {
				drafts, consistency = redo, rc
			}
		}
		req.Guidance = ""
	}

	best := o.bestCandidate(drafts)

	// Unit-count bounds: one corrective regeneration, then fatal.
	min, max := o.cfg.boundsFor(item.Constraints.MinUnits, item.Constraints.MaxUnits)
	for attempt := 0; len(best.Units) < min || len(best.Units) > max; attempt++ {
		if attempt >= 1 {
			return nil, errors.Wrapf(errors.ErrUnitCountOutOfBounds,
				"draft has %d units, want between %d and %d", len(best.Units), min, max)
		}
		req.Guidance = fmt.Sprintf(
			"The previous attempt produced %d units; produce between %d and %d units.",
			len(best.Units), min, max)
		o.log.Info("unit count out of bounds, regenerating",
			"units", len(best.Units), "min", min, "max", max)

		redo, rerr := o.sampleBatch(ctx, req)
		if rerr != nil {
			return nil, rerr
		}
		drafts = redo
		consistency = Consistency(drafts)
		best = o.bestCandidate(drafts)
	}

	return &Outcome{Draft: best, Consistency: consistency}, nil
}

// sampleBatch fans out Samples parallel calls and joins them behind a
// barrier. A batch succeeds once MinSamples samples return; otherwise the
// whole batch retries with exponential backoff up to the retry budget.
func (o *Orchestrator) sampleBatch(ctx context.Context, req generator.Request) ([]*generator.Draft, error) {
	var lastErrs []error

	for attempt := 0; attempt < o.cfg.RetryBudget; attempt++ {
		if attempt > 0 {
			if err := o.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		results := o.collect(ctx, req)

		var drafts []*generator.Draft
		lastErrs = lastErrs[:0]
		for _, r := range results {
			if r.err != nil {
				lastErrs = append(lastErrs, r.err)
				continue
			}
			drafts = append(drafts, r.draft)
		}

		if len(drafts) >= o.cfg.MinSamples {
			return drafts, nil
		}
		o.log.Warn("batch below partial-success floor",
			"attempt", attempt+1, "succeeded", len(drafts), "needed", o.cfg.MinSamples)
	}

	// Every sample of every attempt failing on parse is a generator
	// formatting problem, not reachability.
	if len(lastErrs) > 0 && allParseErrors(lastErrs) {
		return nil, errors.NewGeneratorError("generator kept returning unparsable drafts", errors.ErrInvalidDraftFormat).
			WithAttempts(o.cfg.RetryBudget)
	}
	return nil, errors.NewGeneratorError("generator unreachable", errors.ErrGeneratorUnavailable).
		WithAttempts(o.cfg.RetryBudget)
}

// collect runs one parallel round. All calls complete or time out before
// it returns; a timed-out sample is a failed sample, never a block.
func (o *Orchestrator) collect(ctx context.Context, req generator.Request) []sampleResult {
	results := make([]sampleResult, o.cfg.Samples)

	var wg sync.WaitGroup
	for i := 0; i < o.cfg.Samples; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, o.cfg.CallTimeout)
			defer cancel()

			draft, err := o.gen.Generate(callCtx, req)
			results[i] = sampleResult{draft: draft, err: err}
		}(i)
	}
	wg.Wait()

	return results
}

func (o *Orchestrator) backoff(ctx context.Context, attempt int) error {
	delay := o.cfg.RetryBackoff << (attempt - 1)
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// bestCandidate picks the draft with the highest average INVEST
// composite. Ties keep the earlier draft, so selection is deterministic.
func (o *Orchestrator) bestCandidate(drafts []*generator.Draft) *generator.Draft {
	best := drafts[0]
	bestScore := o.draftScore(best)
	for _, d := range drafts[1:] {
		if s := o.draftScore(d); s > bestScore {
			best, bestScore = d, s
		}
	}
	return best
}

func (o *Orchestrator) draftScore(d *generator.Draft) float64 {
	if len(d.Units) == 0 {
		return 0
	}
	sum := 0.0
	for i := range d.Units {
		u := d.Units[i]
		f := extract.Scan(u.Text())
		sum += invest.Score(&u, f, o.cfg.Weights).Composite
	}
	return sum / float64(len(d.Units))
}

func allParseErrors(errs []error) bool {
	for _, err := range errs {
		if !errors.Is(err, errors.ErrInvalidDraftFormat) && !errors.Is(err, errors.ErrEmptyDraft) {
			return false
		}
	}
	return true
}
