package orchestrator

// #region imports
import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/ensemble"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/eval"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/feed"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/gate"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/logging"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/update"
	"github.com/google/uuid"
)

// #endregion

// #region controller-struct

// Deps are the collaborators of a Controller. Journal may be nil.
type Deps struct {
	Store    state.Store
	Source   feed.Source
	Combiner *ensemble.Combiner
	Journal  Journal
	Logger   *slog.Logger
}

// Controller runs the observe, score, predict, persist cycle. It is the only
// writer of the engine state; readers get copies through Snapshot.
type Controller struct {
	store    state.Store
	source   feed.Source
	combiner *ensemble.Combiner
	gate     *gate.Gate
	eval     *eval.EvalHarness
	journal  Journal
	log      *slog.Logger
	config   Config

	mu      sync.RWMutex
	current state.EngineState
	phase   Phase
}

// #endregion

// #region constructor

// New loads the persisted state and returns a ready controller. A missing or
// unreadable snapshot is not fatal: the controller starts from defaults.
func New(ctx context.Context, deps Deps, config Config) *Controller {
	if config.Clock == nil {
		config.Clock = DefaultConfig().Clock
	}
	if config.TrendWindow <= 0 {
		config.TrendWindow = state.TrendWindow
	}
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.With("component", "controller")

	current, err := deps.Store.Load(ctx)
	if err != nil {
		log.Warn("state load failed, starting from defaults", "err", err)
		current = state.Default()
	}

	phase := PhaseAwaitingFirstObservation
	if current.LastQihao != "" {
		phase = PhaseRunning
	}

	return &Controller{
		store:    deps.Store,
		source:   deps.Source,
		combiner: deps.Combiner,
		gate:     gate.NewGate(config.Gate),
		eval:     eval.NewEvalHarness(config.Eval),
		journal:  deps.Journal,
		log:      log,
		config:   config,
		current:  current,
		phase:    phase,
	}
}

// #endregion

// #region read-api

// Snapshot returns a deep copy of the current engine state.
func (c *Controller) Snapshot() state.EngineState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone()
}

// Phase returns the lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// #endregion

// #region run

// Run cycles immediately and then every Interval until ctx is cancelled.
// Cycle errors are logged and never stop the loop.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	c.log.Info("controller started", "interval", c.config.Interval, "phase", c.Phase())
	for {
		c.safeCycle(ctx)
		select {
		case <-ctx.Done():
			c.log.Info("controller stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Controller) safeCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("cycle panicked", "panic", r)
		}
	}()
	_, _ = c.RunCycle(ctx)
}

// RunCycle fetches one batch from the source and processes it. The source is
// called once; a failure leaves state untouched and the next tick tries again.
func (c *Controller) RunCycle(ctx context.Context) (CycleResult, error) {
	batch, err := c.source.Fetch(ctx)
	if err != nil {
		c.log.Warn("feed fetch failed", "err", err)
		c.logCycle(ctx, logging.CycleEntry{
			CycleID:  uuid.New().String(),
			Decision: logging.DecisionFailed,
			Reason:   err.Error(),
		})
		return CycleResult{Decision: logging.DecisionFailed}, fmt.Errorf("fetch: %w", err)
	}
	return c.Process(ctx, batch)
}

// #endregion

// #region process

// Process runs one cycle over a batch of recent draws (any order).
//
// When the newest draw differs from the last processed one and a prior
// prediction exists, that prediction is scored and the weights adapted. A new
// prediction is then computed from the full history and the whole state is
// written in one Save. Nothing is published to readers unless the save succeeds.
func (c *Controller) Process(ctx context.Context, batch []draw.Observation) (CycleResult, error) {
	batch = draw.Normalize(batch)
	cycleID := uuid.New().String()
	log := c.log.With("cycle_id", cycleID)

	next := c.Snapshot()

	decision := c.gate.Evaluate(batch)
	if decision.Vetoed {
		log.Warn("batch rejected", "reason", decision.Reason, "vetoes", len(decision.VetoSignals))
		c.logCycle(ctx, logging.CycleEntry{
			CycleID:  cycleID,
			Decision: logging.DecisionRejected,
			Reason:   decision.Reason,
		})
		return CycleResult{CycleID: cycleID, Decision: logging.DecisionRejected},
			fmt.Errorf("%w: %s", ErrRejected, decision.Reason)
	}

	latest, _ := draw.Latest(batch)
	qihao := draw.FormatQihao(latest.Qihao)
	sums := draw.Sums(batch)
	now := c.config.Clock()

	result := CycleResult{
		CycleID:  cycleID,
		Qihao:    qihao,
		Decision: logging.DecisionSkipped,
		Actual:   latest.Sum,
	}

	// 1. Score the previous prediction against the new draw.
	prevEstimates := next.AllPredictions
	if next.LastQihao != qihao && next.HasPrediction() {
		result.Scored = true
		result.Decision = logging.DecisionScored
		result.SumHit = containsInt(next.Predictions, latest.Sum)
		result.CatHit = containsCategory(recommendedCategories(next), draw.Classify(latest.Sum))

		next.Total++
		if result.SumHit {
			next.SumHits++
		}
		if result.CatHit {
			next.CatHits++
		}

		ur := update.Update(next.Weights, prevEstimates, latest.Sum, c.config.Update)
		next.Weights = ur.Weights
		result.Update = &ur
	}

	// 2. Predict the next draw.
	pred := c.combiner.Predict(sums, next.Weights)
	result.Prediction = pred

	// 3. Advance the snapshot.
	next.LastQihao = qihao
	next.LastSum = latest.Sum
	next.Predictions = []int{pred.Sums[0], pred.Sums[1]}
	next.RecCats = []draw.Category{pred.Categories[0], pred.Categories[1]}
	next.AllPredictions = pred.Estimates.Clone()
	next.Trend = tail(sums, c.config.TrendWindow)
	next.LastUpdate = now.Format(state.TimeLayout)

	// 4. Persist, then publish.
	if err := c.store.Save(ctx, next); err != nil {
		log.Error("state save failed", "err", err)
		c.logCycle(ctx, logging.CycleEntry{
			CycleID:  cycleID,
			Qihao:    qihao,
			Decision: logging.DecisionFailed,
			Reason:   err.Error(),
		})
		return CycleResult{CycleID: cycleID, Qihao: qihao, Decision: logging.DecisionFailed},
			fmt.Errorf("save state: %w", err)
	}

	c.mu.Lock()
	c.current = next
	c.phase = PhaseRunning
	c.mu.Unlock()

	if er := c.eval.Run(next); !er.Passed {
		log.Warn("state eval failed", "reason", er.Reason)
	}

	if result.Scored {
		log.Info("prediction scored",
			"qihao", qihao, "actual", latest.Sum,
			"sum_hit", result.SumHit, "cat_hit", result.CatHit,
			"update", result.Update.Decision.Action)
		if c.journal != nil {
			if err := c.journal.RecordOutcomes(ctx, cycleID, prevEstimates, latest.Sum, now); err != nil {
				log.Warn("journal outcomes failed", "err", err)
			}
		}
	}
	log.Info("prediction stored",
		"qihao", qihao, "sums", pred.Sums, "categories", pred.Categories)

	entry := logging.CycleEntry{
		CycleID:     cycleID,
		Qihao:       qihao,
		SumHit:      result.SumHit,
		CatHit:      result.CatHit,
		Decision:    result.Decision,
		WeightsJSON: weightsJSON(next.Weights),
		CreatedAt:   now.UTC(),
	}
	if result.Scored {
		actual := latest.Sum
		entry.Actual = &actual
		entry.Reason = result.Update.Decision.Reason
	}
	c.logCycle(ctx, entry)

	return result, nil
}

// #endregion

// #region helpers

func (c *Controller) logCycle(ctx context.Context, entry logging.CycleEntry) {
	if c.journal == nil {
		return
	}
	if err := c.journal.LogCycle(ctx, entry); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Warn("journal write failed", "err", err)
	}
}

// recommendedCategories returns the stored labels, or the labels of the
// stored sums when a snapshot predates rec_cats.
func recommendedCategories(s state.EngineState) []draw.Category {
	if len(s.RecCats) > 0 {
		return s.RecCats
	}
	cats := make([]draw.Category, len(s.Predictions))
	for i, p := range s.Predictions {
		cats[i] = draw.Classify(p)
	}
	return cats
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsCategory(xs []draw.Category, v draw.Category) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func tail(xs []int, n int) []int {
	if len(xs) > n {
		xs = xs[len(xs)-n:]
	}
	return append([]int{}, xs...)
}

func weightsJSON(w state.Weights) string {
	data, err := json.Marshal(w)
	if err != nil {
		return ""
	}
	return string(data)
}

// #endregion
