package orchestrator

// #region imports
import (
	"context"
	"errors"
	"time"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/ensemble"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/estimator"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/eval"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/gate"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/logging"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/state"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/update"
)

// #endregion

// #region phase

// Phase is the controller lifecycle state. There is no terminal phase.
type Phase string

const (
	PhaseAwaitingFirstObservation Phase = "awaiting_first_observation"
	PhaseRunning                  Phase = "running"
)

// #endregion

// #region errors

// ErrRejected is returned when the gate vetoes a batch.
var ErrRejected = errors.New("batch rejected")

// #endregion

// #region config

// Config holds the cycle parameters.
type Config struct {
	Interval    time.Duration // pause between cycles
	TrendWindow int           // recent sums kept in the snapshot
	Update      update.UpdateConfig
	Gate        gate.GateConfig
	Eval        eval.EvalConfig
	Clock       func() time.Time
}

// DefaultConfig returns a 30s cycle with the stock rules.
func DefaultConfig() Config {
	return Config{
		Interval:    30 * time.Second,
		TrendWindow: state.TrendWindow,
		Update:      update.DefaultUpdateConfig(),
		Gate:        gate.DefaultGateConfig(),
		Eval:        eval.DefaultEvalConfig(),
		Clock:       time.Now,
	}
}

// #endregion

// #region cycle-result

// CycleResult describes what one cycle did.
type CycleResult struct {
	CycleID    string
	Qihao      string
	Decision   string // logging.Decision*
	Scored     bool
	Actual     int
	SumHit     bool
	CatHit     bool
	Prediction ensemble.Prediction
	Update     *update.UpdateResult // nil when nothing was scored
}

// #endregion

// #region interfaces

// Journal records cycle outcomes. *logging.Journal satisfies it.
type Journal interface {
	LogCycle(ctx context.Context, entry logging.CycleEntry) error
	RecordOutcomes(ctx context.Context, cycleID string, est estimator.Estimates, actual int, at time.Time) error
}

// #endregion
