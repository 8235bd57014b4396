package logging

import "time"

// #region decisions
// Cycle decisions recorded in the journal.
const (
	DecisionScored   = "scored"   // previous prediction scored, new prediction stored
	DecisionSkipped  = "skipped"  // nothing to score, new prediction stored
	DecisionRejected = "rejected" // batch vetoed by the gate, state untouched
	DecisionFailed   = "failed"   // feed or persistence error
)

// #endregion decisions

// #region cycle-entry
// CycleEntry is a single row in the cycle_log table.
type CycleEntry struct {
	CycleID     string
	Qihao       string
	Actual      *int // nil when no draw was scored
	SumHit      bool
	CatHit      bool
	Decision    string
	Reason      string
	WeightsJSON string
	CreatedAt   time.Time
}

// #endregion cycle-entry

// #region estimator-stat
// EstimatorStat summarises how often one estimator hit the actual sum.
type EstimatorStat struct {
	Name         string
	Samples      int
	Hits         int
	HitRate      float64 // Hits / Samples
	WeightedRate float64 // recency-weighted hit rate
}

// #endregion estimator-stat
