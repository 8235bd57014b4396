package gate

// #region veto-type
// VetoType enumerates hard veto categories for an observation batch.
type VetoType string

const (
	VetoEmptyBatch VetoType = "empty_batch"
	VetoSumRange   VetoType = "sum_out_of_range"
	VetoBadQihao   VetoType = "bad_qihao"
	VetoDuplicate  VetoType = "duplicate_qihao"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds the batch acceptance rules.
type GateConfig struct {
	MinBatchSize int // fewer observations than this is a veto
}

// DefaultGateConfig returns the stock rules.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinBatchSize: 1,
	}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string // "accept" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
}

// #endregion gate-decision
