package gate

import (
	"fmt"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
)

// #region gate
// Gate decides whether a fetched batch may drive a cycle. A rejected batch
// leaves engine state untouched.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate runs every veto over an oldest-first batch. Draw ordering relative
// to earlier cycles is not checked: any newest identifier that differs from
// the last processed one is scored.
func (g *Gate) Evaluate(batch []draw.Observation) GateDecision {
	var vetoes []VetoSignal

	// 1. Batch size
	if len(batch) < g.config.MinBatchSize || len(batch) == 0 {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoEmptyBatch,
			Reason: fmt.Sprintf("batch has %d observations, need %d", len(batch), max(g.config.MinBatchSize, 1)),
		})
	}

	// 2. Per-observation checks
	seen := make(map[int64]struct{}, len(batch))
	for _, o := range batch {
		if !draw.InRange(o.Sum) {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoSumRange,
				Reason: fmt.Sprintf("draw %d has sum %d outside [%d, %d]", o.Qihao, o.Sum, draw.MinSum, draw.MaxSum),
			})
		}
		if o.Qihao <= 0 {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoBadQihao,
				Reason: fmt.Sprintf("non-positive draw identifier %d", o.Qihao),
			})
		}
		if _, dup := seen[o.Qihao]; dup {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoDuplicate,
				Reason: fmt.Sprintf("draw identifier %d appears twice", o.Qihao),
			})
		}
		seen[o.Qihao] = struct{}{}
	}

	if len(vetoes) > 0 {
		return GateDecision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}

	return GateDecision{
		Action: "accept",
		Reason: fmt.Sprintf("passed gate: %d observations", len(batch)),
	}
}

// #endregion gate
