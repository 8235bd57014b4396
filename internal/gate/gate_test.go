package gate

import (
	"testing"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
)

func batch(pairs ...int) []draw.Observation {
	out := make([]draw.Observation, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, draw.Observation{Qihao: int64(pairs[i]), Sum: pairs[i+1]})
	}
	return out
}

func hasVeto(d GateDecision, vt VetoType) bool {
	for _, v := range d.VetoSignals {
		if v.Type == vt {
			return true
		}
	}
	return false
}

func TestGateAccept(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	d := g.Evaluate(batch(100, 3, 101, 5, 102, 27))
	if d.Action != "accept" || d.Vetoed {
		t.Fatalf("expected accept, got %+v", d)
	}
}

func TestGateEmptyBatch(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	d := g.Evaluate(nil)
	if d.Action != "reject" || !hasVeto(d, VetoEmptyBatch) {
		t.Fatalf("expected empty batch veto, got %+v", d)
	}
}

func TestGateMinBatchSize(t *testing.T) {
	g := NewGate(GateConfig{MinBatchSize: 3})
	d := g.Evaluate(batch(1, 2, 2, 3))
	if !hasVeto(d, VetoEmptyBatch) {
		t.Fatalf("expected batch size veto, got %+v", d)
	}
}

func TestGateSumOutOfRange(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	d := g.Evaluate(batch(100, 28, 101, -1))
	if !hasVeto(d, VetoSumRange) {
		t.Fatalf("expected sum range veto, got %+v", d)
	}
	if len(d.VetoSignals) != 2 {
		t.Fatalf("expected 2 vetoes, got %d", len(d.VetoSignals))
	}
}

func TestGateBadAndDuplicateQihao(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	d := g.Evaluate(batch(0, 4, 7, 5, 7, 6))
	if !hasVeto(d, VetoBadQihao) || !hasVeto(d, VetoDuplicate) {
		t.Fatalf("expected bad and duplicate qihao vetoes, got %+v", d)
	}
}

func TestGateAcceptsOutOfOrderFeed(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	// A feed that restarts numbering below earlier cycles is still valid input.
	if d := g.Evaluate(batch(1, 3, 2, 13)); d.Vetoed {
		t.Fatalf("expected accept for low identifiers, got %+v", d)
	}
}
