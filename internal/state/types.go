package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
	"github.com/danielpatrickdp/adaptive-ensemble/internal/estimator"
)

// TimeLayout is the format of EngineState.LastUpdate.
const TimeLayout = "2006-01-02 15:04:05"

// TrendWindow is the maximum number of recent sums kept in EngineState.Trend.
const TrendWindow = 30

// ErrCorrupt is returned by Load when a persisted snapshot cannot be decoded.
var ErrCorrupt = errors.New("corrupt engine state")

// #region weights
// Weights maps estimator name to its ensemble weight.
type Weights map[string]float64

// DefaultWeights returns weight 1.0 for every stock estimator.
func DefaultWeights() Weights {
	return Weights{
		estimator.NameLCG:      1.0,
		estimator.NameLagrange: 1.0,
		estimator.NameVMD:      1.0,
	}
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// #endregion weights

// #region engine-state
// EngineState is the whole persisted snapshot. It is always rewritten in full.
type EngineState struct {
	Total          int                 `json:"total"`
	SumHits        int                 `json:"sum_h"`
	CatHits        int                 `json:"cat_h"`
	Weights        Weights             `json:"weights"`
	LastQihao      string              `json:"last_qihao"` // "" until the first draw is processed
	LastSum        int                 `json:"last_sum"`
	Predictions    []int               `json:"predictions"`
	RecCats        []draw.Category     `json:"rec_cats"`
	AllPredictions estimator.Estimates `json:"all_predictions"`
	Trend          []int               `json:"trend"`
	LastUpdate     string              `json:"last_update"`
}

// Default returns the state used when nothing has been persisted yet.
func Default() EngineState {
	return EngineState{
		Weights:     DefaultWeights(),
		Predictions: []int{},
		Trend:       []int{},
	}
}

// HasPrediction reports whether a prior prediction is available for scoring.
func (s EngineState) HasPrediction() bool {
	return len(s.Predictions) > 0
}

// Clone returns a deep copy that shares no slices or maps with s.
func (s EngineState) Clone() EngineState {
	out := s
	out.Weights = s.Weights.Clone()
	out.AllPredictions = s.AllPredictions.Clone()
	if s.Predictions != nil {
		out.Predictions = append([]int{}, s.Predictions...)
	}
	if s.RecCats != nil {
		out.RecCats = append([]draw.Category{}, s.RecCats...)
	}
	if s.Trend != nil {
		out.Trend = append([]int{}, s.Trend...)
	}
	return out
}

// #endregion engine-state

// #region codec
// Marshal encodes a snapshot as JSON.
func Marshal(s EngineState) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal engine state: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a JSON snapshot. Missing weights fall back to defaults.
func Unmarshal(data []byte) (EngineState, error) {
	var s EngineState
	if err := json.Unmarshal(data, &s); err != nil {
		return EngineState{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s.Weights == nil {
		s.Weights = DefaultWeights()
	}
	return s, nil
}

// #endregion codec
