package draw

import (
	"sort"
	"strconv"
)

// #region classify
// Classify maps a sum to its category. Sums outside [MinSum, MaxSum] are Unknown.
func Classify(sum int) Category {
	if sum < MinSum || sum > MaxSum {
		return Unknown
	}
	small := sum <= 13
	odd := sum%2 == 1
	switch {
	case small && odd:
		return SmallOdd
	case small:
		return SmallEven
	case odd:
		return BigOdd
	default:
		return BigEven
	}
}

// InRange reports whether sum is a valid draw sum.
func InRange(sum int) bool {
	return sum >= MinSum && sum <= MaxSum
}

// #endregion classify

// #region normalize
// Normalize returns a copy of batch ordered oldest-first by draw identifier.
// The feed may deliver either ordering.
func Normalize(batch []Observation) []Observation {
	out := make([]Observation, len(batch))
	copy(out, batch)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Qihao < out[j].Qihao })
	return out
}

// Sums extracts the sum sequence of an oldest-first batch.
func Sums(batch []Observation) []int {
	sums := make([]int, len(batch))
	for i, o := range batch {
		sums[i] = o.Sum
	}
	return sums
}

// Latest returns the newest observation of an oldest-first batch.
func Latest(batch []Observation) (Observation, bool) {
	if len(batch) == 0 {
		return Observation{}, false
	}
	return batch[len(batch)-1], true
}

// FormatQihao renders a draw identifier the way it is persisted.
func FormatQihao(q int64) string {
	return strconv.FormatInt(q, 10)
}

// #endregion normalize
