package draw

// #region observation
// Observation is a single draw: its identifier and the drawn sum.
type Observation struct {
	Qihao int64 `json:"qihao"`
	Sum   int   `json:"sum"`
}

// #endregion observation

// #region category
// Category is the coarse four-way label of a sum.
type Category string

const (
	SmallOdd  Category = "small_odd"
	SmallEven Category = "small_even"
	BigEven   Category = "big_even"
	BigOdd    Category = "big_odd"
	Unknown   Category = "unknown"
)

// Bounds of a valid sum.
const (
	MinSum = 0
	MaxSum = 27
)

// #endregion category
