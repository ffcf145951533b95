package types

// Directions.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// Bounds is the acceptable range copied from a comparison row.
type Bounds struct {
	Min float64
	Max float64
}

// GainPlan describes how a metric correction should be applied.
// Mode is "micro" (below the useful step), "direct" (one move) or "staged" (clamped, several passes).
type GainPlan struct {
	Mode       string
	Step       float64
	Steps      int
	TotalDelta float64
}

// Suggestion is one actionable correction for a non-OK row.
type Suggestion struct {
	Metric    string // same key as ComparisonRow.Key
	Type      string
	Label     string
	Measured  float64
	Target    float64
	Bounds    Bounds
	Diff      float64
	RawDelta  float64 // correction towards the target, before clamping
	Delta     float64 // correction surfaced to the user
	Direction string
	Severity  Severity
	Priority  string
	Message   string
	Action    string
	Gain      *GainPlan
}
