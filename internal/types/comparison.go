package types

// Severity is the tri-level verdict for one comparison row.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityAttention
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeverityAttention:
		return "ATTENTION"
	case SeverityCritical:
		return "CRITICAL"
	}

	return "UNKNOWN"
}

// Level returns the internal tri-level name the severity maps from.
func (s Severity) Level() string {
	switch s {
	case SeverityOK:
		return "ideal"
	case SeverityAttention:
		return "ajustar"
	case SeverityCritical:
		return "corrigir"
	}

	return "unknown"
}

// Class returns the presentation class for the severity.
func (s Severity) Class() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityAttention:
		return "attention"
	case SeverityCritical:
		return "critical"
	}

	return "unknown"
}

// Row types.
const (
	RowMetric = "metric"
	RowBand   = "band"
)

// ComparisonRow is one metric or band compared against its target. Rows are never mutated after creation.
type ComparisonRow struct {
	Key        string
	Type       string
	Label      string
	Unit       string
	Category   string
	Value      float64
	Target     float64
	Min        float64
	Max        float64
	Tolerance  float64
	Diff       float64 // Value - Target
	Severity   Severity
	Reason     string
	Action     string
	ValueText  string
	TargetText string
}

// SeverityCounts tallies rows per severity.
type SeverityCounts struct {
	OK        int
	Attention int
	Critical  int
}

// ComparisonTable is the single source of truth for whether a metric is acceptable.
type ComparisonTable struct {
	Rows           []ComparisonRow
	Score          float64 // 0..100
	Classification string
	Counts         SeverityCounts
}

// Row returns the row for a canonical key.
func (t *ComparisonTable) Row(key string) (ComparisonRow, bool) {
	for _, row := range t.Rows {
		if row.Key == key {
			return row, true
		}
	}

	return ComparisonRow{}, false
}
