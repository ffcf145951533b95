//nolint:tagliatelle
package main

// Record is a single line in the JSONL report file.
type Record struct {
	File     string         `json:"file,omitempty"`
	Analysis map[string]any `json:"analysis,omitempty"`
	Error    string         `json:"error,omitempty"`
	Timing   *RecordTiming  `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	DecodeMs  float64 `json:"decode_ms"`
	AnalyzeMs float64 `json:"analyze_ms"`
	TotalMs   float64 `json:"total_ms"`
}

type digestRecord struct {
	File     string          `json:"file,omitempty"`
	Analysis *digestAnalysis `json:"analysis,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type digestAnalysis struct {
	Summary     digestSummary      `json:"summary"`
	Table       []digestRow        `json:"table"`
	Suggestions []digestSuggestion `json:"suggestions"`
}

type digestSummary struct {
	Genre          string  `json:"genre"`
	Score          float64 `json:"score"`
	Classification string  `json:"classification"`
	Critical       int     `json:"critical"`
	Attention      int     `json:"attention"`
	Consistent     bool    `json:"consistent"`
}

type digestRow struct {
	Key      string  `json:"key"`
	Value    float64 `json:"value"`
	Target   float64 `json:"target"`
	Diff     float64 `json:"diff"`
	Severity string  `json:"severity"`
}

type digestSuggestion struct {
	Metric  string `json:"metric"`
	Message string `json:"message"`
}

// keyBreakdown tracks per-key severity counts for the digest.
type keyBreakdown struct {
	Key       string
	Attention int
	Critical  int
	Diffs     float64
}
