package output

import (
	"strings"
	"testing"

	"github.com/farcloser/cambium"
	"github.com/farcloser/cambium/internal/targets"
	"github.com/farcloser/cambium/internal/types"
)

func TestAbsentMetricsRenderAsNotAvailable(t *testing.T) {
	metrics := &types.MetricsResult{
		Loudness: &types.LoudnessResult{},
		BPM:      &types.BPMResult{},
	}

	meta := MetricsToMap(metrics)

	if meta["stereo"] != NotAvailable || meta["spectral"] != NotAvailable {
		t.Errorf("absent families must be %q: %v", NotAvailable, meta)
	}

	loudness, ok := meta["loudness"].(map[string]any)
	if !ok || loudness["integrated_lufs"] != NotAvailable || loudness["loudness_range"] != NotAvailable {
		t.Errorf("absent loudness values must be %q, got %v", NotAvailable, meta["loudness"])
	}

	bpm, ok := meta["bpm"].(map[string]any)
	if !ok || bpm["value"] != NotAvailable {
		t.Errorf("absent tempo must be %q, got %v", NotAvailable, meta["bpm"])
	}

	props := properties(metrics)
	if props["loudness"] != "n/a LUFS (range: n/a LU)" || props["tempo"] != NotAvailable {
		t.Errorf("properties = %v", props)
	}
}

func TestResultToMap(t *testing.T) {
	lufs := -20.0
	metrics := &types.MetricsResult{
		Loudness: &types.LoudnessResult{Integrated: &lufs},
		TruePeak: &types.TruePeakResult{MaxDbtp: -1.5},
	}

	result := cambium.Judge(metrics, targets.DefaultProfile(targets.ModeStreaming))
	meta := ResultToMap(result)

	summary, ok := meta["summary"].(map[string]any)
	if !ok || summary["genre"] != targets.DefaultGenre || summary["critical"] != 1 || summary["consistent"] != true {
		t.Errorf("summary = %v", meta["summary"])
	}

	rows, ok := meta["table"].([]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("table = %v", meta["table"])
	}

	suggestions, ok := meta["suggestions"].([]any)
	if !ok || len(suggestions) != 1 {
		t.Fatalf("suggestions = %v", meta["suggestions"])
	}

	suggestion, ok := suggestions[0].(map[string]any)
	if !ok || suggestion["metric"] != "lufs" || suggestion["direction"] != types.DirectionIncrease {
		t.Errorf("suggestion = %v", suggestions[0])
	}

	friendly := FriendlyMap(result)
	if summaryLine, ok := friendly["summary"].(string); !ok || !strings.Contains(summaryLine, "1 critical") {
		t.Errorf("friendly summary = %v", friendly["summary"])
	}

	if _, ok := friendly["diagnostics"]; ok {
		t.Error("a consistent result has no diagnostics section")
	}
}
