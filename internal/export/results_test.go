package export

import (
	"testing"

	"listforge/internal/state"
)

func TestSummarize(t *testing.T) {
	results := []NodeResult{
		{Result: state.WriteResult{Status: state.ResultSuccess}},
		{Result: state.WriteResult{Status: state.ResultFailed}},
		{Result: state.WriteResult{Status: state.ResultSuccess}, Skipped: true},
	}
	summary := Summarize(results)
	if summary.Total != 3 || summary.Succeeded != 1 || summary.Failed != 1 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.AllSucceeded() {
		t.Fatal("a failed node must not count as full success")
	}
	if got := summary.String(); got != "1/3 files written (1 already done, 1 failed)" {
		t.Fatalf("unexpected summary string %q", got)
	}
}

func TestSummaryAllSucceeded(t *testing.T) {
	if (Summary{}).AllSucceeded() {
		t.Fatal("an empty plan is not a success")
	}
	done := Summary{Total: 2, Succeeded: 1, Skipped: 1}
	if !done.AllSucceeded() {
		t.Fatalf("expected success for %+v", done)
	}
	if got := done.String(); got != "1/2 files written (1 already done, 0 failed)" {
		t.Fatalf("unexpected summary string %q", got)
	}
}
