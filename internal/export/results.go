package export

import (
	"fmt"

	"listforge/internal/pathplan"
	"listforge/internal/state"
)

// NodeResult pairs a plan node with its persisted write outcome.
type NodeResult struct {
	Node    pathplan.Node
	Result  state.WriteResult
	Skipped bool
}

// Summary aggregates a run's per-node outcomes.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// AllSucceeded reports whether every node in the plan now has a successful
// write, counting nodes skipped because an earlier run already wrote them.
func (s Summary) AllSucceeded() bool {
	return s.Total > 0 && s.Failed == 0 && s.Succeeded+s.Skipped == s.Total
}

func (s Summary) String() string {
	if s.Skipped > 0 {
		return fmt.Sprintf("%d/%d files written (%d already done, %d failed)",
			s.Succeeded, s.Total, s.Skipped, s.Failed)
	}
	return fmt.Sprintf("%d/%d files written (%d failed)", s.Succeeded, s.Total, s.Failed)
}

// Summarize folds node results into counts.
func Summarize(results []NodeResult) Summary {
	summary := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Skipped:
			summary.Skipped++
		case r.Result.Status == state.ResultSuccess:
			summary.Succeeded++
		default:
			summary.Failed++
		}
	}
	return summary
}
