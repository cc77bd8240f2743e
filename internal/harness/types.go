package harness

import "github.com/roach88/crease/internal/ir"

// ResultOK marks a step that succeeded.
const ResultOK = "ok"

// TraceEvent is the state of the current innings after one operator action.
// Player fields hold roster names; an empty name is a vacant role.
type TraceEvent struct {
	Step       int    `json:"step"`
	Op         string `json:"op"`
	Input      string `json:"input,omitempty"`
	Result     string `json:"result"`
	Score      string `json:"score"`
	Overs      string `json:"overs"`
	Striker    string `json:"striker"`
	NonStriker string `json:"non_striker"`
	Bowler     string `json:"bowler"`
	Match      string `json:"match"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step behaved as expected and every assertion
	// held.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// Final is the match snapshot after the last step.
	Final *ir.Snapshot `json:"-"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Rejections counts trace events that failed with code.
func (r *Result) Rejections(code string) int {
	n := 0
	for _, ev := range r.Trace {
		if ev.Result == code {
			n++
		}
	}
	return n
}
