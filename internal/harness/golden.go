package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/crease/internal/ir"
)

// MarshalTrace renders a trace as one canonical JSON object per line.
func MarshalTrace(trace []TraceEvent) ([]byte, error) {
	var buf bytes.Buffer
	for _, ev := range trace {
		line, err := ir.MarshalCanonical(ev.canonical())
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func (ev TraceEvent) canonical() map[string]any {
	m := map[string]any{
		"step":        int64(ev.Step),
		"op":          ev.Op,
		"result":      ev.Result,
		"score":       ev.Score,
		"overs":       ev.Overs,
		"striker":     ev.Striker,
		"non_striker": ev.NonStriker,
		"bowler":      ev.Bowler,
		"match":       ev.Match,
	}
	if ev.Input != "" {
		m["input"] = ev.Input
	}
	return m
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's trace against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	trace, err := MarshalTrace(result.Trace)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, trace)
	return nil
}
