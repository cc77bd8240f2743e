package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
)

// Team keys used by scenarios.
const (
	Home = "home"
	Away = "away"
)

// Scenario is one scripted match.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Format names the match format. Default: t20.
	Format string `yaml:"format,omitempty"`

	// Formats is optional CUE source added to the built-in formats.
	Formats string `yaml:"formats,omitempty"`

	// ConsecutiveOver is "enforce" (default) or "advisory".
	ConsecutiveOver string `yaml:"consecutive_over,omitempty"`

	Teams      Teams       `yaml:"teams"`
	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Teams are the two rosters, by player name.
type Teams struct {
	Home []string `yaml:"home"`
	Away []string `yaml:"away"`
}

// Step is one operator action. Exactly one action field is set.
type Step struct {
	Start   *StartStep  `yaml:"start,omitempty"`
	Assign  *AssignStep `yaml:"assign,omitempty"`
	Ball    *BallStep   `yaml:"ball,omitempty"`
	Dots    int         `yaml:"dots,omitempty"`
	Undo    bool        `yaml:"undo,omitempty"`
	End     string      `yaml:"end,omitempty"`
	Abandon bool        `yaml:"abandon,omitempty"`

	// Expect is the scoring error code the step must fail with. Empty means
	// the step must succeed.
	Expect string `yaml:"expect,omitempty"`
}

type StartStep struct {
	Innings int    `yaml:"innings"`
	Batting string `yaml:"batting"`
}

// AssignStep fills any of the three roles, in the order striker,
// non_striker, bowler.
type AssignStep struct {
	Striker    string `yaml:"striker,omitempty"`
	NonStriker string `yaml:"non_striker,omitempty"`
	Bowler     string `yaml:"bowler,omitempty"`
}

// BallStep is one delivery. Over and Ball default to the next position.
type BallStep struct {
	Over   *int   `yaml:"over,omitempty"`
	Ball   *int   `yaml:"ball,omitempty"`
	Runs   int    `yaml:"runs,omitempty"`
	Extra  string `yaml:"extra,omitempty"`
	Wicket string `yaml:"wicket,omitempty"`
	Out    string `yaml:"out,omitempty"`
}

// Assertion checks the final state.
type Assertion struct {
	Type    string         `yaml:"type"`
	Innings int            `yaml:"innings,omitempty"`
	Player  string         `yaml:"player,omitempty"`
	Code    string         `yaml:"code,omitempty"`
	Count   int            `yaml:"count,omitempty"`
	Expect  map[string]any `yaml:"expect,omitempty"`
}

// Assertion types.
const (
	AssertInnings    = "innings"
	AssertMatch      = "match"
	AssertRoles      = "roles"
	AssertBatter     = "batter"
	AssertBowler     = "bowler"
	AssertRejections = "rejections"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Teams.Home) == 0 || len(s.Teams.Away) == 0 {
		return fmt.Errorf("teams.home and teams.away are required")
	}
	seen := make(map[string]bool)
	for _, name := range append(append([]string{}, s.Teams.Home...), s.Teams.Away...) {
		if seen[name] {
			return fmt.Errorf("player name %q is used twice", name)
		}
		seen[name] = true
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if _, err := engine.ParseOverRule(s.ConsecutiveOver); err != nil {
		return fmt.Errorf("consecutive_over: %w", err)
	}

	for i, step := range s.Steps {
		if err := validateStep(step, seen); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a, seen); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step, players map[string]bool) error {
	actions := 0
	for _, set := range []bool{
		step.Start != nil, step.Assign != nil, step.Ball != nil,
		step.Dots > 0, step.Undo, step.End != "", step.Abandon,
	} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return fmt.Errorf("exactly one action is required, found %d", actions)
	}

	switch {
	case step.Start != nil:
		if step.Start.Batting != Home && step.Start.Batting != Away {
			return fmt.Errorf("start.batting must be %q or %q", Home, Away)
		}
	case step.Assign != nil:
		a := step.Assign
		if a.Striker == "" && a.NonStriker == "" && a.Bowler == "" {
			return fmt.Errorf("assign needs at least one role")
		}
		for _, name := range []string{a.Striker, a.NonStriker, a.Bowler} {
			if name != "" && !players[name] {
				return fmt.Errorf("unknown player %q", name)
			}
		}
	case step.Ball != nil:
		if step.Ball.Extra != "" {
			if _, err := ir.ParseExtraType(step.Ball.Extra); err != nil {
				return err
			}
		}
		if step.Ball.Wicket != "" {
			if _, err := ir.ParseWicketType(step.Ball.Wicket); err != nil {
				return err
			}
		}
		if step.Ball.Out != "" && !players[step.Ball.Out] {
			return fmt.Errorf("unknown player %q", step.Ball.Out)
		}
	case step.End != "":
		if !ir.CloseReason(step.End).Manual() {
			return fmt.Errorf("end must be declared or abandoned, got %q", step.End)
		}
	}
	if step.Expect != "" && step.Expect != strings.ToUpper(step.Expect) {
		return fmt.Errorf("expect must be an error code such as EMPTY_LEDGER, got %q", step.Expect)
	}
	return nil
}

func validateAssertion(a Assertion, players map[string]bool) error {
	switch a.Type {
	case AssertInnings:
		if a.Innings < 1 || a.Innings > ir.InningsPerMatch {
			return fmt.Errorf("innings must be 1 or 2 for %s", a.Type)
		}
	case AssertMatch, AssertRoles:
	case AssertBatter, AssertBowler:
		if a.Innings < 1 || a.Innings > ir.InningsPerMatch {
			return fmt.Errorf("innings must be 1 or 2 for %s", a.Type)
		}
		if !players[a.Player] {
			return fmt.Errorf("unknown player %q", a.Player)
		}
	case AssertRejections:
		if a.Code == "" {
			return fmt.Errorf("code is required for rejections")
		}
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative")
		}
		return nil
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	if len(a.Expect) == 0 {
		return fmt.Errorf("expect is required for %s", a.Type)
	}
	return nil
}
