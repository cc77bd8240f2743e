package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/roach88/crease/internal/ir"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// renderSnapshot draws a scorecard for the current innings with a one-line
// summary of every other innings.
func renderSnapshot(w io.Writer, snap *ir.Snapshot) {
	m := snap.Match
	fmt.Fprintf(w, "%s v %s  [%s]  %s\n", bold(m.Team1Name), bold(m.Team2Name), m.Status, m.Format)
	if result := resultLine(m); result != "" {
		fmt.Fprintln(w, green(result))
	}

	cur, hasCurrent := snap.CurrentInnings()
	for _, st := range snap.Stats {
		inn := inningsByID(snap, st.InningsID)
		fmt.Fprintf(w, "Innings %d  %s  %d/%d (%s ov)",
			st.Number, m.TeamName(inn.BattingTeamID), st.Runs, st.Wickets, st.Overs)
		if inn.CloseReason != ir.CloseNone {
			fmt.Fprintf(w, "  %s", faint(string(inn.CloseReason)))
		}
		fmt.Fprintln(w)
		if hasCurrent && inn.ID == cur.ID {
			renderCurrent(w, snap, st)
		}
	}
	if len(snap.Stats) == 0 {
		fmt.Fprintln(w, faint("No innings started"))
	}
}

func renderCurrent(w io.Writer, snap *ir.Snapshot, st ir.InningsStats) {
	fmt.Fprintf(w, "  CRR %.2f", st.CurrentRunRate)
	if st.Target != nil {
		fmt.Fprintf(w, "  target %d, need %d from %d", *st.Target, *st.RunsNeeded, st.BallsRemaining)
		if st.RequiredRunRate != nil {
			fmt.Fprintf(w, "  RRR %.2f", *st.RequiredRunRate)
		}
	}
	fmt.Fprintln(w)

	live := snap.Current
	for _, b := range st.Batting {
		if b.Out {
			continue
		}
		marker := " "
		switch b.PlayerID {
		case live.StrikerID:
			marker = "*"
		case live.NonStrikerID:
		default:
			continue
		}
		fmt.Fprintf(w, "  %s %-16s %d (%d)\n", marker, snap.PlayerName(b.PlayerID), b.Runs, b.Balls)
	}
	for _, b := range st.Bowling {
		if b.PlayerID != live.BowlerID {
			continue
		}
		fmt.Fprintf(w, "    %-16s %s-%d-%d\n", snap.PlayerName(b.PlayerID), b.Overs, b.RunsConceded, b.Wickets)
	}

	var vacant []string
	for _, r := range []struct {
		role ir.Role
		id   string
	}{
		{ir.RoleStriker, live.StrikerID},
		{ir.RoleNonStriker, live.NonStrikerID},
		{ir.RoleBowler, live.BowlerID},
	} {
		if r.id == "" {
			vacant = append(vacant, string(r.role))
		}
	}
	if len(vacant) > 0 {
		fmt.Fprintf(w, "  %s %s\n", red("needs"), strings.Join(vacant, ", "))
	}

	fmt.Fprintf(w, "  Partnership %d (%d)  Extras %d\n", live.Partnership.Runs, live.Partnership.Balls, st.Extras.Total)
	if len(live.RecentBalls) > 0 {
		balls := make([]string, len(live.RecentBalls))
		for i, d := range live.RecentBalls {
			balls[i] = ballSymbol(d)
		}
		fmt.Fprintf(w, "  Recent %s\n", strings.Join(balls, " "))
	}
	fmt.Fprintf(w, "  Next %d.%d\n", live.NextOver, live.NextBall)
}

// ballSymbol is the scorebook shorthand for one delivery.
func ballSymbol(d ir.Delivery) string {
	var s string
	switch d.Extra {
	case ir.ExtraWide:
		s = fmt.Sprintf("%dwd", d.TotalRuns())
	case ir.ExtraNoBall:
		s = fmt.Sprintf("%dnb", d.TotalRuns())
	case ir.ExtraBye:
		s = fmt.Sprintf("%db", d.RunsOffBat)
	case ir.ExtraLegBye:
		s = fmt.Sprintf("%dlb", d.RunsOffBat)
	default:
		s = fmt.Sprint(d.RunsOffBat)
	}
	if d.Wicket.Fell() {
		s += "W"
	}
	return s
}

func resultLine(m ir.Match) string {
	switch m.Outcome {
	case ir.OutcomeWin:
		return m.TeamName(m.WinnerTeamID) + " won"
	case ir.OutcomeTie:
		return "Match tied"
	case ir.OutcomeNoResult:
		return "No result"
	}
	return ""
}

func inningsByID(snap *ir.Snapshot, id string) ir.Innings {
	for _, inn := range snap.Innings {
		if inn.ID == id {
			return inn
		}
	}
	return ir.Innings{}
}

func renderTeam(w io.Writer, t ir.Team) {
	names := make([]string, len(t.Players))
	for i, p := range t.Players {
		names[i] = p.Name
	}
	fmt.Fprintf(w, "%s  %s  %s\n", bold(t.Name), faint(t.ID), strings.Join(names, ", "))
}

func renderMatch(w io.Writer, m ir.Match) {
	fmt.Fprintf(w, "%s  %s v %s  [%s]  %s\n", faint(m.ID), m.Team1Name, m.Team2Name, m.Status, m.Format)
}
