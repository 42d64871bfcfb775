package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"LanderRescue/internal/game"
	"LanderRescue/internal/replay"
)

func stateLabel(s game.SuccessState) string {
	switch s {
	case game.SuccessStateSuccess:
		return color.New(color.FgGreen, color.Bold).Sprint("SUCCESS")
	case game.SuccessStatePartial:
		return color.New(color.FgYellow, color.Bold).Sprint("PARTIAL")
	}
	return color.New(color.FgRed, color.Bold).Sprint("FAIL")
}

func statusIcon(s game.ObjectiveStatus) string {
	switch s {
	case game.StatusCompleted:
		return color.New(color.FgGreen).Sprint("✓")
	case game.StatusFailed:
		return color.New(color.FgRed).Sprint("✗")
	}
	return color.New(color.FgYellow).Sprint("·")
}

// printReport writes a human summary of one replayed scenario.
func printReport(w io.Writer, r *replay.Report, verbose bool) {
	fmt.Fprintf(w, "%s (attempt %s)\n", r.Scenario, r.AttemptID)
	if verbose {
		for _, n := range r.Notifications {
			fmt.Fprintf(w, "  %7.2fs %s%s\n", n.Elapsed, n.Kind, noteDetail(n))
		}
	}
	if r.Result == nil {
		fmt.Fprintf(w, "  %s after %.1fs, %d steps run\n",
			color.New(color.FgCyan).Sprintf("still %s", r.State), r.Elapsed, r.StepsRun)
		return
	}
	res := r.Result
	line := fmt.Sprintf("  %s in %.1fs", stateLabel(res.SuccessState), res.Stats.Elapsed)
	if res.FailureReason != "" {
		line += fmt.Sprintf(" (%s)", res.FailureReason)
	}
	fmt.Fprintln(w, line)
	for _, o := range res.Objectives {
		kind := "bonus"
		if o.Primary {
			kind = "primary"
		}
		fmt.Fprintf(w, "    %s %-18s %-8s %s\n", statusIcon(o.Status), o.ID, kind, o.Status)
	}
	st := res.Stats
	fmt.Fprintf(w, "  fuel %.0f%%, damage %.0f%%, touchdowns %d, crashes %d, phases %d\n",
		st.FuelRatio*100, st.MaxHullDamage*100, st.TouchdownCount, st.CrashCount, st.PhasesCompleted)
	if res.Reward != nil && res.Reward.Grant != nil {
		fmt.Fprintf(w, "  reward: %d credits", res.Reward.Grant.Credits)
		if len(res.Reward.Grant.Unlocks) > 0 {
			fmt.Fprintf(w, ", unlocks %v", res.Reward.Grant.Unlocks)
		}
		fmt.Fprintln(w)
	}
	if r.StepsSkipped > 0 {
		fmt.Fprintf(w, "  %d step(s) after the end were skipped\n", r.StepsSkipped)
	}
}

func noteDetail(n game.Notification) string {
	switch {
	case n.Objective != nil:
		return fmt.Sprintf(" %s -> %s", n.Objective.ID, n.Objective.Status)
	case n.Touchdown != nil:
		return fmt.Sprintf(" %s %s", n.Touchdown.Outcome, n.Touchdown.Cause)
	case n.Phase != nil:
		return " " + n.Phase.ID
	case n.Reason != "":
		return " " + n.Reason
	}
	return ""
}
