package replay

import (
	"context"
	"errors"
	"math"
	"testing"

	"LanderRescue/internal/game"
)

type memPublisher struct {
	results []game.MissionResult
}

func (p *memPublisher) PublishResult(res game.MissionResult) error {
	p.results = append(p.results, res)
	return nil
}

func countKind(notes []game.Notification, kind game.NotificationKind) int {
	n := 0
	for _, note := range notes {
		if note.Kind == kind {
			n++
		}
	}
	return n
}

func TestRunOutpostRescueScenario(t *testing.T) {
	sc, err := Load("../../scenarios/outpost-rescue.yaml")
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	pub := &memPublisher{}
	report, err := Run(context.Background(), sc, WithPublisher(pub))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Result == nil {
		t.Fatalf("expected a result, state %s", report.State)
	}
	if report.Result.SuccessState != game.SuccessStateSuccess {
		t.Fatalf("expected success, got %s (%+v)", report.Result.SuccessState, report.Result.Objectives)
	}
	if report.AttemptID != "replay-outpost-clean" || report.Result.AttemptID != "replay-outpost-clean" {
		t.Fatalf("expected scripted attempt id, got %q", report.AttemptID)
	}
	if report.Result.Stats.PhasesCompleted != 3 {
		t.Fatalf("expected 3 phases, got %d", report.Result.Stats.PhasesCompleted)
	}
	if len(pub.results) != 1 {
		t.Fatalf("expected one published result, got %d", len(pub.results))
	}
	if countKind(report.Notifications, game.NotifyMissionCompleted) != 1 {
		t.Fatalf("expected one completion notification")
	}
	if countKind(report.Notifications, game.NotifyPhaseEntered) != 3 {
		t.Fatalf("expected three phase entries")
	}
}

func TestRunIsDeterministic(t *testing.T) {
	sc, err := Load("../../scenarios/outpost-rescue.yaml")
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	first, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !first.Result.FinishedAt.Equal(second.Result.FinishedAt) || first.Elapsed != second.Elapsed {
		t.Fatalf("expected identical timing, got %v/%v and %.2f/%.2f",
			first.Result.FinishedAt, second.Result.FinishedAt, first.Elapsed, second.Elapsed)
	}
	if len(first.Notifications) != len(second.Notifications) {
		t.Fatalf("expected identical notification streams")
	}
}

func TestRunCrashSkipsRemainingSteps(t *testing.T) {
	sc, err := Load("../../scenarios/tutorial-crash.yaml")
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	report, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.State != game.StateFailed || report.Result.FailureReason != game.ReasonLanderDestroyed {
		t.Fatalf("expected destroyed failure, got %s/%+v", report.State, report.Result)
	}
	if report.StepsSkipped != 1 {
		t.Fatalf("expected the settle step to be skipped, got %d", report.StepsSkipped)
	}
	if report.Result.Stats.FuelRatio != 0.4 {
		t.Fatalf("expected fuel 0.4 in stats, got %.2f", report.Result.Stats.FuelRatio)
	}
}

func TestRunTimeLimitFromAdvance(t *testing.T) {
	sc, err := Parse([]byte(`
mission: tutorial-landing
steps:
  - event: advance
    seconds: 1000
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	report, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Result == nil || report.Result.FailureReason != game.ReasonTimeLimitExceeded {
		t.Fatalf("expected time limit failure, got %+v", report.Result)
	}
	if report.Elapsed < game.DefaultTimeLimitTutorial-game.Dt || report.Elapsed > game.DefaultTimeLimitTutorial+game.Dt {
		t.Fatalf("expected elapsed near the tutorial limit, got %.2f", report.Elapsed)
	}
}

func TestRunUnfinishedScenarioHasNoResult(t *testing.T) {
	sc, err := Parse([]byte(`
mission: tutorial-landing
steps:
  - at: 5
    event: altitude
    value: 900
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	report, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Result != nil || report.State != game.StateRunning {
		t.Fatalf("expected running mission without result, got %s", report.State)
	}
	if math.Abs(report.Elapsed-5) > 1e-6 {
		t.Fatalf("expected 5s elapsed, got %.2f", report.Elapsed)
	}
}

func TestParseRejectsBadScenarios(t *testing.T) {
	cases := map[string]string{
		"no mission":    "steps: []",
		"unknown event": "mission: tutorial-landing\nsteps:\n  - event: warp\n",
		"bad yaml":      "mission: [",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalidScenario) {
			t.Fatalf("%s: expected ErrInvalidScenario, got %v", name, err)
		}
	}
}

func TestRunUnknownMissionFailsToPrepare(t *testing.T) {
	sc := &Scenario{Mission: "nowhere"}
	if _, err := Run(context.Background(), sc); !errors.Is(err, game.ErrConfigurationMissing) {
		t.Fatalf("expected ErrConfigurationMissing, got %v", err)
	}
}

func TestRunExternalPhaseMismatch(t *testing.T) {
	sc := &Scenario{Mission: "tutorial-landing", Steps: []Step{{Event: EventCompletePhase, ID: "rescue"}}}
	if _, err := Run(context.Background(), sc); !errors.Is(err, game.ErrUnknownPhase) {
		t.Fatalf("expected ErrUnknownPhase, got %v", err)
	}
}
