package game

import "testing"

func TestMissionTimerFiresOnce(t *testing.T) {
	timer := NewMissionTimer(1)
	fired := 0
	for i := 0; i < 40; i++ {
		if timer.Advance(Dt) {
			fired++
		}
	}
	if fired != 1 {
		t.Fatalf("expected timer to fire exactly once, fired %d times", fired)
	}
	if timer.Remaining() != 0 {
		t.Fatalf("expected no time remaining, got %.2f", timer.Remaining())
	}
}

func TestMissionTimerFiresOnAccumulatedTicks(t *testing.T) {
	timer := NewMissionTimer(1)
	for i := 0; i < 19; i++ {
		if timer.Advance(Dt) {
			t.Fatalf("expected no expiry at tick %d", i)
		}
	}
	if !timer.Advance(Dt) {
		t.Fatalf("expected expiry on the twentieth 50ms tick")
	}
}

func TestMissionTimerStop(t *testing.T) {
	timer := NewMissionTimer(1)
	timer.Stop()
	if timer.Advance(5) {
		t.Fatalf("expected stopped timer not to fire")
	}
	if timer.Fired() {
		t.Fatalf("expected stopped timer to report not fired")
	}
}
