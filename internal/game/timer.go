package game

// MissionTimer is a single-shot countdown advanced by mission ticks.
type MissionTimer struct {
	limit   float64
	elapsed float64
	fired   bool
	stopped bool
}

func NewMissionTimer(limit float64) *MissionTimer {
	return &MissionTimer{limit: limit}
}

// Advance adds dt seconds and returns true exactly once, on the tick the limit is reached.
func (t *MissionTimer) Advance(dt float64) bool {
	if t == nil || t.fired || t.stopped || t.limit <= 0 {
		return false
	}
	if dt > 0 {
		t.elapsed += dt
	}
	if t.elapsed+speedEpsilon >= t.limit {
		t.fired = true
		return true
	}
	return false
}

// Stop freezes the timer; a stopped timer never fires.
func (t *MissionTimer) Stop() {
	if t != nil {
		t.stopped = true
	}
}

func (t *MissionTimer) Limit() float64   { return t.limit }
func (t *MissionTimer) Elapsed() float64 { return t.elapsed }
func (t *MissionTimer) Fired() bool      { return t.fired }

func (t *MissionTimer) Remaining() float64 {
	if t == nil {
		return 0
	}
	remaining := t.limit - t.elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
