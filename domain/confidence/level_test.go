package confidence

import (
	"testing"
)

func TestLevel_TotalOrder(t *testing.T) {
	if !LevelLow.Less(LevelModerate) {
		t.Error("low must be below moderate")
	}
	if !LevelModerate.Less(LevelHigh) {
		t.Error("moderate must be below high")
	}
	if !LevelLow.Less(LevelHigh) {
		t.Error("low must be below high")
	}
	if LevelHigh.Less(LevelHigh) {
		t.Error("Less must be strict")
	}
}

func TestLevel_Downgrade(t *testing.T) {
	tests := []struct {
		start Level
		steps int
		want  Level
	}{
		{LevelHigh, 0, LevelHigh},
		{LevelHigh, 1, LevelModerate},
		{LevelHigh, 2, LevelLow},
		{LevelModerate, 1, LevelLow},
		{LevelLow, 1, LevelLow}, // floors at low
		{LevelModerate, 0, LevelModerate},
	}
	for _, tt := range tests {
		if got := tt.start.Downgrade(tt.steps); got != tt.want {
			t.Errorf("%s downgraded by %d = %s, want %s", tt.start, tt.steps, got, tt.want)
		}
	}
}

func TestLevel_AtMost(t *testing.T) {
	if got := LevelHigh.AtMost(LevelModerate); got != LevelModerate {
		t.Errorf("high capped at moderate = %s", got)
	}
	if got := LevelLow.AtMost(LevelModerate); got != LevelLow {
		t.Errorf("cap must not raise a level, got %s", got)
	}
}

func TestMinLevel(t *testing.T) {
	if got := MinLevel(LevelHigh, LevelModerate, LevelHigh, LevelLow, LevelHigh); got != LevelLow {
		t.Errorf("MinLevel = %s, want low", got)
	}
	if got := MinLevel(LevelHigh, LevelHigh); got != LevelHigh {
		t.Errorf("MinLevel = %s, want high", got)
	}
}
