package verification

import "testing"

func TestGateOrdering(t *testing.T) {
	tests := []struct {
		name   string
		level  int
		earned map[int]bool
		want   GateDecision
	}{
		{"level 1 with nothing earned", 1, map[int]bool{}, GateAllowed},
		{"level 2 without level 1", 2, map[int]bool{}, GateLocked},
		{"level 2 with level 1", 2, map[int]bool{1: true}, GateAllowed},
		{"level 3 with only level 1", 3, map[int]bool{1: true}, GateLocked},
		{"level 5 with 1-4 earned", 5, map[int]bool{1: true, 2: true, 3: true, 4: true}, GateAllowed},
		// Only the immediate predecessor matters, in both directions:
		// holding level-1 opens the gate even with gaps below it, and
		// holding lower levels without level-1 does not.
		{"level 4 with 3 earned but a gap at 2", 4, map[int]bool{1: true, 3: true}, GateAllowed},
		{"level 4 with 1 and 2 but not 3", 4, map[int]bool{1: true, 2: true}, GateLocked},
		{"level 5 with 1 and 3 but not 4", 5, map[int]bool{1: true, 3: true}, GateLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateGate(tt.level, tt.earned); got != tt.want {
				t.Errorf("EvaluateGate(%d, %v) = %v, want %v", tt.level, tt.earned, got, tt.want)
			}
		})
	}
}

func TestGateLockedForAllLevelsMissingPredecessor(t *testing.T) {
	for level := 2; level <= MaxCardLevel; level++ {
		earned := map[int]bool{}
		// Earn everything except level-1 and level itself.
		for l := MinCardLevel; l <= MaxCardLevel; l++ {
			if l != level-1 && l != level {
				earned[l] = true
			}
		}
		if got := EvaluateGate(level, earned); got != GateLocked {
			t.Errorf("level %d without level %d: got %v, want GateLocked", level, level-1, got)
		}
	}
}

func TestGateAlreadyEarnedIsIdempotent(t *testing.T) {
	for level := MinCardLevel; level <= MaxCardLevel; level++ {
		earned := map[int]bool{level: true}
		if got := EvaluateGate(level, earned); got != GateAlreadyEarned {
			t.Errorf("level %d already earned: got %v, want GateAlreadyEarned", level, got)
		}
		// Earned set larger than the requested level changes nothing.
		for l := MinCardLevel; l <= MaxCardLevel; l++ {
			earned[l] = true
		}
		if got := EvaluateGate(level, earned); got != GateAlreadyEarned {
			t.Errorf("level %d with everything earned: got %v, want GateAlreadyEarned", level, got)
		}
	}
}
