package verification

// Card levels run from 1 to 5 and must be earned in order.
const (
	MinCardLevel = 1
	MaxCardLevel = 5
)

// GateDecision is the outcome of a card-tier entry check.
type GateDecision int

const (
	GateAllowed GateDecision = iota
	GateAlreadyEarned
	GateLocked
)

func (d GateDecision) String() string {
	switch d {
	case GateAllowed:
		return "allowed"
	case GateAlreadyEarned:
		return "already_earned"
	case GateLocked:
		return "locked"
	}
	return "unknown"
}

// EvaluateGate decides whether a user may attempt the requested card
// level given the set of levels they already hold. Level 1 is open to
// anyone who has not earned it; every higher level requires exactly the
// previous level, not merely some lower one. The check has no side
// effects and must be re-run on every entry attempt since the earned
// set can change between calls.
func EvaluateGate(level int, earned map[int]bool) GateDecision {
	if earned[level] {
		return GateAlreadyEarned
	}
	if level > MinCardLevel && !earned[level-1] {
		return GateLocked
	}
	return GateAllowed
}
