package engine

// ActionType tags one entry of a turn's ordered action list. The set is
// closed: the scheduler handles every known type exhaustively and logs
// anything else without charging AP.
type ActionType string

const (
	ActionMove   ActionType = "move"
	ActionRotate ActionType = "rotate"
	ActionAttack ActionType = "attack"
)

// Action is one step of a turn. Only the fields matching Type are read:
// X/Y for move, NewOrientation for rotate, TargetIndex for attack.
type Action struct {
	Type           ActionType `json:"type"`
	X              float64    `json:"x"`
	Y              float64    `json:"y"`
	NewOrientation float64    `json:"newOrientation"`
	TargetIndex    int        `json:"targetIndex"`
}
