package payments

type State string

const (
	StateCreated   State = "created"
	StateInitiated State = "initiated"
	StateSettled   State = "settled"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

func (s State) IsTerminal() bool {
	return s == StateSettled || s == StateFailed || s == StateCancelled
}

func (s State) String() string {
	return string(s)
}

// CanTransition reports whether target is reachable from s. Terminal states
// accept nothing; created may still be cancelled directly by the expiry sweep.
func CanTransition(from, to State) bool {
	if from.IsTerminal() {
		return false
	}
	switch from {
	case StateCreated:
		return to == StateInitiated || to == StateSettled || to == StateFailed || to == StateCancelled
	case StateInitiated:
		return to == StateSettled || to == StateFailed || to == StateCancelled
	}
	return false
}
