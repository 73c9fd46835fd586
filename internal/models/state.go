package models

// TransactionState is the lifecycle state of a payment attempt.
type TransactionState string

const (
	StateDraft     TransactionState = "draft"
	StatePending   TransactionState = "pending"
	StateDone      TransactionState = "done"
	StateError     TransactionState = "error"
	StateCancelled TransactionState = "cancelled"
)

// IsTerminal reports whether no further transition may be applied.
func (s TransactionState) IsTerminal() bool {
	switch s {
	case StateDone, StateError, StateCancelled:
		return true
	}
	return false
}

// TerminalStates lists the states IsTerminal accepts.
func TerminalStates() []TransactionState {
	return []TransactionState{StateDone, StateError, StateCancelled}
}
