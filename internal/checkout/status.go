package checkout

// State tracks one checkout attempt from form entry to a terminal route.
type State string

const (
	StateIdle              State = "idle"
	StateValidating        State = "validating"
	StateCreatingOrder     State = "creating_order"
	StateCashConfirmed     State = "cash_confirmed"
	StateProcessingPayment State = "processing_payment"
	StateCompleted         State = "completed"
	StateFailed            State = "failed"
)

var allowedTransitions = map[State][]State{
	StateIdle:              {StateValidating},
	StateValidating:        {StateIdle, StateCreatingOrder},
	StateCreatingOrder:     {StateCashConfirmed, StateProcessingPayment, StateFailed},
	StateCashConfirmed:     {StateCompleted},
	StateProcessingPayment: {StateCompleted, StateFailed},
}

func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s State) String() string {
	return string(s)
}
