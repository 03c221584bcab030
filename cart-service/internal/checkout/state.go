package checkout

type State string

const (
	StateIdle       State = "idle"
	StateFilling    State = "filling"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
	// StateEmpty is reached when checkout is entered with nothing to buy.
	StateEmpty State = "empty"
)

var transitions = map[State][]State{
	StateIdle:       {StateFilling, StateEmpty},
	StateFilling:    {StateFilling, StateSubmitting, StateSuccess},
	StateSubmitting: {StateSuccess, StateFailed},
	StateFailed:     {StateFilling, StateSubmitting, StateSuccess},
}

func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether only a fresh Enter can leave s.
func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateEmpty
}

func (s State) String() string {
	return string(s)
}

type PaymentMethod string

const (
	MethodCOD    PaymentMethod = "cod"
	MethodCard   PaymentMethod = "card"
	MethodUPI    PaymentMethod = "upi"
	MethodWallet PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCOD, MethodCard, MethodUPI, MethodWallet:
		return true
	}
	return false
}

// ViaGateway reports whether the method is settled by the payment gateway.
func (m PaymentMethod) ViaGateway() bool {
	return m.Valid() && m != MethodCOD
}
