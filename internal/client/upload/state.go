package upload

// State is a step of an upload attempt.
type State string

const (
	StateFileSelected    State = "file_selected"
	StateWalletConnected State = "wallet_connected"
	StateBalanceChecked  State = "balance_checked"
	StateFunding         State = "funding"
	StateUploading       State = "uploading"
	StateSucceeded       State = "succeeded"
	StateFailed          State = "failed"
)

// transitions lists, for each state, the states it may move to.
var transitions = map[State][]State{
	StateFileSelected:    {StateWalletConnected},
	StateWalletConnected: {StateBalanceChecked},
	StateBalanceChecked:  {StateFunding, StateUploading},
	StateFunding:         {StateBalanceChecked},
	StateUploading:       {StateSucceeded, StateFailed},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
