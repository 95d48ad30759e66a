package agent

import "fmt"

// MessageState is the client-side lifecycle position of one message.
type MessageState int

const (
	// StateComposed: plaintext exists only on the sender's device.
	StateComposed MessageState = iota
	// StateEncrypted: the bundle has been produced; plaintext may be dropped.
	StateEncrypted
	// StatePersisted: the server acknowledged storing the bundle.
	StatePersisted
	// StateDelivered: the recipient's device has fetched the bundle.
	StateDelivered
	// StateDecryptAttempted: the recipient's device is decrypting.
	StateDecryptAttempted
	// StateDisplayed: plaintext recovered and shown. Terminal.
	StateDisplayed
	// StateDecryptFailed: decrypt failed for this message. Terminal; other
	// messages in the conversation are unaffected.
	StateDecryptFailed
)

var stateNames = map[MessageState]string{
	StateComposed:         "composed",
	StateEncrypted:        "encrypted",
	StatePersisted:        "persisted",
	StateDelivered:        "delivered",
	StateDecryptAttempted: "decrypt-attempted",
	StateDisplayed:        "displayed",
	StateDecryptFailed:    "decrypt-failed",
}

func (s MessageState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Terminal reports whether no further transitions are allowed from s.
func (s MessageState) Terminal() bool {
	return s == StateDisplayed || s == StateDecryptFailed
}

// next lists the allowed successor states. There are no backward moves.
var next = map[MessageState][]MessageState{
	StateComposed:         {StateEncrypted},
	StateEncrypted:        {StatePersisted},
	StatePersisted:        {StateDelivered},
	StateDelivered:        {StateDecryptAttempted},
	StateDecryptAttempted: {StateDisplayed, StateDecryptFailed},
}

// CanTransition reports whether moving from s to to is legal.
func (s MessageState) CanTransition(to MessageState) bool {
	for _, allowed := range next[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Lifecycle tracks one message through its states, starting at
// StateComposed.
type Lifecycle struct {
	state MessageState
}

// NewLifecycle returns a lifecycle at StateComposed.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateComposed}
}

// State returns the current state.
func (l *Lifecycle) State() MessageState { return l.state }

// Advance moves to the given state, or returns ErrBadTransition if the move
// is backward, skips a step, or leaves a terminal state.
func (l *Lifecycle) Advance(to MessageState) error {
	if !l.state.CanTransition(to) {
		return fmt.Errorf("%w: %s to %s", ErrBadTransition, l.state, to)
	}
	l.state = to
	return nil
}
