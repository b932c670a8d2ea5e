package game

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is
var (
	// ErrRejected marks an action refused because of phase, turn or move legality.
	// The game can continue.
	ErrRejected = errors.New("action rejected")

	// ErrInvariant marks a broken engine invariant. This is a bug, not a user mistake.
	ErrInvariant = errors.New("invariant violated")
)

// Reason classifies why an action was rejected
type Reason string

const (
	ReasonWrongPhase    Reason = "wrong_phase"
	ReasonNotYourTurn   Reason = "not_your_turn"
	ReasonIllegalCard   Reason = "illegal_card"
	ReasonBidCardCount  Reason = "bid_card_count"
	ReasonCardNotInHand Reason = "card_not_in_hand"
	ReasonJokerBid      Reason = "joker_bid"
	ReasonUnknownPlayer Reason = "unknown_player"
	ReasonDuplicateCard Reason = "duplicate_card"
	ReasonMatchOver     Reason = "match_over"
	ReasonUnknownAction Reason = "unknown_action"
)

// RejectionError is returned when an action is not allowed in the current state
type RejectionError struct {
	Reason  Reason
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// InvariantError is returned when the engine detects an inconsistent state
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

func reject(reason Reason, format string, args ...interface{}) *RejectionError {
	return &RejectionError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func invariantf(op, format string, args ...interface{}) *InvariantError {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is a rejected action and returns it
func IsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
