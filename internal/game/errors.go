package game

import "errors"

// All betting and seating errors are recoverable: they are returned to the
// caller synchronously and never leave the table in a partially mutated
// state. Invariant violations (dealing from an empty deck, evaluating short
// hands) panic instead.
var (
	ErrTableFull         = errors.New("table is full")
	ErrInvalidBuyIn      = errors.New("buy-in outside table limits")
	ErrDuplicateSeat     = errors.New("agent already seated at table")
	ErrNotSeated         = errors.New("agent not seated at table")
	ErrNotYourTurn       = errors.New("not your turn to act")
	ErrSeatCannotAct     = errors.New("seat is folded or all-in")
	ErrIllegalCheck      = errors.New("cannot check facing a bet")
	ErrIllegalRaise      = errors.New("raise must exceed the current bet")
	ErrInsufficientStack = errors.New("insufficient stack")
	ErrInvalidAction     = errors.New("invalid action")
	ErrTableClosed       = errors.New("table closed")
)
