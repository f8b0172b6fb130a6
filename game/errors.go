package game

import "errors"

// Every error here is user-facing and recoverable: handlers turn them into a
// serverMessage push to the offending connection and nothing else.
var (
	ErrGameAlreadyStarted  = errors.New("game already started")
	ErrNotEnoughPlayers    = errors.New("not enough players")
	ErrNotEnoughBlackCards = errors.New("not enough black cards")
	ErrNotEnoughWhiteCards = errors.New("not enough white cards")
	ErrDeckNotFound        = errors.New("deck not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already in use")

	ErrCzarCannotPlay = errors.New("card czar cannot play")
	ErrNotCzar        = errors.New("you are not the card czar")
	ErrAlreadyPlayed  = errors.New("user already played")
	ErrCardNotInHand  = errors.New("user does not have this card")
	ErrCardNotFound   = errors.New("card not found")

	ErrPlayPhase   = errors.New("cannot play in this phase")
	ErrUndoPhase   = errors.New("cannot undo play in this phase")
	ErrVotePhase   = errors.New("cannot vote to skip in this phase")
	ErrSelectPhase = errors.New("not in selecting winner phase")
)
