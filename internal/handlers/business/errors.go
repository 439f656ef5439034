package business

import "errors"

// The presale controller surfaces a closed set of errors. Handlers map them
// to HTTP status codes; nothing here is retried or swallowed.
var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrPresaleNotConfigured  = errors.New("presale not configured")
	ErrAlreadyConfigured     = errors.New("presale already has contributions")
	ErrPresaleNotLive        = errors.New("presale not live")
	ErrPresaleAlreadyStopped = errors.New("presale already stopped")
	ErrPresaleNotStarted     = errors.New("presale not started")
	ErrPresaleEnded          = errors.New("presale has ended")
	ErrPresaleNotEnded       = errors.New("presale not ended")
	ErrPresaleStillLive      = errors.New("presale still live")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrNothingToClaim        = errors.New("nothing to claim")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrTokenNotSet           = errors.New("token mint not set")
	ErrTokenNotInitialized   = errors.New("token mint not initialized")
	ErrTokenLocked           = errors.New("token mint locked after settled claims")
)
