package transfer

import "errors"

// Service errors
var (
	ErrInvalidAmount       = errors.New("amount must be a positive value with at most two decimal places")
	ErrSelfTransfer        = errors.New("cannot transfer to self")
	ErrUnknownSender       = errors.New("sender account not found")
	ErrUnknownReceiver     = errors.New("receiver account not found")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrConcurrencyConflict = errors.New("transfer conflicted with concurrent activity, retry")
	ErrStorageFailure      = errors.New("transfer failed")
)
