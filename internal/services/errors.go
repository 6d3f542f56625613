package services

import "errors"

// Protocol failure taxonomy. The message text is part of the external
// contract (existing callers and signer tooling match on it verbatim),
// so these strings must not change.
var (
	ErrInvalidSigner       = errors.New("Invalid signer")
	ErrInvalidAuthority    = errors.New("Invalid auth manager")
	ErrZeroDeposit         = errors.New("Zero deposit")
	ErrInvalidRecipient    = errors.New("Invalid recipient")
	ErrInvalidAmount       = errors.New("Invalid amount")
	ErrInsufficientBalance = errors.New("Insufficient vault balance")
	ErrAlreadyUsed         = errors.New("Authorization already used")
	ErrInvalidSignature    = errors.New("Invalid signature")
	ErrAuthorizationFailed = errors.New("Authorization failed")
	ErrTransferFailed      = errors.New("Transfer failed")
)
