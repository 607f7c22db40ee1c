package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is returned when the submitted wallet address is malformed
	ErrInvalidAddress = errors.New("invalid ethereum address")

	// ErrMessageConfig is returned when the login message domain or URI is not configured
	ErrMessageConfig = errors.New("authentication message configuration missing")

	// ErrTooManyAttempts is returned when a wallet is temporarily locked out
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	// ErrUnauthorized is the base for all verification failures. Transport
	// surfaces this single generic error; the wrapped variants below exist
	// for logs and tests only.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrChallengeNotFound is returned when no valid challenge matches the submitted message
	ErrChallengeNotFound = fmt.Errorf("%w: challenge not found or expired", ErrUnauthorized)

	// ErrChallengeMismatch is returned when the stored challenge text differs from the submitted message
	ErrChallengeMismatch = fmt.Errorf("%w: challenge message mismatch", ErrUnauthorized)

	// ErrSignatureMismatch is returned when the recovered signer is not the claimed wallet
	ErrSignatureMismatch = fmt.Errorf("%w: signature does not match wallet address", ErrUnauthorized)

	// ErrStoreUnavailable is returned when persistence or the crypto capability fails transiently
	ErrStoreUnavailable = errors.New("store operation failed")

	// ErrUserNotFound is returned when a profile lookup misses
	ErrUserNotFound = errors.New("user not found")

	// ErrProfileConflict is returned when a profile update violates a unique constraint
	ErrProfileConflict = errors.New("username or email already in use")
)
