package agent

import "errors"

// Sentinel errors for errors.Is() checks. The taxonomy mirrors the securedm
// package by contract; the values are this package's own.
var (
	// ErrKeyGeneration means the device's secure randomness source is
	// unavailable. Fatal; not retried here.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrUnwrap is returned for a wrong secret or corrupted wrapped key.
	ErrUnwrap = errors.New("private key unwrap failed")

	// ErrKeyUnwrap is returned when the bundle was encrypted for a
	// different public key than the one whose private half was supplied.
	ErrKeyUnwrap = errors.New("message key unwrap failed")

	// ErrIntegrity is returned when the authentication tag does not verify.
	// No partial plaintext is ever returned.
	ErrIntegrity = errors.New("message integrity check failed")

	// ErrEncoding is returned for a malformed bundle or wrap envelope.
	ErrEncoding = errors.New("malformed message bundle")

	// ErrUnknownSuite is returned for a suite identifier outside the set.
	ErrUnknownSuite = errors.New("unknown cipher suite")

	// ErrBadTransition is returned by Lifecycle.Advance for a transition
	// the message state machine does not allow.
	ErrBadTransition = errors.New("illegal message state transition")
)
