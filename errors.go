package securedm

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrKeyGeneration is returned when a key pair cannot be generated.
	// This means the platform's secure randomness source is unavailable and
	// is the only fatal condition in the package; it is never retried here.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrUnwrap is returned when a wrapped private key cannot be unwrapped:
	// wrong secret or corrupted wrapped key material.
	ErrUnwrap = errors.New("private key unwrap failed")

	// ErrKeyUnwrap is returned when the one-time symmetric key in a bundle
	// cannot be unwrapped: the bundle was encrypted for a different public
	// key, or the encryptedKey field is malformed.
	ErrKeyUnwrap = errors.New("message key unwrap failed")

	// ErrIntegrity is returned when the authenticated decryption of message
	// content fails: the ciphertext was tampered with, or key and IV do not
	// match. No partial plaintext is ever returned.
	ErrIntegrity = errors.New("message integrity check failed")

	// ErrEncoding is returned when a stored bundle is malformed: unknown
	// cipher suite, invalid base64, or a field with an impossible length.
	ErrEncoding = errors.New("malformed message bundle")

	// ErrUnknownSuite is returned when a suite identifier is not in the
	// supported set. It also matches ErrEncoding at the bundle boundary.
	ErrUnknownSuite = errors.New("unknown cipher suite")

	// ErrIdentityNotFound is returned by KeyStore implementations when no
	// keys exist for the requested identity.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrInvalidExport is returned when imported identity data is invalid.
	ErrInvalidExport = errors.New("invalid identity export data")
)

// SecureDMError is implemented by all typed errors in this package.
type SecureDMError interface {
	error
	SecureDMError() // marker method
}

// KeyGenError reports a failure to generate a key pair.
type KeyGenError struct {
	Suite string
	Err   error
}

func (e *KeyGenError) Error() string {
	return fmt.Sprintf("key generation failed for suite %s: %v", e.Suite, e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyGenError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *KeyGenError) Is(target error) bool { return target == ErrKeyGeneration }

// SecureDMError implements the SecureDMError interface.
func (e *KeyGenError) SecureDMError() {}

// UnwrapError reports a failure to unwrap a wrapped private key.
// It never carries key material or the attempted secret.
type UnwrapError struct {
	Err error
}

func (e *UnwrapError) Error() string {
	return fmt.Sprintf("private key unwrap failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *UnwrapError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *UnwrapError) Is(target error) bool { return target == ErrUnwrap }

// SecureDMError implements the SecureDMError interface.
func (e *UnwrapError) SecureDMError() {}

// Decrypt stages reported by DecryptError.
const (
	StageDecode    = "decode"    // base64/structure validation of the bundle
	StageKeyUnwrap = "keyunwrap" // unwrapping the one-time symmetric key
	StageContent   = "content"   // authenticated decryption of the body
)

// DecryptError reports a failure to decrypt a message bundle. Stage is one
// of StageDecode, StageKeyUnwrap, or StageContent. UI-facing callers should
// render a fixed "message could not be decrypted" rather than the stage, to
// avoid acting as a padding/tag oracle.
type DecryptError struct {
	Stage string
	Err   error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypt failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecryptError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *DecryptError) Is(target error) bool {
	switch e.Stage {
	case StageDecode:
		return target == ErrEncoding
	case StageKeyUnwrap:
		return target == ErrKeyUnwrap
	case StageContent:
		return target == ErrIntegrity
	}
	return false
}

// SecureDMError implements the SecureDMError interface.
func (e *DecryptError) SecureDMError() {}
