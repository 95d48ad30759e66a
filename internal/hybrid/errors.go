package hybrid

import "errors"

var (
	// ErrUnknownSuite is returned for a suite identifier outside the set.
	ErrUnknownSuite = errors.New("unknown cipher suite")

	// ErrKeyUnwrap is returned when the one-time symmetric key cannot be
	// unwrapped: wrong private key or malformed encryptedKey.
	ErrKeyUnwrap = errors.New("symmetric key unwrap failed")

	// ErrIntegrity is returned when the GCM tag does not verify: tampered
	// ciphertext or mismatched key/IV.
	ErrIntegrity = errors.New("ciphertext integrity check failed")

	// ErrEncoding is returned when a bundle field is malformed: invalid
	// base64 or an impossible length.
	ErrEncoding = errors.New("malformed bundle field")
)
