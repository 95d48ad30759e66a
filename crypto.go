package securedm

import (
	"errors"
	"fmt"

	"github.com/minso/securedm-go/internal/hybrid"
	"github.com/minso/securedm-go/internal/keys"
)

// Cipher suite identifiers. The set is closed; wire compatibility depends on
// a small, enumerable set of suites.
const (
	// SuiteRSAOAEP wraps the one-time AES key with RSA-2048 OAEP (SHA-256).
	SuiteRSAOAEP = keys.SuiteRSAOAEP
	// SuiteMLKEM encapsulates with ML-KEM-768 and derives the AES key with
	// HKDF-SHA-512.
	SuiteMLKEM = keys.SuiteMLKEM

	// DefaultSuite is used when no suite option is given.
	DefaultSuite = SuiteRSAOAEP
)

// Bundle is the three-field encrypted message bundle plus its suite tag.
type Bundle = hybrid.Bundle

// KeyPair holds one identity's key material in exportable encodings.
// Private is the raw, transient form: it must never be written to durable
// storage; only the output of WrapPrivateKey may cross that boundary.
type KeyPair struct {
	// Suite identifies the cipher suite the pair belongs to.
	Suite string
	// Public is the public key: PKIX DER for RSA, raw bytes for ML-KEM.
	Public []byte
	// Private is the private key: PKCS#8 DER for RSA, raw bytes for ML-KEM.
	Private []byte
}

// GenerateKeyPair produces a fresh key pair for the given suite using the
// platform's secure randomness source. Failure means that source is
// unavailable and matches ErrKeyGeneration.
func GenerateKeyPair(suite string) (*KeyPair, error) {
	if !keys.KnownSuite(suite) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, suite)
	}
	pair, err := keys.Generate(suite)
	if err != nil {
		return nil, &KeyGenError{Suite: suite, Err: err}
	}
	return &KeyPair{Suite: pair.Suite, Public: pair.Public, Private: pair.Private}, nil
}

// WrapPrivateKey seals a raw private key under the user secret for storage
// at rest. Wrapping the same key twice yields different outputs.
func WrapPrivateKey(private []byte, secret string) ([]byte, error) {
	return keys.Wrap(private, secret)
}

// UnwrapPrivateKey recovers a raw private key from its wrapped form. A wrong
// secret or corrupted wrapped key fails with an error matching ErrUnwrap; it
// never returns garbage key material.
func UnwrapPrivateKey(wrapped []byte, secret string) ([]byte, error) {
	private, err := keys.Unwrap(wrapped, secret)
	if err != nil {
		return nil, &UnwrapError{Err: err}
	}
	return private, nil
}

// Encrypt runs the hybrid protocol for a recipient public key: fresh AES-256
// key and IV, AES-256-GCM over the plaintext, key wrapped for the recipient
// per the suite. Encrypting the same plaintext twice yields different IVs
// and different ciphertexts.
func Encrypt(plaintext, recipientPublic []byte, suite string) (*Bundle, error) {
	b, err := hybrid.Encrypt(plaintext, recipientPublic, suite)
	if err != nil {
		return nil, wrapCryptoErr(err)
	}
	return b, nil
}

// Decrypt recovers plaintext from a bundle with the matching private key.
// Failures are typed: ErrEncoding for a malformed bundle, ErrKeyUnwrap for a
// key mismatch, ErrIntegrity for tampered content. Partial plaintext is
// never returned.
func Decrypt(b *Bundle, ownPrivate []byte) ([]byte, error) {
	plaintext, err := hybrid.Decrypt(b, ownPrivate)
	if err != nil {
		return nil, wrapCryptoErr(err)
	}
	return plaintext, nil
}

// ValidateBundle checks bundle structure (suite membership, base64 fields,
// field lengths) without running any cryptography.
func ValidateBundle(b *Bundle) error {
	if err := hybrid.ValidateBundle(b); err != nil {
		return &DecryptError{Stage: StageDecode, Err: err}
	}
	return nil
}

// wrapCryptoErr maps internal hybrid errors onto the public taxonomy.
func wrapCryptoErr(err error) error {
	switch {
	case errors.Is(err, hybrid.ErrUnknownSuite), errors.Is(err, hybrid.ErrEncoding):
		return &DecryptError{Stage: StageDecode, Err: err}
	case errors.Is(err, hybrid.ErrKeyUnwrap):
		return &DecryptError{Stage: StageKeyUnwrap, Err: err}
	case errors.Is(err, hybrid.ErrIntegrity):
		return &DecryptError{Stage: StageContent, Err: err}
	}
	return err
}
