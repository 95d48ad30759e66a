package hybrid

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"

	"github.com/minso/securedm-go/internal/keys"
)

// Bundle is the wire form of one encrypted message. All byte fields are
// base64url without padding. None of the fields alone is decryptable.
type Bundle struct {
	// Suite identifies the cipher suite used for this bundle.
	Suite string `json:"suite"`
	// EncryptedKey is the one-time symmetric key, wrapped for the recipient:
	// RSA-OAEP ciphertext or ML-KEM-768 encapsulation depending on the suite.
	EncryptedKey string `json:"encryptedKey"`
	// IV is the 12-byte GCM nonce, unique per message.
	IV string `json:"iv"`
	// EncryptedContent is the AES-256-GCM ciphertext with the 16-byte tag
	// appended.
	EncryptedContent string `json:"encryptedContent"`
}

// Encrypt produces a bundle for the recipient's public key.
//
// The encryption process:
//  1. Generate a fresh one-time AES-256 key and a fresh 12-byte IV.
//  2. Encrypt the plaintext with AES-256-GCM; the tag is appended.
//  3. Wrap the key for the recipient: RSA-OAEP-SHA-256, or ML-KEM-768
//     encapsulation followed by HKDF-SHA-512.
//
// For the ML-KEM suite the symmetric key is derived from the encapsulation
// rather than drawn directly, so encryptedKey is the KEM ciphertext.
func Encrypt(plaintext, recipientPublic []byte, suite string) (*Bundle, error) {
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	var symKey, encKey []byte
	switch suite {
	case keys.SuiteRSAOAEP:
		symKey = make([]byte, AESKeySize)
		if _, err := rand.Read(symKey); err != nil {
			return nil, fmt.Errorf("generate symmetric key: %w", err)
		}
		pub, err := x509.ParsePKIXPublicKey(recipientPublic)
		if err != nil {
			return nil, fmt.Errorf("%w: parse recipient public key: %v", ErrEncoding, err)
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: recipient public key is not RSA", ErrEncoding)
		}
		encKey, err = rsa.EncryptOAEP(sha256.New(), rand.Reader, rsaPub, symKey, nil)
		if err != nil {
			return nil, fmt.Errorf("wrap symmetric key: %w", err)
		}
	case keys.SuiteMLKEM:
		if len(recipientPublic) != keys.MLKEMPublicKeySize {
			return nil, fmt.Errorf("%w: recipient public key size %d, want %d",
				ErrEncoding, len(recipientPublic), keys.MLKEMPublicKeySize)
		}
		var pub mlkem768.PublicKey
		pub.Unpack(recipientPublic)

		encKey = make([]byte, MLKEMCiphertextSize)
		shared := make([]byte, MLKEMSharedKeySize)
		pub.EncapsulateTo(encKey, shared, nil)
		defer zeroBytes(shared)

		var err error
		symKey, err = deriveContentKey(shared, encKey)
		if err != nil {
			return nil, fmt.Errorf("derive symmetric key: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, suite)
	}
	defer zeroBytes(symKey)

	content, err := sealAESGCM(symKey, iv, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt content: %w", err)
	}

	return &Bundle{
		Suite:            suite,
		EncryptedKey:     ToBase64URL(encKey),
		IV:               ToBase64URL(iv),
		EncryptedContent: ToBase64URL(content),
	}, nil
}

// Decrypt recovers the plaintext from a bundle using the matching private
// key. It returns plaintext only on full success; a tag failure aborts with
// ErrIntegrity and never yields partial plaintext.
func Decrypt(b *Bundle, ownPrivate []byte) ([]byte, error) {
	encKey, iv, content, err := decodeBundle(b)
	if err != nil {
		return nil, err
	}

	var symKey []byte
	switch b.Suite {
	case keys.SuiteRSAOAEP:
		priv, err := x509.ParsePKCS8PrivateKey(ownPrivate)
		if err != nil {
			return nil, fmt.Errorf("%w: parse private key: %v", ErrKeyUnwrap, err)
		}
		rsaPriv, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: private key is not RSA", ErrKeyUnwrap)
		}
		symKey, err = rsa.DecryptOAEP(sha256.New(), nil, rsaPriv, encKey, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyUnwrap, err)
		}
	case keys.SuiteMLKEM:
		if len(ownPrivate) != keys.MLKEMSecretKeySize {
			return nil, fmt.Errorf("%w: secret key size %d, want %d",
				ErrKeyUnwrap, len(ownPrivate), keys.MLKEMSecretKeySize)
		}
		var priv mlkem768.PrivateKey
		if err := priv.Unpack(ownPrivate); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyUnwrap, err)
		}

		// ML-KEM decapsulation rejects implicitly: a mismatched key yields
		// a wrong shared secret and the failure surfaces at the GCM open.
		shared := make([]byte, MLKEMSharedKeySize)
		priv.DecapsulateTo(shared, encKey)
		defer zeroBytes(shared)

		symKey, err = deriveContentKey(shared, encKey)
		if err != nil {
			return nil, fmt.Errorf("derive symmetric key: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, b.Suite)
	}
	defer zeroBytes(symKey)

	plaintext, err := openAESGCM(symKey, iv, content)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

// ValidateBundle checks the bundle's structure without running any
// cryptography: suite membership, base64 decodability, and field lengths.
func ValidateBundle(b *Bundle) error {
	_, _, _, err := decodeBundle(b)
	return err
}

// decodeBundle validates and decodes the three ciphertext fields. All
// structural failures are ErrEncoding so that callers can distinguish a
// malformed stored bundle from a cryptographic failure.
func decodeBundle(b *Bundle) (encKey, iv, content []byte, err error) {
	if !keys.KnownSuite(b.Suite) {
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownSuite, b.Suite)
	}

	encKey, err = FromBase64URL(b.EncryptedKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: decode encryptedKey: %v", ErrEncoding, err)
	}
	iv, err = FromBase64URL(b.IV)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: decode iv: %v", ErrEncoding, err)
	}
	content, err = FromBase64URL(b.EncryptedContent)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: decode encryptedContent: %v", ErrEncoding, err)
	}

	if len(iv) != IVSize {
		return nil, nil, nil, fmt.Errorf("%w: iv size %d, want %d", ErrEncoding, len(iv), IVSize)
	}
	if len(content) < TagSize {
		return nil, nil, nil, fmt.Errorf("%w: encryptedContent shorter than tag", ErrEncoding)
	}
	if b.Suite == keys.SuiteMLKEM && len(encKey) != MLKEMCiphertextSize {
		return nil, nil, nil, fmt.Errorf("%w: encryptedKey size %d, want %d",
			ErrEncoding, len(encKey), MLKEMCiphertextSize)
	}
	return encKey, iv, content, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
