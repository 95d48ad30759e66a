package agent

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"golang.org/x/crypto/hkdf"
)

// Cipher suite identifiers. Must match the wire contract byte for byte.
const (
	SuiteRSAOAEP = "RSA-2048-OAEP-SHA-256:AES-256-GCM"
	SuiteMLKEM   = "ML-KEM-768:HKDF-SHA-512:AES-256-GCM"

	// DefaultSuite is used when no suite option is given.
	DefaultSuite = SuiteRSAOAEP
)

const (
	rsaKeyBits  = 2048
	aesKeyLen   = 32
	ivLen       = 12
	gcmTagLen   = 16
	hkdfContext = "minso:dm:v1"
)

// Bundle is the wire form of one encrypted message, field-compatible with
// the securedm bundle: same names, same base64url encoding.
type Bundle struct {
	Suite            string `json:"suite"`
	EncryptedKey     string `json:"encryptedKey"`
	IV               string `json:"iv"`
	EncryptedContent string `json:"encryptedContent"`
}

// KeyPair is an identity key pair held on the device. Private is raw and
// transient; persist only the output of WrapPrivateKey.
type KeyPair struct {
	Suite   string
	Public  []byte
	Private []byte
}

// Agent performs the client-side half of the protocol. It is stateless
// apart from the configured suite and safe for concurrent use.
type Agent struct {
	suite string
}

// Option configures an Agent.
type Option func(*Agent)

// WithSuite sets the cipher suite for generated keys and outgoing messages.
func WithSuite(suite string) Option {
	return func(a *Agent) { a.suite = suite }
}

// New creates an Agent. The default suite is DefaultSuite.
func New(opts ...Option) (*Agent, error) {
	a := &Agent{suite: DefaultSuite}
	for _, opt := range opts {
		opt(a)
	}
	if a.suite != SuiteRSAOAEP && a.suite != SuiteMLKEM {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, a.suite)
	}
	return a, nil
}

// Suite returns the agent's configured cipher suite.
func (a *Agent) Suite() string { return a.suite }

// GenerateKeyPair produces a fresh key pair on the device.
func (a *Agent) GenerateKeyPair() (*KeyPair, error) {
	switch a.suite {
	case SuiteRSAOAEP:
		key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		priv, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		return &KeyPair{Suite: a.suite, Public: pub, Private: priv}, nil
	case SuiteMLKEM:
		pub, priv, err := mlkem768.Scheme().GenerateKeyPair()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		pubBytes, err := pub.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		privBytes, err := priv.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		return &KeyPair{Suite: a.suite, Public: pubBytes, Private: privBytes}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, a.suite)
}

// Encrypt runs the hybrid protocol for a recipient public key and returns
// the wire bundle. A fresh symmetric key and IV are drawn per message.
func (a *Agent) Encrypt(plaintext, recipientPublic []byte) (*Bundle, error) {
	iv := make([]byte, ivLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	var contentKey, wrappedKey []byte
	switch a.suite {
	case SuiteRSAOAEP:
		contentKey = make([]byte, aesKeyLen)
		if _, err := io.ReadFull(rand.Reader, contentKey); err != nil {
			return nil, fmt.Errorf("generate message key: %w", err)
		}
		pub, err := parseRSAPublic(recipientPublic)
		if err != nil {
			return nil, err
		}
		wrappedKey, err = rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, contentKey, nil)
		if err != nil {
			return nil, fmt.Errorf("wrap message key: %w", err)
		}
	case SuiteMLKEM:
		scheme := mlkem768.Scheme()
		pub, err := scheme.UnmarshalBinaryPublicKey(recipientPublic)
		if err != nil {
			return nil, fmt.Errorf("%w: parse recipient public key: %v", ErrEncoding, err)
		}
		ct, shared, err := scheme.Encapsulate(pub)
		if err != nil {
			return nil, fmt.Errorf("encapsulate message key: %w", err)
		}
		wrappedKey = ct
		contentKey = contentKeyFromShared(shared, ct)
		wipe(shared)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, a.suite)
	}
	defer wipe(contentKey)

	sealed, err := gcmSeal(contentKey, iv, plaintext)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Suite:            a.suite,
		EncryptedKey:     b64(wrappedKey),
		IV:               b64(iv),
		EncryptedContent: b64(sealed),
	}, nil
}

// Decrypt recovers plaintext from a bundle with the device's private key.
// It returns plaintext only on full success.
func (a *Agent) Decrypt(b *Bundle, ownPrivate []byte) ([]byte, error) {
	wrappedKey, err := unb64(b.EncryptedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encryptedKey: %v", ErrEncoding, err)
	}
	iv, err := unb64(b.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: iv: %v", ErrEncoding, err)
	}
	sealed, err := unb64(b.EncryptedContent)
	if err != nil {
		return nil, fmt.Errorf("%w: encryptedContent: %v", ErrEncoding, err)
	}
	if len(iv) != ivLen || len(sealed) < gcmTagLen {
		return nil, fmt.Errorf("%w: bad field length", ErrEncoding)
	}

	var contentKey []byte
	switch b.Suite {
	case SuiteRSAOAEP:
		priv, err := parseRSAPrivate(ownPrivate)
		if err != nil {
			return nil, err
		}
		contentKey, err = rsa.DecryptOAEP(sha256.New(), nil, priv, wrappedKey, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyUnwrap, err)
		}
	case SuiteMLKEM:
		scheme := mlkem768.Scheme()
		if len(wrappedKey) != scheme.CiphertextSize() {
			return nil, fmt.Errorf("%w: encryptedKey size %d", ErrEncoding, len(wrappedKey))
		}
		priv, err := scheme.UnmarshalBinaryPrivateKey(ownPrivate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyUnwrap, err)
		}
		// Implicit rejection: a mismatched key produces a wrong shared
		// secret and the failure surfaces at the tag check below.
		shared, err := scheme.Decapsulate(priv, wrappedKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyUnwrap, err)
		}
		contentKey = contentKeyFromShared(shared, wrappedKey)
		wipe(shared)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, b.Suite)
	}
	defer wipe(contentKey)

	return gcmOpen(contentKey, iv, sealed)
}

func parseRSAPublic(der []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse public key: %v", ErrEncoding, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is not RSA", ErrEncoding)
	}
	return rsaPub, nil
}

func parseRSAPrivate(der []byte) (*rsa.PrivateKey, error) {
	priv, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", ErrKeyUnwrap, err)
	}
	rsaPriv, ok := priv.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is not RSA", ErrKeyUnwrap)
	}
	return rsaPriv, nil
}

// contentKeyFromShared derives the AES key for the ML-KEM suite:
// HKDF-SHA-512 over the shared secret, salted with SHA-256 of the KEM
// ciphertext, info = hkdfContext. Must match the wire contract.
func contentKeyFromShared(shared, kemCiphertext []byte) []byte {
	salt := sha256.Sum256(kemCiphertext)
	r := hkdf.New(sha512.New, shared, salt[:], []byte(hkdfContext))
	key := make([]byte, aesKeyLen)
	// ReadFull cannot fail for a 32-byte read from HKDF
	io.ReadFull(r, key)
	return key
}

func gcmSeal(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, iv, plaintext, nil), nil
}

func gcmOpen(key, iv, sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrIntegrity
	}
	return plaintext, nil
}

func b64(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func unb64(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
