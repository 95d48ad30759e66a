package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"io"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// Cipher suite identifiers. The set is closed: wire compatibility depends on
// a small, enumerable set of suites, so new algorithms are added here, never
// through a plugin seam.
const (
	SuiteRSAOAEP = "RSA-2048-OAEP-SHA-256:AES-256-GCM"
	SuiteMLKEM   = "ML-KEM-768:HKDF-SHA-512:AES-256-GCM"
)

const (
	// RSAKeyBits is the RSA modulus size. 2048 keeps the asymmetric scheme
	// the strength bottleneck relative to AES-256.
	RSAKeyBits = 2048

	// MLKEMPublicKeySize is the size of an ML-KEM-768 public key in bytes.
	MLKEMPublicKeySize = 1184
	// MLKEMSecretKeySize is the size of an ML-KEM-768 secret key in bytes.
	MLKEMSecretKeySize = 2400
)

var (
	// ErrUnknownSuite is returned for a suite identifier outside the set.
	ErrUnknownSuite = errors.New("unknown cipher suite")

	// ErrGenerate is returned when key material cannot be produced, which
	// means the secure randomness source is unavailable.
	ErrGenerate = errors.New("key pair generation failed")
)

// randReader is the random source used for key generation.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

func reader() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}

// Pair holds the exportable encodings of one identity key pair.
// Private is the raw, transient form. It must never be persisted; only the
// output of Wrap may cross the storage boundary.
type Pair struct {
	// Suite identifies the cipher suite the pair belongs to.
	Suite string
	// Public is the public key: PKIX DER for RSA, raw bytes for ML-KEM.
	Public []byte
	// Private is the private key: PKCS#8 DER for RSA, raw bytes for ML-KEM.
	Private []byte
}

// Generate produces a fresh key pair for the given suite.
func Generate(suite string) (*Pair, error) {
	switch suite {
	case SuiteRSAOAEP:
		return generateRSA()
	case SuiteMLKEM:
		return generateMLKEM()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, suite)
	}
}

func generateRSA() (*Pair, error) {
	key, err := rsa.GenerateKey(reader(), RSAKeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	priv, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	return &Pair{Suite: SuiteRSAOAEP, Public: pub, Private: priv}, nil
}

func generateMLKEM() (*Pair, error) {
	pub, priv, err := mlkem768.GenerateKeyPair(randReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	// MarshalBinary never fails for valid keys from GenerateKeyPair
	pubBytes, _ := pub.MarshalBinary()
	privBytes, _ := priv.MarshalBinary()

	return &Pair{Suite: SuiteMLKEM, Public: pubBytes, Private: privBytes}, nil
}

// ValidatePublicKey checks that public key material has the correct
// structure for its suite.
func ValidatePublicKey(suite string, public []byte) error {
	if len(public) == 0 {
		return errors.New("empty public key")
	}

	switch suite {
	case SuiteRSAOAEP:
		pub, err := x509.ParsePKIXPublicKey(public)
		if err != nil {
			return fmt.Errorf("parse public key: %w", err)
		}
		if _, ok := pub.(*rsa.PublicKey); !ok {
			return fmt.Errorf("public key is not RSA")
		}
		return nil
	case SuiteMLKEM:
		if len(public) != MLKEMPublicKeySize {
			return fmt.Errorf("public key size %d, want %d", len(public), MLKEMPublicKeySize)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSuite, suite)
	}
}

// ValidatePair checks that a pair has the correct structure for its suite.
func ValidatePair(p *Pair) error {
	if p == nil || len(p.Public) == 0 || len(p.Private) == 0 {
		return fmt.Errorf("%w: empty key material", ErrGenerate)
	}
	if err := ValidatePublicKey(p.Suite, p.Public); err != nil {
		return err
	}

	switch p.Suite {
	case SuiteRSAOAEP:
		priv, err := x509.ParsePKCS8PrivateKey(p.Private)
		if err != nil {
			return fmt.Errorf("parse private key: %w", err)
		}
		if _, ok := priv.(*rsa.PrivateKey); !ok {
			return fmt.Errorf("private key is not RSA")
		}
		return nil
	case SuiteMLKEM:
		if len(p.Private) != MLKEMSecretKeySize {
			return fmt.Errorf("secret key size %d, want %d", len(p.Private), MLKEMSecretKeySize)
		}
		var priv mlkem768.PrivateKey
		if err := priv.Unpack(p.Private); err != nil {
			return fmt.Errorf("unpack secret key: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSuite, p.Suite)
	}
}

// KnownSuite reports whether the identifier is in the supported set.
func KnownSuite(suite string) bool {
	return suite == SuiteRSAOAEP || suite == SuiteMLKEM
}
