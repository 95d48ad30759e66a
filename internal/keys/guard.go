package keys

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	wrapVersion = 1
	wrapSaltLen = 16
	wrapPrefix  = "SDMW1\n"

	// argon2id parameters; part of the wire contract, not tunable per call.
	kdfTime     = 2
	kdfMemoryKB = 64 * 1024
	kdfThreads  = 1
)

var (
	// ErrUnwrapAuth is returned when unwrapping fails authentication:
	// wrong secret or tampered wrapped key.
	ErrUnwrapAuth = errors.New("private key unwrap authentication failed")

	// ErrWrapInvalid is returned when the wrapped envelope is structurally
	// invalid: missing prefix, bad JSON, or unsupported parameters.
	ErrWrapInvalid = errors.New("wrapped private key envelope is invalid")
)

// wrapEnvelope is the persisted form of a wrapped private key. Parameters
// are stored alongside the ciphertext so the format stays decodable if the
// defaults ever change.
type wrapEnvelope struct {
	Version     uint32 `json:"version"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// Wrap seals private key bytes under the user secret. The output is safe to
// persist: without the secret it is ciphertext under a password-derived key.
// Wrapping the same key twice yields different outputs (fresh salt+nonce).
func Wrap(private []byte, secret string) ([]byte, error) {
	salt := make([]byte, wrapSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := deriveWrapKey(secret, salt)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ciphertext := aead.Seal(nil, nonce, private, nil)

	env := &wrapEnvelope{
		Version:     wrapVersion,
		KDF:         "argon2id",
		KDFTime:     kdfTime,
		KDFMemoryKB: kdfMemoryKB,
		KDFThreads:  kdfThreads,
		Salt:        salt,
		Nonce:       nonce,
		Ciphertext:  ciphertext,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(wrapPrefix), raw...), nil
}

// Unwrap recovers private key bytes from a wrapped envelope. A wrong secret
// or a tampered envelope fails with ErrUnwrapAuth before any key material is
// returned.
func Unwrap(wrapped []byte, secret string) ([]byte, error) {
	if !bytes.HasPrefix(wrapped, []byte(wrapPrefix)) {
		return nil, ErrWrapInvalid
	}
	var env wrapEnvelope
	if err := json.Unmarshal(wrapped[len(wrapPrefix):], &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrapInvalid, err)
	}
	if env.Version != wrapVersion || env.KDF != "argon2id" {
		return nil, ErrWrapInvalid
	}
	// The KDF parameters are fixed by the wire contract. An envelope carrying
	// anything else is hostile or corrupt; deriving with untrusted parameters
	// would let a crafted envelope crash or exhaust memory.
	if env.KDFTime != kdfTime || env.KDFMemoryKB != kdfMemoryKB || env.KDFThreads != kdfThreads {
		return nil, ErrWrapInvalid
	}
	if len(env.Salt) != wrapSaltLen || len(env.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, ErrWrapInvalid
	}

	key := deriveWrapKey(secret, env.Salt)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	private, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrUnwrapAuth
	}
	return private, nil
}

func deriveWrapKey(secret string, salt []byte) []byte {
	return argon2.IDKey([]byte(secret), salt, kdfTime, kdfMemoryKB, kdfThreads, chacha20poly1305.KeySize)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
