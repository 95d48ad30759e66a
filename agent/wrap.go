package agent

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Wrap envelope parameters. Fixed by the wire contract: the securedm side
// must be able to unwrap what this device wraps and vice versa.
const (
	wrapMagic   = "SDMW1\n"
	wrapVersion = 1
	saltLen     = 16

	argonTime    = 2
	argonMemKB   = 64 * 1024
	argonThreads = 1
)

type wrapFile struct {
	Version     uint32 `json:"version"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// WrapPrivateKey seals the device's raw private key under the user secret so
// it can be synced or stored at rest. The output is ciphertext under an
// argon2id-derived key; the storage layer alone cannot use it.
func (a *Agent) WrapPrivateKey(private []byte, secret string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	key := argon2.IDKey([]byte(secret), salt, argonTime, argonMemKB, argonThreads, chacha20poly1305.KeySize)
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(&wrapFile{
		Version:     wrapVersion,
		KDF:         "argon2id",
		KDFTime:     argonTime,
		KDFMemoryKB: argonMemKB,
		KDFThreads:  argonThreads,
		Salt:        salt,
		Nonce:       nonce,
		Ciphertext:  aead.Seal(nil, nonce, private, nil),
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(wrapMagic), raw...), nil
}

// UnwrapPrivateKey recovers the raw private key from its wrapped form. A
// wrong secret fails authentication with ErrUnwrap before any key material
// is returned.
func (a *Agent) UnwrapPrivateKey(wrapped []byte, secret string) ([]byte, error) {
	if !bytes.HasPrefix(wrapped, []byte(wrapMagic)) {
		return nil, fmt.Errorf("%w: missing envelope prefix", ErrUnwrap)
	}

	var env wrapFile
	if err := json.Unmarshal(wrapped[len(wrapMagic):], &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnwrap, err)
	}
	if env.Version != wrapVersion || env.KDF != "argon2id" || len(env.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("%w: unsupported envelope", ErrUnwrap)
	}
	// Only the contract's fixed KDF parameters are accepted; deriving with
	// values taken from the envelope would hand an attacker control over
	// argon2's cost (panic at 0, unbounded allocation when huge).
	if env.KDFTime != argonTime || env.KDFMemoryKB != argonMemKB || env.KDFThreads != argonThreads || len(env.Salt) != saltLen {
		return nil, fmt.Errorf("%w: unsupported envelope", ErrUnwrap)
	}

	key := argon2.IDKey([]byte(secret), env.Salt, argonTime, argonMemKB, argonThreads, chacha20poly1305.KeySize)
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	private, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrUnwrap)
	}
	return private, nil
}
