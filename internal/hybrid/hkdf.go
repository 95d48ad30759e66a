package hybrid

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// deriveContentKey derives the AES-256 key for the ML-KEM suite.
//
// The key derivation uses:
//   - IKM: the KEM shared secret
//   - Salt: SHA-256 hash of the KEM ciphertext
//   - Info: the HKDFContext string
//
// This binds the content key to the exact encapsulation it came from.
func deriveContentKey(sharedSecret, ctKem []byte) ([]byte, error) {
	saltHash := sha256.Sum256(ctKem)

	reader := hkdf.New(sha512.New, sharedSecret, saltHash[:], []byte(HKDFContext))
	key := make([]byte, AESKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}
