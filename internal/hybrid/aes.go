package hybrid

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// sealAESGCM encrypts plaintext with AES-256-GCM.
// Returns: ciphertext || tag (16 bytes).
func sealAESGCM(key, iv, plaintext []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("invalid key size: got %d, want %d", len(key), AESKeySize)
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("invalid iv size: got %d, want %d", len(iv), IVSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm.Seal(nil, iv, plaintext, nil), nil
}

// openAESGCM decrypts ciphertext || tag with AES-256-GCM. A tag verification
// failure is reported as ErrIntegrity.
func openAESGCM(key, iv, ciphertext []byte) ([]byte, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("invalid key size: got %d, want %d", len(key), AESKeySize)
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("invalid iv size: got %d, want %d", len(iv), IVSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrIntegrity
	}
	return plaintext, nil
}
