package hybrid

const (
	// HKDFContext is the context string used in HKDF key derivation for
	// domain separation in the ML-KEM suite.
	HKDFContext = "minso:dm:v1"

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// IVSize is the size of an AES-GCM nonce in bytes.
	IVSize = 12
	// TagSize is the size of an AES-GCM authentication tag in bytes.
	TagSize = 16

	// MLKEMCiphertextSize is the size of an ML-KEM-768 ciphertext in bytes.
	MLKEMCiphertextSize = 1088
	// MLKEMSharedKeySize is the size of the ML-KEM-768 shared secret in bytes.
	MLKEMSharedKeySize = 32
)
