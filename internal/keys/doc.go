// Package keys generates identity key pairs and wraps private keys under a
// user secret for storage at rest.
//
// Generation covers the closed suite set: RSA-2048 (PKIX/PKCS#8 DER
// encodings) and ML-KEM-768 (raw circl encodings). Wrapping derives a key
// from the secret with argon2id and seals the private key bytes with
// XChaCha20-Poly1305, so a wrapped key is unusable without the correct
// secret and a wrong secret is detected before the caller can mistake the
// output for key material.
package keys
