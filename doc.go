// Package securedm implements the end-to-end encrypted direct messaging core
// of the MinSo platform: per-identity key pair issuance, passphrase wrapping
// of private keys, and hybrid message encryption. The server-side persistence
// layer only ever handles public keys, wrapped private keys, and ciphertext
// bundles; plaintext and raw private keys never cross that boundary.
//
// # Architecture
//
// The package is consumed through four narrow contracts (see [KeyStore],
// [MessageStore], and [Exchange]):
//
//   - Identity creation: generate a key pair, wrap the private half under the
//     user's secret, persist {identity, public key, wrapped private key}.
//   - Key retrieval: public keys for anyone, the wrapped private key for the
//     owner only.
//   - Message send: plaintext in, three-field ciphertext bundle out; the
//     collaborator persists the bundle with sender, recipient, and sequence.
//   - Message read: stored bundle plus the reader's unwrapped private key in,
//     plaintext or a typed failure out.
//
// The same protocol is implemented twice on purpose. This package (through
// its internal packages) is the reference/server-demo path; the agent
// subpackage is an independent client-device implementation that shares only
// the wire contract below. A message encrypted by either side decrypts on
// the other.
//
// # Cipher Suites
//
// Suites form a closed set, identified by string and carried in key records
// and bundles. Unknown identifiers fail before any cryptography runs.
//
//   - RSA-2048-OAEP-SHA-256:AES-256-GCM (default): RSA-2048 keys, public key
//     as PKIX DER, private key as PKCS#8 DER. The one-time AES key is wrapped
//     with RSA-OAEP using SHA-256 and an empty label.
//
//   - ML-KEM-768:HKDF-SHA-512:AES-256-GCM: ML-KEM-768 keys in the raw circl
//     encodings (1184/2400 bytes). encryptedKey is the 1088-byte KEM
//     ciphertext; the AES key is derived with HKDF-SHA-512 using the shared
//     secret, salt = SHA-256(KEM ciphertext), info = "minso:dm:v1".
//
// Both suites encrypt the message body with AES-256-GCM using a fresh 32-byte
// key and a fresh 12-byte IV per message; the 16-byte authentication tag is
// appended to the ciphertext.
//
// # Wire Contract
//
// A bundle carries four text fields. All byte fields are base64url without
// padding (RFC 4648 section 5):
//
//	suite            cipher suite identifier
//	encryptedKey     wrapped or encapsulated one-time symmetric key
//	iv               12-byte GCM nonce, unique per message
//	encryptedContent AES-256-GCM ciphertext || 16-byte tag
//
// A wrapped private key is the ASCII prefix "SDMW1\n" followed by a JSON
// envelope {version: 1, kdf: "argon2id", kdf_time: 2, kdf_memory_kb: 65536,
// kdf_threads: 1, salt, nonce, ciphertext}. The wrap key is derived with
// argon2id over the UTF-8 secret and the 16-byte salt; the AEAD is
// XChaCha20-Poly1305 over the private key bytes. A wrong secret fails
// authentication; it never yields usable-looking key material.
//
// # Error Model
//
// Failures are typed and recoverable except [ErrKeyGeneration], which means
// the platform's secure randomness source is unavailable. A failed decrypt is
// a per-message condition: surface it as "message could not be decrypted" and
// keep the session alive. With the ML-KEM suite a private key mismatch
// surfaces as [ErrIntegrity] rather than [ErrKeyUnwrap], because ML-KEM
// decapsulation rejects implicitly.
//
// # Concurrency
//
// All cryptographic operations here are synchronous, stateless, pure
// functions of their inputs. Key generation and unwrapping are expensive;
// run them off the request path. There is no shared mutable state and no key
// cache. Keys are always passed explicitly.
package securedm
