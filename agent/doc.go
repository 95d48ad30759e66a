// Package agent is the client-device implementation of the MinSo DM
// protocol. It runs where the user's private key physically resides, so the
// server-side persistence layer never observes plaintext or raw private
// keys.
//
// This is a trust-boundary duplication, not shared code: the package
// implements the wire contract documented in the securedm package (same
// suites, same OAEP padding, same GCM mode and IV length, same base64url
// encoding, same wrap envelope) without importing any of securedm's
// internal packages. A bundle produced by either implementation decrypts on
// the other; tests in the root package hold that property.
//
// An Agent carries only its configured suite. Keys are passed explicitly to
// every call; there is no key cache and no session state, so any in-flight
// call can be abandoned with nothing to clean up.
//
// The per-message lifecycle on the client is tracked by [Lifecycle]:
//
//	Composed → Encrypted → Persisted → Delivered → DecryptAttempted
//	                                              → Displayed | DecryptFailed
//
// with no backward transitions; DecryptFailed is terminal for that message
// only and never affects the rest of the conversation.
package agent
