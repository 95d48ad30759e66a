// Package hybrid is the reference implementation of the MinSo DM hybrid
// encryption protocol: a fresh AES-256-GCM key and IV per message, with the
// key wrapped for the recipient by RSA-OAEP or encapsulated with ML-KEM-768
// plus HKDF-SHA-512, depending on the suite.
//
// The agent package implements the same wire protocol independently for the
// client device; the two share only the written contract in the securedm
// package documentation. Keep any change here bit-for-bit compatible with
// that contract.
package hybrid
