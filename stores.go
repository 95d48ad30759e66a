package securedm

import (
	"context"
	"strings"
	"time"
)

// KeyRecord is what the persistence layer holds for one identity: the public
// key and the wrapped private key. There is no field for a raw private key,
// by construction.
type KeyRecord struct {
	// Suite identifies the cipher suite of the key pair.
	Suite string
	// PublicKey is the exportable public key material.
	PublicKey []byte
	// WrappedPrivateKey is the private key sealed under the owner's secret.
	// The storage layer alone cannot use it.
	WrappedPrivateKey []byte
}

// KeyStore is the durable identity-to-keys mapping, owned by the persistence
// layer. Implementations must treat records as immutable snapshots: a read
// returns the current record and the core never mutates stored values in
// place. A key pair is created once per identity and never rotated.
type KeyStore interface {
	// SaveKeys persists the key record for an identity.
	SaveKeys(ctx context.Context, identityID string, rec KeyRecord) error
	// Keys returns the record for an identity, or an error matching
	// ErrIdentityNotFound.
	Keys(ctx context.Context, identityID string) (KeyRecord, error)
}

// MessageRecord is one stored ciphertext message. The server side persists
// exactly this: routing metadata plus the opaque bundle, never plaintext.
type MessageRecord struct {
	// ID is the store-assigned record identifier.
	ID string
	// ConversationID is the canonical conversation key, see ConversationID.
	ConversationID string
	// Sender and Recipient are identity IDs.
	Sender    string
	Recipient string
	// Seq is the store-assigned monotonic sequence within the conversation.
	Seq uint64
	// SentAt is the server-side timestamp.
	SentAt time.Time
	// Bundle is the encrypted message bundle.
	Bundle Bundle
}

// MessageStore is the durable conversation-to-ciphertext mapping, owned by the
// persistence layer. Append-only ordering per conversation is the store's
// responsibility, not the crypto core's.
type MessageStore interface {
	// Append persists a record, assigning ID and Seq, and returns the
	// stored form.
	Append(ctx context.Context, rec MessageRecord) (MessageRecord, error)
	// Conversation returns an immutable snapshot of a conversation's
	// records in append order.
	Conversation(ctx context.Context, conversationID string) ([]MessageRecord, error)
}

// ConversationID returns the canonical conversation key for two identities:
// the IDs sorted and joined with ':'. It is order-independent, so both
// participants address the same sequence.
func ConversationID(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}
