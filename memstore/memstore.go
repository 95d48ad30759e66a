// Package memstore provides in-memory KeyStore and MessageStore adapters.
// They back the examples and tests; a real deployment plugs its persistence
// layer into the same interfaces. Both stores treat records as immutable:
// reads return copies, and messages are append-only per conversation.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	securedm "github.com/minso/securedm-go"
)

// KeyStore is an in-memory securedm.KeyStore.
type KeyStore struct {
	mu      sync.RWMutex
	records map[string]securedm.KeyRecord
}

// NewKeyStore returns an empty key store.
func NewKeyStore() *KeyStore {
	return &KeyStore{records: make(map[string]securedm.KeyRecord)}
}

// SaveKeys stores a copy of the record for the identity.
func (s *KeyStore) SaveKeys(_ context.Context, identityID string, rec securedm.KeyRecord) error {
	if identityID == "" {
		return fmt.Errorf("identity id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[identityID] = copyKeyRecord(rec)
	return nil
}

// Keys returns a copy of the identity's record.
func (s *KeyStore) Keys(_ context.Context, identityID string) (securedm.KeyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[identityID]
	if !ok {
		return securedm.KeyRecord{}, fmt.Errorf("%w: %s", securedm.ErrIdentityNotFound, identityID)
	}
	return copyKeyRecord(rec), nil
}

func copyKeyRecord(rec securedm.KeyRecord) securedm.KeyRecord {
	out := securedm.KeyRecord{Suite: rec.Suite}
	out.PublicKey = append([]byte(nil), rec.PublicKey...)
	out.WrappedPrivateKey = append([]byte(nil), rec.WrappedPrivateKey...)
	return out
}

// MessageStore is an in-memory securedm.MessageStore with append-only
// per-conversation ordering.
type MessageStore struct {
	mu            sync.RWMutex
	conversations map[string][]securedm.MessageRecord
}

// NewMessageStore returns an empty message store.
func NewMessageStore() *MessageStore {
	return &MessageStore{conversations: make(map[string][]securedm.MessageRecord)}
}

// Append assigns an ID and the next sequence number in the conversation,
// stores the record, and returns the stored form.
func (s *MessageStore) Append(_ context.Context, rec securedm.MessageRecord) (securedm.MessageRecord, error) {
	if rec.ConversationID == "" {
		return securedm.MessageRecord{}, fmt.Errorf("conversation id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.Seq = uint64(len(s.conversations[rec.ConversationID]) + 1)
	s.conversations[rec.ConversationID] = append(s.conversations[rec.ConversationID], rec)
	return rec, nil
}

// Conversation returns a snapshot of the conversation's records in append
// order. Mutating the returned slice does not affect the store.
func (s *MessageStore) Conversation(_ context.Context, conversationID string) ([]securedm.MessageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.conversations[conversationID]
	out := make([]securedm.MessageRecord, len(records))
	copy(out, records)
	return out, nil
}
