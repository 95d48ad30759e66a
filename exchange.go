package securedm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minso/securedm-go/internal/keys"
)

// Exchange drives the reference/server-demo message path over the two
// collaborator stores. It holds no key material and no per-message state:
// keys are passed explicitly and every crypto operation is a pure function,
// so an Exchange is safe for concurrent use.
//
// On a real deployment the encrypt/decrypt half runs on user devices via the
// agent package; Exchange exists for the server-side reference path and for
// exercising the protocol end to end.
type Exchange struct {
	keyStore KeyStore
	msgStore MessageStore
	suite    string
	now      func() time.Time
}

// NewExchange creates an Exchange over the given stores.
func NewExchange(keyStore KeyStore, msgStore MessageStore, opts ...Option) (*Exchange, error) {
	if keyStore == nil {
		return nil, errors.New("key store is required")
	}
	if msgStore == nil {
		return nil, errors.New("message store is required")
	}

	cfg := exchangeConfig{suite: DefaultSuite, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.suite != SuiteRSAOAEP && cfg.suite != SuiteMLKEM {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, cfg.suite)
	}

	return &Exchange{
		keyStore: keyStore,
		msgStore: msgStore,
		suite:    cfg.suite,
		now:      cfg.now,
	}, nil
}

// CreateIdentity runs the identity-creation hook: generate a key pair, wrap
// the private half under the user secret, and persist the record. The
// returned pair contains the raw private key for the caller's transient use;
// only the wrapped form was persisted.
func (x *Exchange) CreateIdentity(ctx context.Context, identityID, secret string) (*KeyPair, error) {
	pair, err := GenerateKeyPair(x.suite)
	if err != nil {
		return nil, err
	}

	wrapped, err := WrapPrivateKey(pair.Private, secret)
	if err != nil {
		return nil, fmt.Errorf("wrap private key: %w", err)
	}

	rec := KeyRecord{
		Suite:             pair.Suite,
		PublicKey:         pair.Public,
		WrappedPrivateKey: wrapped,
	}
	if err := x.keyStore.SaveKeys(ctx, identityID, rec); err != nil {
		return nil, fmt.Errorf("persist keys for %s: %w", identityID, err)
	}
	return pair, nil
}

// PublicKey returns an identity's public key and its suite.
func (x *Exchange) PublicKey(ctx context.Context, identityID string) ([]byte, string, error) {
	rec, err := x.keyStore.Keys(ctx, identityID)
	if err != nil {
		return nil, "", err
	}
	return rec.PublicKey, rec.Suite, nil
}

// UnlockPrivateKey fetches the owner's wrapped private key and unwraps it
// with the secret. Intended for the key owner only; the access split is
// enforced by the collaborator, not here.
func (x *Exchange) UnlockPrivateKey(ctx context.Context, identityID, secret string) (*KeyPair, error) {
	rec, err := x.keyStore.Keys(ctx, identityID)
	if err != nil {
		return nil, err
	}
	private, err := UnwrapPrivateKey(rec.WrappedPrivateKey, secret)
	if err != nil {
		return nil, err
	}

	// A record whose key material does not match its suite is corrupt; the
	// unwrapped bytes must not be handed out as a usable pair.
	pair := &KeyPair{Suite: rec.Suite, Public: rec.PublicKey, Private: private}
	if err := keys.ValidatePair(&keys.Pair{Suite: pair.Suite, Public: pair.Public, Private: pair.Private}); err != nil {
		return nil, &UnwrapError{Err: err}
	}
	return pair, nil
}

// Send encrypts plaintext for the recipient and persists the resulting
// bundle. The store assigns ID and sequence; what it receives contains no
// plaintext and no key material.
func (x *Exchange) Send(ctx context.Context, senderID, recipientID string, plaintext []byte) (MessageRecord, error) {
	pub, suite, err := x.PublicKey(ctx, recipientID)
	if err != nil {
		return MessageRecord{}, err
	}

	bundle, err := Encrypt(plaintext, pub, suite)
	if err != nil {
		return MessageRecord{}, err
	}

	rec := MessageRecord{
		ConversationID: ConversationID(senderID, recipientID),
		Sender:         senderID,
		Recipient:      recipientID,
		SentAt:         x.now().UTC(),
		Bundle:         *bundle,
	}
	stored, err := x.msgStore.Append(ctx, rec)
	if err != nil {
		return MessageRecord{}, fmt.Errorf("persist message: %w", err)
	}
	return stored, nil
}

// Decrypt recovers the plaintext of a stored record with the reader's
// private key. Pure: it touches neither store.
func (x *Exchange) Decrypt(rec MessageRecord, own *KeyPair) ([]byte, error) {
	if own == nil {
		return nil, errors.New("private key pair is required")
	}
	return Decrypt(&rec.Bundle, own.Private)
}

// Message is one conversation entry after a decrypt attempt. Err is nil for
// a displayed message; otherwise it carries the typed failure and Plaintext
// is nil. A failed message never affects its neighbours. Outbound entries
// were encrypted for the peer and are not decryptable with the reader's key,
// so neither field is set for them.
type Message struct {
	Record    MessageRecord
	Plaintext []byte
	Err       error
	Outbound  bool
}

// ReadConversation fetches the conversation with peer and attempts to
// decrypt every record with the reader's private key. Decrypt failures are
// per-message: they are recorded on the entry, never returned as the
// function error. UI callers should render failed entries with a fixed
// "message could not be decrypted".
func (x *Exchange) ReadConversation(ctx context.Context, selfID, peerID string, own *KeyPair) ([]Message, error) {
	if own == nil {
		return nil, errors.New("private key pair is required")
	}

	records, err := x.msgStore.Conversation(ctx, ConversationID(selfID, peerID))
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	out := make([]Message, 0, len(records))
	for _, rec := range records {
		msg := Message{Record: rec, Outbound: rec.Sender == selfID}
		if !msg.Outbound {
			msg.Plaintext, msg.Err = Decrypt(&rec.Bundle, own.Private)
		}
		out = append(out, msg)
	}
	return out, nil
}
