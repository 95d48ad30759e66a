package securedm

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/minso/securedm-go/internal/keys"
)

// ExportVersion is the current identity export format version.
const ExportVersion = 1

// ExportedIdentity contains everything needed to move an identity to
// another device. The private key only ever appears in its wrapped form:
// the export is unusable without the owner's secret, so it is safe to
// transfer over untrusted channels in the same sense as the key store.
type ExportedIdentity struct {
	// Version is the export format version. MUST be 1.
	Version int `json:"version"`
	// IdentityID is the identity this key material belongs to. Non-empty.
	IdentityID string `json:"identityId"`
	// Suite is the cipher suite of the key pair. Must be a known suite.
	Suite string `json:"suite"`
	// PublicKey is the public key material, base64url without padding.
	PublicKey string `json:"publicKey"`
	// WrappedPrivateKey is the wrapped private key envelope, base64url
	// without padding. Never the raw private key.
	WrappedPrivateKey string `json:"wrappedPrivateKey"`
	// ExportedAt is the export timestamp. Informational only.
	ExportedAt time.Time `json:"exportedAt"`
}

// Validate checks that the exported data is structurally valid.
// Validation is ordered: version, identity, suite, then key fields.
func (e *ExportedIdentity) Validate() error {
	if e.Version != ExportVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidExport, e.Version, ExportVersion)
	}

	if e.IdentityID == "" {
		return fmt.Errorf("%w: identityId is required", ErrInvalidExport)
	}

	if e.Suite != SuiteRSAOAEP && e.Suite != SuiteMLKEM {
		return fmt.Errorf("%w: unknown suite %q", ErrInvalidExport, e.Suite)
	}

	if e.PublicKey == "" {
		return fmt.Errorf("%w: publicKey is required", ErrInvalidExport)
	}
	if _, err := base64.RawURLEncoding.DecodeString(e.PublicKey); err != nil {
		return fmt.Errorf("%w: invalid publicKey encoding", ErrInvalidExport)
	}

	if e.WrappedPrivateKey == "" {
		return fmt.Errorf("%w: wrappedPrivateKey is required", ErrInvalidExport)
	}
	if _, err := base64.RawURLEncoding.DecodeString(e.WrappedPrivateKey); err != nil {
		return fmt.Errorf("%w: invalid wrappedPrivateKey encoding", ErrInvalidExport)
	}

	return nil
}

// ExportIdentity reads an identity's stored keys and returns the exportable
// form. The raw private key is not part of the export and is not recoverable
// from it without the owner's secret.
func (x *Exchange) ExportIdentity(ctx context.Context, identityID string) (*ExportedIdentity, error) {
	rec, err := x.keyStore.Keys(ctx, identityID)
	if err != nil {
		return nil, err
	}

	return &ExportedIdentity{
		Version:           ExportVersion,
		IdentityID:        identityID,
		Suite:             rec.Suite,
		PublicKey:         base64.RawURLEncoding.EncodeToString(rec.PublicKey),
		WrappedPrivateKey: base64.RawURLEncoding.EncodeToString(rec.WrappedPrivateKey),
		ExportedAt:        x.now().UTC(),
	}, nil
}

// ImportIdentity validates exported data and persists it as the identity's
// key record, restoring the identity on this deployment's key store.
func (x *Exchange) ImportIdentity(ctx context.Context, data *ExportedIdentity) error {
	if err := data.Validate(); err != nil {
		return err
	}

	// Validate() already verified these decode
	pub, _ := base64.RawURLEncoding.DecodeString(data.PublicKey)
	wrapped, _ := base64.RawURLEncoding.DecodeString(data.WrappedPrivateKey)

	// The public key must be structurally valid for the declared suite, or
	// the imported identity would only fail later, at first send.
	if err := keys.ValidatePublicKey(data.Suite, pub); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}

	rec := KeyRecord{
		Suite:             data.Suite,
		PublicKey:         pub,
		WrappedPrivateKey: wrapped,
	}
	if err := x.keyStore.SaveKeys(ctx, data.IdentityID, rec); err != nil {
		return fmt.Errorf("persist keys for %s: %w", data.IdentityID, err)
	}
	return nil
}
