package securedm_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	securedm "github.com/minso/securedm-go"
	"github.com/minso/securedm-go/memstore"
)

func TestExportImport_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	x, _, _ := newExchange(t)

	pair, err := x.CreateIdentity(ctx, "alice", "secret")
	if err != nil {
		t.Fatal(err)
	}

	exported, err := x.ExportIdentity(ctx, "alice")
	if err != nil {
		t.Fatalf("ExportIdentity() error = %v", err)
	}
	if exported.Version != securedm.ExportVersion {
		t.Errorf("Version = %d, want %d", exported.Version, securedm.ExportVersion)
	}
	if err := exported.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	// The export must never contain raw private key material, in any
	// encoding used by the format.
	raw, err := json.Marshal(exported)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, pair.Private) {
		t.Error("export contains raw private key bytes")
	}
	if bytes.Contains(raw, []byte(base64.RawURLEncoding.EncodeToString(pair.Private))) {
		t.Error("export contains base64 of the raw private key")
	}

	// Restore on a second deployment and make sure the identity works.
	y, _, _ := newExchange(t)
	if err := y.ImportIdentity(ctx, exported); err != nil {
		t.Fatalf("ImportIdentity() error = %v", err)
	}

	restored, err := y.UnlockPrivateKey(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("UnlockPrivateKey() after import error = %v", err)
	}
	if !bytes.Equal(restored.Private, pair.Private) {
		t.Error("restored private key differs from original")
	}
}

func TestExportIdentity_UnknownIdentity(t *testing.T) {
	t.Parallel()
	x, _, _ := newExchange(t)

	_, err := x.ExportIdentity(context.Background(), "ghost")
	if !errors.Is(err, securedm.ErrIdentityNotFound) {
		t.Errorf("ExportIdentity() error = %v, want ErrIdentityNotFound", err)
	}
}

func TestExportedIdentity_Validate(t *testing.T) {
	t.Parallel()
	good := func() *securedm.ExportedIdentity {
		return &securedm.ExportedIdentity{
			Version:           securedm.ExportVersion,
			IdentityID:        "alice",
			Suite:             securedm.SuiteRSAOAEP,
			PublicKey:         base64.RawURLEncoding.EncodeToString([]byte("pub")),
			WrappedPrivateKey: base64.RawURLEncoding.EncodeToString([]byte("wrapped")),
		}
	}

	if err := good().Validate(); err != nil {
		t.Fatalf("valid export failed validation: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*securedm.ExportedIdentity)
	}{
		{"wrong version", func(e *securedm.ExportedIdentity) { e.Version = 2 }},
		{"missing identity", func(e *securedm.ExportedIdentity) { e.IdentityID = "" }},
		{"unknown suite", func(e *securedm.ExportedIdentity) { e.Suite = "XTEA" }},
		{"missing public key", func(e *securedm.ExportedIdentity) { e.PublicKey = "" }},
		{"bad public key encoding", func(e *securedm.ExportedIdentity) { e.PublicKey = "%!" }},
		{"missing wrapped key", func(e *securedm.ExportedIdentity) { e.WrappedPrivateKey = "" }},
		{"bad wrapped key encoding", func(e *securedm.ExportedIdentity) { e.WrappedPrivateKey = "%!" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := good()
			tt.mutate(e)
			if err := e.Validate(); !errors.Is(err, securedm.ErrInvalidExport) {
				t.Errorf("Validate() error = %v, want ErrInvalidExport", err)
			}
		})
	}
}

// An export can be structurally valid JSON-wise (every field decodes) while
// carrying a public key that is not a valid key for its suite. Import must
// reject it instead of persisting an identity that fails at first send.
func TestImportIdentity_RejectsMalformedPublicKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ks := memstore.NewKeyStore()
	x, err := securedm.NewExchange(ks, memstore.NewMessageStore())
	if err != nil {
		t.Fatal(err)
	}

	bad := &securedm.ExportedIdentity{
		Version:           securedm.ExportVersion,
		IdentityID:        "alice",
		Suite:             securedm.SuiteMLKEM,
		PublicKey:         base64.RawURLEncoding.EncodeToString([]byte("wrong size for ML-KEM")),
		WrappedPrivateKey: base64.RawURLEncoding.EncodeToString([]byte("wrapped")),
	}
	if err := bad.Validate(); err != nil {
		t.Fatalf("field-level validation unexpectedly failed: %v", err)
	}

	if err := x.ImportIdentity(ctx, bad); !errors.Is(err, securedm.ErrInvalidExport) {
		t.Errorf("ImportIdentity() error = %v, want ErrInvalidExport", err)
	}
	if _, err := ks.Keys(ctx, "alice"); !errors.Is(err, securedm.ErrIdentityNotFound) {
		t.Error("rejected import left a key record behind")
	}
}

func TestImportIdentity_RejectsInvalid(t *testing.T) {
	t.Parallel()
	ks := memstore.NewKeyStore()
	x, err := securedm.NewExchange(ks, memstore.NewMessageStore())
	if err != nil {
		t.Fatal(err)
	}

	bad := &securedm.ExportedIdentity{Version: 99, IdentityID: "alice"}
	if err := x.ImportIdentity(context.Background(), bad); !errors.Is(err, securedm.ErrInvalidExport) {
		t.Errorf("ImportIdentity() error = %v, want ErrInvalidExport", err)
	}

	// Nothing may have been persisted for the rejected import.
	if _, err := ks.Keys(context.Background(), "alice"); !errors.Is(err, securedm.ErrIdentityNotFound) {
		t.Error("rejected import left a key record behind")
	}
}
