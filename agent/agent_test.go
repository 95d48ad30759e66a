package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func newAgent(t *testing.T, opts ...Option) *Agent {
	t.Helper()
	a, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestNew_DefaultSuite(t *testing.T) {
	t.Parallel()
	a := newAgent(t)
	if a.Suite() != DefaultSuite {
		t.Errorf("Suite() = %q, want %q", a.Suite(), DefaultSuite)
	}
}

func TestNew_UnknownSuite(t *testing.T) {
	t.Parallel()
	if _, err := New(WithSuite("3DES")); !errors.Is(err, ErrUnknownSuite) {
		t.Errorf("New() error = %v, want ErrUnknownSuite", err)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, suite := range []string{SuiteRSAOAEP, SuiteMLKEM} {
		suite := suite
		t.Run(suite, func(t *testing.T) {
			t.Parallel()
			a := newAgent(t, WithSuite(suite))

			pair, err := a.GenerateKeyPair()
			if err != nil {
				t.Fatalf("GenerateKeyPair() error = %v", err)
			}

			plaintext := []byte("hello from the device")
			bundle, err := a.Encrypt(plaintext, pair.Public)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if bundle.Suite != suite {
				t.Errorf("bundle suite = %q, want %q", bundle.Suite, suite)
			}

			got, err := a.Decrypt(bundle, pair.Private)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("round trip mismatch: got %q", got)
			}
		})
	}
}

func TestEncrypt_FreshIVPerMessage(t *testing.T) {
	t.Parallel()
	a := newAgent(t)
	pair, err := a.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	b1, err := a.Encrypt([]byte("same"), pair.Public)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := a.Encrypt([]byte("same"), pair.Public)
	if err != nil {
		t.Fatal(err)
	}
	if b1.IV == b2.IV {
		t.Error("IV reused across messages")
	}
	if b1.EncryptedContent == b2.EncryptedContent {
		t.Error("identical ciphertext for two encryptions")
	}
}

func TestDecrypt_TamperedTag(t *testing.T) {
	t.Parallel()
	a := newAgent(t)
	pair, err := a.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	bundle, err := a.Encrypt([]byte("authentic"), pair.Public)
	if err != nil {
		t.Fatal(err)
	}

	sealed, err := unb64(bundle.EncryptedContent)
	if err != nil {
		t.Fatal(err)
	}
	sealed[len(sealed)-1] ^= 0x80 // last tag byte
	bundle.EncryptedContent = b64(sealed)

	if _, err := a.Decrypt(bundle, pair.Private); !errors.Is(err, ErrIntegrity) {
		t.Errorf("Decrypt() error = %v, want ErrIntegrity", err)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	t.Parallel()
	a := newAgent(t)
	alice, err := a.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	bob, err := a.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	bundle, err := a.Encrypt([]byte("for alice"), alice.Public)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.Decrypt(bundle, bob.Private); !errors.Is(err, ErrKeyUnwrap) {
		t.Errorf("Decrypt() error = %v, want ErrKeyUnwrap", err)
	}
}

func TestDecrypt_MalformedBundle(t *testing.T) {
	t.Parallel()
	a := newAgent(t)
	pair, err := a.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	good, err := a.Encrypt([]byte("hello"), pair.Public)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*Bundle)
		want   error
	}{
		{"unknown suite", func(b *Bundle) { b.Suite = "ROT13" }, ErrUnknownSuite},
		{"bad base64 key", func(b *Bundle) { b.EncryptedKey = "!" }, ErrEncoding},
		{"bad base64 iv", func(b *Bundle) { b.IV = "!" }, ErrEncoding},
		{"short iv", func(b *Bundle) { b.IV = b64([]byte{1}) }, ErrEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := *good
			tt.mutate(&bundle)
			if _, err := a.Decrypt(&bundle, pair.Private); !errors.Is(err, tt.want) {
				t.Errorf("Decrypt() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWrapUnwrapPrivateKey(t *testing.T) {
	t.Parallel()
	a := newAgent(t)
	pair, err := a.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	wrapped, err := a.WrapPrivateKey(pair.Private, "device secret")
	if err != nil {
		t.Fatalf("WrapPrivateKey() error = %v", err)
	}
	if bytes.Contains(wrapped, pair.Private) {
		t.Error("wrapped envelope contains the raw private key")
	}

	got, err := a.UnwrapPrivateKey(wrapped, "device secret")
	if err != nil {
		t.Fatalf("UnwrapPrivateKey() error = %v", err)
	}
	if !bytes.Equal(got, pair.Private) {
		t.Error("unwrapped key differs from original")
	}

	if _, err := a.UnwrapPrivateKey(wrapped, "other secret"); !errors.Is(err, ErrUnwrap) {
		t.Errorf("UnwrapPrivateKey() error = %v, want ErrUnwrap", err)
	}
}

// A wrapped envelope is attacker-supplied input on the device. KDF
// parameters other than the contract's fixed values must be rejected before
// derivation: zero time or threads panics inside argon2, a huge memory cost
// is an allocation bomb.
func TestUnwrapPrivateKey_HostileEnvelope(t *testing.T) {
	t.Parallel()
	a := newAgent(t)
	pair, err := a.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	wrapped, err := a.WrapPrivateKey(pair.Private, "secret")
	if err != nil {
		t.Fatal(err)
	}

	reissue := func(mutate func(*wrapFile)) []byte {
		var env wrapFile
		if err := json.Unmarshal(wrapped[len(wrapMagic):], &env); err != nil {
			t.Fatal(err)
		}
		mutate(&env)
		raw, err := json.Marshal(&env)
		if err != nil {
			t.Fatal(err)
		}
		return append([]byte(wrapMagic), raw...)
	}

	tests := []struct {
		name   string
		mutate func(*wrapFile)
	}{
		{"zero kdf time", func(e *wrapFile) { e.KDFTime = 0 }},
		{"zero kdf threads", func(e *wrapFile) { e.KDFThreads = 0 }},
		{"inflated kdf memory", func(e *wrapFile) { e.KDFMemoryKB = 1 << 30 }},
		{"lowered kdf time", func(e *wrapFile) { e.KDFTime = 1 }},
		{"short salt", func(e *wrapFile) { e.Salt = e.Salt[:4] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.UnwrapPrivateKey(reissue(tt.mutate), "secret"); !errors.Is(err, ErrUnwrap) {
				t.Errorf("UnwrapPrivateKey() error = %v, want ErrUnwrap", err)
			}
		})
	}
}

func TestBundle_JSONShape(t *testing.T) {
	t.Parallel()
	raw, err := json.Marshal(&Bundle{
		Suite:            SuiteRSAOAEP,
		EncryptedKey:     "a",
		IV:               "b",
		EncryptedContent: "c",
	})
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"suite", "encryptedKey", "iv", "encryptedContent"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("marshaled bundle missing field %q", key)
		}
	}
}
