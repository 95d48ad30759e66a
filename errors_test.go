package securedm

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrKeyGeneration", ErrKeyGeneration},
		{"ErrUnwrap", ErrUnwrap},
		{"ErrKeyUnwrap", ErrKeyUnwrap},
		{"ErrIntegrity", ErrIntegrity},
		{"ErrEncoding", ErrEncoding},
		{"ErrUnknownSuite", ErrUnknownSuite},
		{"ErrIdentityNotFound", ErrIdentityNotFound},
		{"ErrInvalidExport", ErrInvalidExport},
	}

	for _, tt := range sentinels {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil || tt.err.Error() == "" {
				t.Error("sentinel is nil or has empty message")
			}
			wrapped := fmt.Errorf("context: %w", tt.err)
			if !errors.Is(wrapped, tt.err) {
				t.Error("wrapped sentinel does not match with errors.Is")
			}
		})
	}
}

func TestKeyGenError(t *testing.T) {
	t.Parallel()
	inner := errors.New("entropy pool exhausted")
	err := &KeyGenError{Suite: SuiteRSAOAEP, Err: inner}

	if !errors.Is(err, ErrKeyGeneration) {
		t.Error("KeyGenError does not match ErrKeyGeneration")
	}
	if !errors.Is(err, inner) {
		t.Error("KeyGenError does not unwrap to its cause")
	}

	var marker SecureDMError
	if !errors.As(err, &marker) {
		t.Error("KeyGenError does not implement SecureDMError")
	}
}

func TestUnwrapError(t *testing.T) {
	t.Parallel()
	err := &UnwrapError{Err: errors.New("authentication failed")}

	if !errors.Is(err, ErrUnwrap) {
		t.Error("UnwrapError does not match ErrUnwrap")
	}
	if errors.Is(err, ErrIntegrity) {
		t.Error("UnwrapError matched an unrelated sentinel")
	}
}

func TestDecryptError_StageMapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		stage   string
		want    error
		notWant error
	}{
		{StageDecode, ErrEncoding, ErrIntegrity},
		{StageKeyUnwrap, ErrKeyUnwrap, ErrEncoding},
		{StageContent, ErrIntegrity, ErrKeyUnwrap},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			err := &DecryptError{Stage: tt.stage, Err: errors.New("cause")}
			if !errors.Is(err, tt.want) {
				t.Errorf("stage %s does not match %v", tt.stage, tt.want)
			}
			if errors.Is(err, tt.notWant) {
				t.Errorf("stage %s matched unrelated %v", tt.stage, tt.notWant)
			}
		})
	}
}

func TestDecryptError_Message(t *testing.T) {
	t.Parallel()
	err := &DecryptError{Stage: StageContent, Err: errors.New("tag mismatch")}
	if err.Error() != "decrypt failed at content: tag mismatch" {
		t.Errorf("Error() = %q", err.Error())
	}
}
