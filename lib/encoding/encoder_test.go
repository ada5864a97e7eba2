package encoding

import (
	"errors"
	"testing"
)

func testState() State {
	return State{
		Tag: "x-widget",
		Attrs: []Attribute{
			{Name: "label", Value: "Hi"},
			{Name: "open", Value: ""},
		},
	}
}

func TestNewEncoder(t *testing.T) {
	// Should work with any key length (derives 32-byte key)
	if _, err := NewEncoder([]byte("short")); err != nil {
		t.Fatalf("NewEncoder with short key failed: %v", err)
	}
	if _, err := NewEncoder([]byte("this-is-a-32-byte-key-for-aes!!!")); err != nil {
		t.Fatalf("NewEncoder with 32-byte key failed: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	for _, sensitive := range []bool{false, true} {
		encoded, err := enc.Encode(testState(), sensitive)
		if err != nil {
			t.Fatalf("Encode(sensitive=%v) failed: %v", sensitive, err)
		}

		decoded, err := enc.Decode(encoded, sensitive)
		if err != nil {
			t.Fatalf("Decode(sensitive=%v) failed: %v", sensitive, err)
		}

		if decoded.Tag != "x-widget" {
			t.Errorf("Tag = %q, want x-widget", decoded.Tag)
		}
		if v, ok := decoded.Get("label"); !ok || v != "Hi" {
			t.Errorf("label = %q, %v", v, ok)
		}
		if v, ok := decoded.Get("open"); !ok || v != "" {
			t.Errorf("open = %q, %v", v, ok)
		}
		if _, ok := decoded.Get("missing"); ok {
			t.Error("unexpected attribute")
		}
	}
}

func TestSignatureVerificationFailure(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	encoded, err := enc.Encode(testState(), false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Tamper with the encoded string
	tampered := encoded[:len(encoded)-2] + "XX"
	if _, err := enc.Decode(tampered, false); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Expected ErrSignatureInvalid, got: %v", err)
	}

	other, _ := NewEncoder([]byte("other-key"))
	if _, err := other.Decode(encoded, false); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Expected ErrSignatureInvalid for wrong key, got: %v", err)
	}
}

func TestDecryptionFailure(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	encoded, err := enc.Encode(testState(), true)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	other, _ := NewEncoder([]byte("other-key"))
	if _, err := other.Decode(encoded, true); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("Expected ErrDecryptFailed, got: %v", err)
	}
}

func TestInvalidFormat(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))

	tests := []struct {
		name      string
		input     string
		sensitive bool
	}{
		{"missing signature", "abc", false},
		{"bad base64", "!!!.abc", false},
		{"short ciphertext", "YWJj", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := enc.Decode(tt.input, tt.sensitive); !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("Decode(%q) error = %v, want ErrInvalidFormat", tt.input, err)
			}
		})
	}
}
