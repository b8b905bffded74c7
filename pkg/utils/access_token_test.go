package utils

import "testing"

func TestGenerateBookingAccessToken(t *testing.T) {
	token, err := GenerateBookingAccessToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("token length = %d, want 64", len(token))
	}

	other, err := GenerateBookingAccessToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == other {
		t.Fatal("two generated tokens are identical")
	}
}

func TestSecureCompare(t *testing.T) {
	token, err := GenerateBookingAccessToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !SecureCompare(token, token) {
		t.Error("matching tokens rejected")
	}
	if SecureCompare(token, token[:63]+"x") {
		t.Error("mismatched token accepted")
	}
	if SecureCompare("", "") {
		t.Error("empty stored token matched empty input")
	}
	if SecureCompare("", token) {
		t.Error("empty stored token matched a real token")
	}
}
