package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// Booking access tokens are 64 hex characters (32 random bytes). They are the
// only credential a guest holds for its booking, so comparison must be
// constant-time.
const bookingAccessTokenBytes = 32

// GenerateBookingAccessToken returns a new opaque token for a guest booking.
func GenerateBookingAccessToken() (string, error) {
	buf := make([]byte, bookingAccessTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// SecureCompare reports whether two tokens match without leaking timing
// information. Empty stored tokens never match anything.
func SecureCompare(stored, presented string) bool {
	if stored == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
