package booking

import "crypto/rand"

// uidAlphabet is base62: unguessable, URL-safe, no padding concerns.
const uidAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// uidLength is the public-identifier length for Booking.uid.
const uidLength = 12

// newUID mints a fresh unguessable public booking identifier.
func newUID() (string, error) {
	buf := make([]byte, uidLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, uidLength)
	for i, b := range buf {
		out[i] = uidAlphabet[int(b)%len(uidAlphabet)]
	}
	return string(out), nil
}
