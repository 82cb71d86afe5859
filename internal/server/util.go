package server

import "crypto/rand"

// newGameCode draws 4 characters from a confusion-free uppercase alphabet.
// Collisions are handled by the create retry loop, not here.
func newGameCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, gameCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "AAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}
