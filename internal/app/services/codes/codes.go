package codes

import (
	"crypto/rand"
	"strings"
)

// Alphabet for human-shareable codes: uppercase without the lookalikes
// 0/O, 1/I/L so a code survives being read over the phone.
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// Generate returns prefix + "-" + length random characters, e.g. "RSV-7KQ2M9TD".
// Uniqueness is the caller's problem: generate, check the store, retry.
func Generate(prefix string, length int) string {
	if length <= 0 {
		length = 8
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform entropy source is broken;
		// nothing sensible to do but panic.
		panic(err)
	}
	var b strings.Builder
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteByte('-')
	}
	for _, c := range buf {
		b.WriteByte(alphabet[int(c)%len(alphabet)])
	}
	return b.String()
}
