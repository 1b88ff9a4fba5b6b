package codes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		length  int
		wantLen int
	}{
		{name: "reservation style", prefix: "RSV", length: 8, wantLen: len("RSV-") + 8},
		{name: "transaction style", prefix: "TXN", length: 10, wantLen: len("TXN-") + 10},
		{name: "no prefix", prefix: "", length: 6, wantLen: 6},
		{name: "non-positive length falls back to eight", prefix: "RSV", length: 0, wantLen: len("RSV-") + 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := Generate(tt.prefix, tt.length)
			assert.Len(t, code, tt.wantLen)
			if tt.prefix != "" {
				assert.True(t, strings.HasPrefix(code, tt.prefix+"-"))
			}
			random := strings.TrimPrefix(code, tt.prefix+"-")
			for _, c := range random {
				assert.Contains(t, alphabet, string(c))
			}
		})
	}
}

func TestGenerateAvoidsLookalikes(t *testing.T) {
	for _, banned := range []string{"0", "O", "1", "I", "L"} {
		assert.NotContains(t, alphabet, banned)
	}
}

func TestGenerateVaries(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		seen[Generate("RSV", 8)] = struct{}{}
	}
	// 31^8 possibilities; 50 draws colliding would mean a broken generator.
	assert.Greater(t, len(seen), 45)
}
