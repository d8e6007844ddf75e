package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAddress(t *testing.T) {
	valid := "G" + strings.Repeat("A", 55)

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid all-A", valid, true},
		{"valid mixed alphabet", "G" + strings.Repeat("B7", 27) + "Z", true},
		{"empty", "", false},
		{"too short", valid[:55], false},
		{"too long", valid + "A", false},
		{"wrong prefix", "A" + strings.Repeat("A", 55), false},
		{"lowercase body", "G" + strings.Repeat("a", 55), false},
		{"digit outside base32", "G" + strings.Repeat("A", 54) + "1", false},
		{"digit zero", "G0" + strings.Repeat("A", 54), false},
		{"untrimmed whitespace", " " + valid[:55], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAddress(tt.in))
		})
	}
}

func TestIsValidAddressAcceptsFullAlphabet(t *testing.T) {
	body := "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"
	addr := "G" + body + strings.Repeat("A", 55-len(body))
	assert.True(t, IsValidAddress(addr))
}
