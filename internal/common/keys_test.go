package common

import (
	"strconv"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivateKeyBase58(t *testing.T) {
	wallet := solana.NewWallet()

	key, err := ParsePrivateKey(wallet.PrivateKey.String())
	require.NoError(t, err)
	assert.Equal(t, wallet.PublicKey(), key.PublicKey())

	// surrounding whitespace is tolerated
	key, err = ParsePrivateKey("  " + wallet.PrivateKey.String() + "\n")
	require.NoError(t, err)
	assert.Equal(t, wallet.PublicKey(), key.PublicKey())
}

func TestParsePrivateKeyJSONArray(t *testing.T) {
	wallet := solana.NewWallet()

	parts := make([]string, len(wallet.PrivateKey))
	for i, b := range wallet.PrivateKey {
		parts[i] = strconv.Itoa(int(b))
	}
	encoded := "[" + strings.Join(parts, ",") + "]"

	key, err := ParsePrivateKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, wallet.PublicKey(), key.PublicKey())
}

func TestParsePrivateKeyRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace only", raw: "   "},
		{name: "invalid base58", raw: "0OIl"},
		{name: "wrong length base58", raw: "abc"},
		{name: "short json array", raw: "[1,2,3]"},
		{name: "json byte out of range", raw: "[" + strings.Repeat("300,", 63) + "300]"},
		{name: "malformed json", raw: "[1,2,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrivateKey(tt.raw)
			assert.Error(t, err)
		})
	}
}
