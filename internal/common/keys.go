package common

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ParsePrivateKey accepts either a base58-encoded 64-byte secret key or the
// JSON byte-array format exported by common wallet tooling.
func ParsePrivateKey(raw string) (solana.PrivateKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty private key")
	}

	if strings.HasPrefix(raw, "[") {
		var arr []int
		if err := sonic.Unmarshal([]byte(raw), &arr); err != nil {
			return nil, fmt.Errorf("parse json private key: %w", err)
		}
		if len(arr) != 64 {
			return nil, fmt.Errorf("private key must be 64 bytes, got %d", len(arr))
		}
		key := make(solana.PrivateKey, len(arr))
		for i, v := range arr {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("private key byte %d out of range", i)
			}
			key[i] = byte(v)
		}
		return key, nil
	}

	decoded, err := base58.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base58 private key: %w", err)
	}
	if len(decoded) != 64 {
		return nil, fmt.Errorf("private key must be 64 bytes, got %d", len(decoded))
	}
	return solana.PrivateKey(decoded), nil
}
