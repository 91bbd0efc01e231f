package sqlite

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// byteaPrefix marks a hex-encoded binary value, mirroring PostgreSQL's bytea
// text output so rows can be exchanged with a Postgres-backed deployment.
const byteaPrefix = `\x`

// encodeBytea renders b as "\x" followed by lowercase hex.
func encodeBytea(b []byte) string {
	return byteaPrefix + hex.EncodeToString(b)
}

// decodeBytea accepts hex text with or without the "\x" prefix.
func decodeBytea(s string) ([]byte, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), byteaPrefix)
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode bytea hex: %w", err)
	}
	return b, nil
}
