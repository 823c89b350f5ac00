package otpgen

import (
	"encoding/base32"
	"fmt"
	"strings"
	"unicode"
)

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// DecodeSecret parses a base32 shared secret. Whitespace and trailing
// padding are ignored and lowercase ASCII letters are accepted.
func DecodeSecret(secret string) ([]byte, error) {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		// Only ASCII is folded; 'ſ' and 'ı' must fail the alphabet check.
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, secret)
	normalized = strings.TrimRight(normalized, "=")

	for i, r := range []rune(normalized) {
		if !(r >= 'A' && r <= 'Z') && !(r >= '2' && r <= '7') {
			return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrInvalidEncoding, r, i)
		}
	}

	// 1, 3 and 6 leftover characters never come out of a base32 encoder.
	switch len(normalized) % 8 {
	case 1, 3, 6:
		return nil, fmt.Errorf("%w: length %d is not a valid base32 quantum", ErrInvalidEncoding, len(normalized))
	}

	key, err := secretEncoding.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return key, nil
}

// EncodeSecret renders key as unpadded uppercase base32.
func EncodeSecret(key []byte) string {
	return secretEncoding.EncodeToString(key)
}
