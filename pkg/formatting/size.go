package formatting

import (
	"fmt"
	"strings"
)

// ByteSize is a byte count that decodes from human-readable text such as "10MB".
// It satisfies encoding.TextUnmarshaler, so TOML and JSON config values can use it directly.
type ByteSize int64

// UnmarshalText parses a human-readable size via ParseBytes.
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := ParseBytes(string(text))
	if err != nil {
		return err
	}
	*b = ByteSize(n)
	return nil
}

// MarshalText renders the size with FormatBytes at zero precision.
func (b ByteSize) MarshalText() ([]byte, error) {
	if b < 0 {
		return nil, fmt.Errorf("negative byte size: %d", int64(b))
	}
	return []byte(b.String()), nil
}

// String formats the size with no decimal places, omitting the space ("10MB").
func (b ByteSize) String() string {
	return strings.ReplaceAll(FormatBytes(int64(b), 0), " ", "")
}

// Int64 returns the size in bytes.
func (b ByteSize) Int64() int64 {
	return int64(b)
}
