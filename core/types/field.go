package types

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/hacash/node/common"
)

// Field is implemented by every wire value. Parse reads a value from the
// front of buf and returns the bytes consumed; Serialize produces the exact
// canonical bytes; Size is the length Serialize would produce.
type Field interface {
	Parse(buf []byte) (int, error)
	Serialize() []byte
	Size() int
}

// FieldPtr is the pointer constraint used by the generic containers: T is
// stored by value, *T implements Field.
type FieldPtr[T any] interface {
	*T
	Field
}

var (
	ErrBufTooShort  = common.ErrBufTooShort
	ErrSizeOverflow = errors.New("size overflow")
	ErrUnknownTag   = errors.New("unknown tag")
)

// ParseAll parses buf into f and fails if bytes remain.
func ParseAll(f Field, buf []byte) error {
	n, err := f.Parse(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("parse left %d bytes unused", len(buf)-n)
	}
	return nil
}

// Create parses a fresh T from buf.
func Create[T any, PT FieldPtr[T]](buf []byte) (T, int, error) {
	var v T
	n, err := PT(&v).Parse(buf)
	return v, n, err
}

// BinaryFormat selects how opaque bytes are rendered in json.
type BinaryFormat uint8

const (
	FormatHex BinaryFormat = iota
	FormatBase64
	FormatBase58Check
)

const (
	prefixHex    = "0x"
	prefixBase64 = "b64:"
	prefixBase58 = "b58:"
)

// ParseBinaryFormat maps "hex", "base64" and "base58check" to a format.
func ParseBinaryFormat(s string) (BinaryFormat, error) {
	switch strings.ToLower(s) {
	case "", "hex":
		return FormatHex, nil
	case "base64", "b64":
		return FormatBase64, nil
	case "base58check", "base58", "b58":
		return FormatBase58Check, nil
	}
	return FormatHex, fmt.Errorf("binary format %q not support", s)
}

// EncodeBinary renders bytes under the selected format with the prefix
// DecodeBinary detects it by. Base58check treats the first byte as the
// version.
func EncodeBinary(b []byte, f BinaryFormat) string {
	switch f {
	case FormatBase64:
		return prefixBase64 + base64.StdEncoding.EncodeToString(b)
	case FormatBase58Check:
		if len(b) == 0 {
			return prefixBase58
		}
		return prefixBase58 + common.Base58CheckEncode(b)
	}
	return prefixHex + hex.EncodeToString(b)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// DecodeBinary auto-detects the format by prefix: 0x hex, b64: base64 and
// b58: base58check. A string without a prefix is taken as raw UTF-8 bytes.
func DecodeBinary(s string) ([]byte, error) {
	t := strings.TrimSpace(s)
	switch {
	case hasPrefixFold(t, prefixHex):
		return hex.DecodeString(strings.TrimSpace(t[len(prefixHex):]))
	case hasPrefixFold(t, prefixBase64):
		return base64.StdEncoding.DecodeString(strings.TrimSpace(t[len(prefixBase64):]))
	case hasPrefixFold(t, prefixBase58):
		rest := strings.TrimSpace(t[len(prefixBase58):])
		if rest == "" {
			return []byte{}, nil
		}
		return common.Base58CheckDecode(rest)
	}
	return []byte(s), nil
}

func unquote(input []byte) (string, error) {
	s := string(input)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("json value %s must be a string", s)
	}
	return s[1 : len(s)-1], nil
}

func quote(s string) []byte {
	return []byte(`"` + s + `"`)
}
