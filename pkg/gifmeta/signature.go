package gifmeta

import "fmt"

const (
	Signature  = "GIF"
	Version87a = "87a"
	Version89a = "89a"
)

// checkSignatureByte validates byte i of the header as it arrives.
// Only the first three bytes are constrained.
func checkSignatureByte(i int, b byte) error {
	if i < len(Signature) && b != Signature[i] {
		return fmt.Errorf("%w: byte %d is 0x%02x, want %q", ErrInvalidSignature, i, b, Signature[i])
	}
	return nil
}

// SupportedVersion reports whether v is a version this parser knows.
func SupportedVersion(v string) bool {
	return v == Version87a || v == Version89a
}
