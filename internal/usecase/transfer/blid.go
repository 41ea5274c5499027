package transfer

import "strings"

const (
	blidLength = 8
	uicLength  = 12
)

// NormalizeScanCode drops the whitespace and line endings scanners append.
func NormalizeScanCode(code string) string {
	return strings.TrimSpace(code)
}

// ValidScanCode accepts a library blid (8 letters or digits) or a
// unique item code (12 digits).
func ValidScanCode(code string) bool {
	switch len(code) {
	case blidLength:
		for _, r := range code {
			if !isDigit(r) && !(r >= 'A' && r <= 'Z') && !(r >= 'a' && r <= 'z') {
				return false
			}
		}
		return true
	case uicLength:
		for _, r := range code {
			if !isDigit(r) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
