// Package masking redacts credential material before it reaches the
// audit trail. Non-sensitive metadata (order numbers, price fields)
// passes through untouched so the trail stays useful.
package masking

import "strings"

const maskToken = "****"

var sensitiveKeys = []string{"key", "secret", "password", "token", "credential"}

// Sensitive reports whether a metadata key names credential material.
func Sensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, marker := range sensitiveKeys {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// MaskSecret redacts a secret, keeping the last four characters when
// the value is long enough to stay unidentifiable.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 8 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskMetadata returns a copy of the input with values under sensitive
// keys redacted, descending into nested maps.
func MaskMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		switch cast := value.(type) {
		case string:
			if Sensitive(key) {
				masked[key] = MaskSecret(cast)
			} else {
				masked[key] = cast
			}
		case map[string]any:
			masked[key] = MaskMetadata(cast)
		default:
			masked[key] = value
		}
	}
	return masked
}
