package utils

import (
	"crypto/rand"
	"math/big"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// --- Random String and ID Generators ---

var refRunes = []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

func NewID() string { return uuid.NewString() }

// GenerateRef creates an upper-case reference of length n without look-alike
// characters (0/O, 1/I).
func GenerateRef(n int) string {
	b := make([]rune, n)
	max := big.NewInt(int64(len(refRunes)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			idx = big.NewInt(int64(i % len(refRunes)))
		}
		b[i] = refRunes[idx.Int64()]
	}
	return string(b)
}

// --- Slice Helpers ---

func Contains(slice []string, value string) bool {
	return slices.Contains(slice, value)
}

func ContainsIgnoreCase(str, substr string) bool {
	return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
}

// Localize picks lang, then "en", then the alphabetically first entry.
func Localize(m map[string]string, lang string) string {
	if len(m) == 0 {
		return ""
	}
	if v, ok := m[lang]; ok && v != "" {
		return v
	}
	if v, ok := m["en"]; ok && v != "" {
		return v
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return m[keys[0]]
}
