package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const saltBytes = 8

// HashPassword returns "salt$hex(sha256(salt+password))" with a fresh random
// salt.
func HashPassword(password string) (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return HashPasswordWithSalt(password, hex.EncodeToString(buf)), nil
}

func HashPasswordWithSalt(password, salt string) string {
	return salt + "$" + digest(salt+password)
}

// CheckPasswordHash recomputes the digest with the stored salt. Malformed
// hashes never verify.
func CheckPasswordHash(password, stored string) bool {
	salt, want, ok := strings.Cut(stored, "$")
	if !ok || want == "" {
		return false
	}
	got := digest(salt + password)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// HashSecurityAnswer ignores surrounding whitespace and case.
func HashSecurityAnswer(answer string) string {
	return digest(normalizeAnswer(answer))
}

func CheckSecurityAnswer(answer, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashSecurityAnswer(answer)), []byte(stored)) == 1
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
