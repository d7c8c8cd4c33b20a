package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

var otpRange = big.NewInt(900000)

// GenerateOTP returns a 6-digit numeric code sampled uniformly from
// [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// NewResetSecret returns 256 bits of randomness hex-encoded. The cleartext
// value leaves this process exactly once, in the reset email; only its
// digest is persisted.
func NewResetSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashSecret returns the hex-encoded SHA-256 digest of a secret. Reset
// tokens are stored and looked up by this digest.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
