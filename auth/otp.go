package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/pkg/errors"
)

const otpDigits = 6

// OTP is a one time code issued for signup verification or password reset.
// Only the hash of the code is stored.
type OTP struct {
	ID        string
	UserID    string
	Purpose   string
	CodeHash  string
	Attempts  int
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Used reports whether the code has been spent or invalidated.
func (o *OTP) Used() bool {
	return o.UsedAt != nil
}

func (o *OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// Matches compares code against the stored hash in constant time.
func (o *OTP) Matches(code string) bool {
	return subtle.ConstantTimeCompare([]byte(hashCode(code)), []byte(o.CodeHash)) == 1
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// generateCode returns a zero padded numeric code.
func generateCode() (string, error) {
	buf := make([]byte, otpDigits)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", errors.Wrap(err, "[generateCode] rand.Int")
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}
