package auth

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// CodeTTL is the default lifetime of an email verification code.
const CodeTTL = 10 * time.Minute

// GenerateVerificationCode returns a 6-digit numeric code in [100000, 999999].
func GenerateVerificationCode() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}

// CodeExpiryFrom computes the expiry for a code issued at the given instant.
func CodeExpiryFrom(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = CodeTTL
	}
	return now.Add(ttl)
}
