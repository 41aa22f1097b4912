package domain

import "regexp"

// RefSentinel is the reserved placeholder meaning "no referrer". Rows carrying it
// are excluded from leaderboard aggregation.
const RefSentinel = "-"

// friendlyAddress matches TON user-friendly addresses: a bounceable ("EQ") or
// non-bounceable ("UQ") prefix followed by the URL-safe base64 body. The length
// range tolerates both encodings.
var friendlyAddress = regexp.MustCompile(`^(EQ|UQ)[A-Za-z0-9_-]{46,66}$`)

// ValidAddress reports whether s is a well-formed TON friendly address.
// It is a pure grammar check and is applied before any state mutation.
func ValidAddress(s string) bool {
	return friendlyAddress.MatchString(s)
}
