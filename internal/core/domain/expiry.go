package domain

import "time"

// IsExpired reports whether rec is past its expiry at now. Never-activated
// and lifetime records are exempt. Exact equality with ExpiresAt is not
// expired; only a strictly later instant is.
func IsExpired(rec KeyRecord, now time.Time) bool {
	if !rec.Activated() {
		return false
	}
	if rec.Lifetime() {
		return false
	}
	return now.UnixMilli() > rec.ExpiresAt
}
