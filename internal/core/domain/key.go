package domain

import "errors"

var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrKeyExpired   = errors.New("key expired")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadPayload   = errors.New("invalid payload")
)

type KeyStatus string

const (
	KeyStatusActive  KeyStatus = "active"
	KeyStatusExpired KeyStatus = "expired"
)

// LifetimeDurationDays is the sentinel at or above which a record is a
// lifetime key: never expired and never extended by heartbeat.
const LifetimeDurationDays = 10_000_000

// KeyRecord is the persisted shape of one product key. Timestamps are epoch
// milliseconds; a nil ActivatedAt means the key was never activated.
type KeyRecord struct {
	AuthKey      string    `json:"authKey"`
	Status       KeyStatus `json:"status"`
	ActivatedAt  *int64    `json:"activatedAt,omitempty"`
	DurationDays int64     `json:"durationDays"`
	ExpiresAt    int64     `json:"expiresAt"`
	LastSeen     int64     `json:"lastSeen,omitempty"`
	LastIP       string    `json:"lastIp,omitempty"`
	Discord      *string   `json:"discord,omitempty"`
}

func (r KeyRecord) Lifetime() bool {
	return r.DurationDays >= LifetimeDurationDays
}

func (r KeyRecord) Activated() bool {
	return r.ActivatedAt != nil
}

// KeySet is the full store contents, keyed by product-key identifier.
type KeySet map[string]KeyRecord
