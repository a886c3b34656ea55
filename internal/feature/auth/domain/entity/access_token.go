package entity

import "time"

// AccessToken is an issued bearer credential tracked by the token ledger.
// A token is VALID while both flags are false. Once either flag is set it
// never goes back to false.
type AccessToken struct {
	ID        uint
	Token     string // Signed JWT
	UserID    uint   // Owner
	Expired   bool
	Revoked   bool
	CreatedAt time.Time
}

// IsValid returns true if the token is neither expired nor revoked.
func (t *AccessToken) IsValid() bool {
	return !t.Expired && !t.Revoked
}

// Retire moves the token to its terminal REVOKED+EXPIRED state.
func (t *AccessToken) Retire() {
	t.Expired = true
	t.Revoked = true
}
