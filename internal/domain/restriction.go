package domain

import "time"

// ViewerRestriction holds the moderation state of a single viewer.
// Records are never deleted; mute/cooldown only toggle off, keeping the
// gap and expiry fields around so a moderator can re-apply them.
type ViewerRestriction struct {
	ViewerID           string
	Username           string
	IsMuted            bool
	MuteExpiresAt      *time.Time // nil = permanent
	HasCooldown        bool
	CooldownGapSeconds int
	CooldownExpiresAt  *time.Time // nil = the cooldown rule never expires
	LastTTSAt          *time.Time
}

// ExpireMute reports whether the mute is still active at now. When the
// expiry timestamp has passed it flips the flag off; the second result
// tells the caller the record changed and must be written back.
func (r ViewerRestriction) ExpireMute(now time.Time) (bool, ViewerRestriction, bool) {
	if !r.IsMuted {
		return false, r, false
	}
	if r.MuteExpiresAt != nil && r.MuteExpiresAt.Before(now) {
		r.IsMuted = false
		r.MuteExpiresAt = nil
		return false, r, true
	}
	return true, r, false
}

// ExpireCooldown is the cooldown-side counterpart of ExpireMute.
func (r ViewerRestriction) ExpireCooldown(now time.Time) (bool, ViewerRestriction, bool) {
	if !r.HasCooldown {
		return false, r, false
	}
	if r.CooldownExpiresAt != nil && r.CooldownExpiresAt.Before(now) {
		r.HasCooldown = false
		r.CooldownExpiresAt = nil
		return false, r, true
	}
	return true, r, false
}
