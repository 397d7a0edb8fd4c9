package models

import (
	"time"

	"github.com/google/uuid"
)

// Invite is a single-token access grant scoped to one webinar.
type Invite struct {
	ID        uuid.UUID  `json:"id"`
	WebinarID uuid.UUID  `json:"webinar_id"`
	Token     string     `json:"token"`
	Name      *string    `json:"name"`
	Email     *string    `json:"email"`
	ExpiresAt *time.Time `json:"expires_at"`
	ViewCount int        `json:"view_count"`
	ViewedAt  *time.Time `json:"viewed_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// InviteListItem is an invite annotated for the admin console.
type InviteListItem struct {
	Invite
	WebinarTitle string `json:"webinar_title"`
	Status       string `json:"status"`
	Link         string `json:"link,omitempty"`
}

// Recipient is a parsed (name, email) candidate. It only seeds invite creation.
type Recipient struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Effective invite states. They are derived, never stored.
const (
	InviteStatusActive          = "active"
	InviteStatusExpired         = "expired"
	InviteStatusWebinarDisabled = "webinar_disabled"
)

// Expired reports whether the invite's expiry has passed at now.
func (i *Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}

// InviteStatus derives the effective state of an invite. A nil webinar counts as disabled.
func InviteStatus(inv *Invite, w *Webinar, now time.Time) string {
	if inv.Expired(now) {
		return InviteStatusExpired
	}
	if w == nil || !w.IsActive {
		return InviteStatusWebinarDisabled
	}
	return InviteStatusActive
}
