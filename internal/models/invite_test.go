package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInviteStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	active := &Webinar{IsActive: true}
	inactive := &Webinar{IsActive: false}

	tests := []struct {
		name    string
		expires *time.Time
		webinar *Webinar
		want    string
	}{
		{"no expiry active webinar", nil, active, InviteStatusActive},
		{"future expiry", &future, active, InviteStatusActive},
		{"past expiry", &past, active, InviteStatusExpired},
		{"expiry exactly now", &now, active, InviteStatusExpired},
		{"inactive webinar", nil, inactive, InviteStatusWebinarDisabled},
		{"missing webinar", &future, nil, InviteStatusWebinarDisabled},
		{"expired and inactive", &past, inactive, InviteStatusExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invite{ExpiresAt: tt.expires}
			assert.Equal(t, tt.want, InviteStatus(inv, tt.webinar, now))
		})
	}
}

func TestInviteStatus_ReactivationRestoresAccess(t *testing.T) {
	now := time.Now()
	w := &Webinar{IsActive: false}
	inv := &Invite{}
	assert.Equal(t, InviteStatusWebinarDisabled, InviteStatus(inv, w, now))
	w.IsActive = true
	assert.Equal(t, InviteStatusActive, InviteStatus(inv, w, now))
}
