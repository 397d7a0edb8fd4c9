package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailTypeWebinarInvite is the only email the invite subsystem sends.
const EmailTypeWebinarInvite = "webinar_invite"

// EmailLogStatus for delivery.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records one invite email attempt.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	WebinarID      uuid.UUID  `json:"webinar_id"`
	InviteID       *uuid.UUID `json:"invite_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewInviteEmailLog builds the log row for one send attempt. A nil sendErr means the email went out.
func NewInviteEmailLog(webinarID, inviteID uuid.UUID, recipient string, sendErr error, now time.Time) *EmailLog {
	el := &EmailLog{
		WebinarID:      webinarID,
		InviteID:       &inviteID,
		EmailType:      EmailTypeWebinarInvite,
		RecipientEmail: recipient,
		Status:         EmailLogStatusSent,
	}
	if sendErr != nil {
		el.Status = EmailLogStatusFailed
		el.ErrorMessage = sendErr.Error()
	} else {
		el.SentAt = &now
	}
	return el
}
