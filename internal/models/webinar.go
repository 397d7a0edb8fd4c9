package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Webinar is a recorded video session that invites grant access to.
type Webinar struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WebinarPatch holds the fields of a partial webinar update. Nil means unchanged.
// An explicit JSON null for description or thumbnail_url sets the matching Clear flag.
type WebinarPatch struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	VideoURL          *string `json:"video_url"`
	ThumbnailURL      *string `json:"thumbnail_url"`
	IsActive          *bool   `json:"is_active"`
	ClearDescription  bool    `json:"-"`
	ClearThumbnailURL bool    `json:"-"`
}

// UnmarshalJSON decodes the patch and records which nullable fields were sent as null.
func (p *WebinarPatch) UnmarshalJSON(data []byte) error {
	type plain WebinarPatch
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.ClearDescription = isNull(raw, "description")
	v.ClearThumbnailURL = isNull(raw, "thumbnail_url")
	*p = WebinarPatch(v)
	return nil
}

func isNull(raw map[string]json.RawMessage, key string) bool {
	v, ok := raw[key]
	return ok && bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// PublicWebinar is what a viewer gets back for a valid invite. It never carries ids.
type PublicWebinar struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	VideoURL     string  `json:"video_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}
