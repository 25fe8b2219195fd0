package models

import (
	"time"

	"github.com/google/uuid"
)

type MediaKind string

const (
	KindImage     MediaKind = "image"
	KindVideo     MediaKind = "video"
	KindLivePhoto MediaKind = "live_photo"
)

type MediaStatus string

const (
	StatusPending  MediaStatus = "pending"
	StatusApproved MediaStatus = "approved"
	StatusRejected MediaStatus = "rejected"
)

// MediaMeta is the JSONB meta column: intrinsic properties of the asset.
type MediaMeta struct {
	Mime     string `json:"mime,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Duration int    `json:"duration,omitempty"` // seconds, video only
}

// MediaItem is one girls_media row. Moderation status drives which bucket
// the storage keys resolve against.
type MediaItem struct {
	ID           uuid.UUID   `json:"id"`
	GirlID       uuid.UUID   `json:"girl_id"`
	Kind         MediaKind   `json:"kind"`
	StorageKey   string      `json:"storage_key"`
	ThumbKey     *string     `json:"thumb_key"`
	Meta         MediaMeta   `json:"meta"`
	Status       MediaStatus `json:"status"`
	RejectReason *string     `json:"reject_reason,omitempty"`
	SortOrder    int         `json:"sort_order"`
	CreatedBy    uuid.UUID   `json:"created_by"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// GirlProfile is the service-provider profile linked one-to-one with an
// auth account. Created administratively; the client only reads it.
type GirlProfile struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id"`
	IsBlocked bool       `json:"is_blocked"`
}
