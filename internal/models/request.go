package models

import "github.com/google/uuid"

type GetUploadURLRequest struct {
	GirlID   uuid.UUID `json:"girl_id"`
	Kind     MediaKind `json:"kind"`
	Ext      string    `json:"ext"`
	HasThumb bool      `json:"hasThumb"`
	Meta     MediaMeta `json:"meta"`
}

type RemoveTmpRequest struct {
	MediaID uuid.UUID `json:"media_id"`
}

type SortOrderUpdate struct {
	ID        uuid.UUID `json:"id"`
	SortOrder int       `json:"sort_order"`
}

type ReorderRequest struct {
	GirlID uuid.UUID         `json:"girl_id"`
	Items  []SortOrderUpdate `json:"items"`
}
