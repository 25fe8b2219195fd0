package media

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"partner-media-backend/internal/mediarules"
	"partner-media-backend/internal/models"
)

const mediaTable = "girls_media"

// Gallery reads a profile's media through PostgREST with the signed-in
// user's token, so row-level security applies.
type Gallery struct {
	sb *supabase.Client
}

func NewGallery(sb *supabase.Client) *Gallery {
	return &Gallery{sb: sb}
}

// List returns the profile's media ordered by sort position, newest first
// within equal positions.
func (g *Gallery) List(girlID uuid.UUID) ([]models.MediaItem, error) {
	var items []models.MediaItem
	_, err := g.sb.From(mediaTable).
		Select("*", "", false).
		Eq("girl_id", girlID.String()).
		Order("sort_order", &postgrest.OrderOpts{Ascending: true}).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&items)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return items, nil
}

// Quota returns how many items count against the limit, and the limit. The
// count is advisory: only the backend enforces it.
func (g *Gallery) Quota(girlID uuid.UUID) (int, int, error) {
	_, count, err := g.sb.From(mediaTable).
		Select("id", "exact", true).
		Eq("girl_id", girlID.String()).
		In("status", []string{string(models.StatusPending), string(models.StatusApproved)}).
		Execute()
	if err != nil {
		return 0, mediarules.MaxMediaPerGirl, fmt.Errorf("failed to count media: %w", err)
	}
	return int(count), mediarules.MaxMediaPerGirl, nil
}
