package media

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"partner-media-backend/internal/logging"
	"partner-media-backend/internal/models"
)

// ListView holds a profile's media list and applies reorders optimistically:
// the local list changes first, the backend write follows, and a failed
// write restores the exact pre-move list.
// Lister fetches the backend's current media order.
type Lister interface {
	List(girlID uuid.UUID) ([]models.MediaItem, error)
}

type ListView struct {
	ef      *EdgeClient
	gallery Lister
	log     logging.Logger
	girlID  uuid.UUID
	items   []models.MediaItem
}

func NewListView(ef *EdgeClient, gallery Lister, log logging.Logger, girlID uuid.UUID) *ListView {
	return &ListView{ef: ef, gallery: gallery, log: log, girlID: girlID}
}

// Refresh replaces the local list with the backend's current order.
func (v *ListView) Refresh(ctx context.Context) error {
	items, err := v.gallery.List(v.girlID)
	if err != nil {
		return err
	}
	v.items = items
	return nil
}

// Items returns a copy of the current list.
func (v *ListView) Items() []models.MediaItem {
	out := make([]models.MediaItem, len(v.items))
	copy(out, v.items)
	return out
}

// Move relocates the item at from to position to and persists the new
// order. Sort positions are rewritten contiguously from zero. On a failed
// write the previous list is restored and the error returned.
func (v *ListView) Move(ctx context.Context, from, to int) error {
	if from < 0 || from >= len(v.items) || to < 0 || to >= len(v.items) {
		return fmt.Errorf("move out of range: %d -> %d of %d", from, to, len(v.items))
	}
	if from == to {
		return nil
	}

	snapshot := make([]models.MediaItem, len(v.items))
	copy(snapshot, v.items)

	item := v.items[from]
	rest := append(v.items[:from:from], v.items[from+1:]...)
	next := make([]models.MediaItem, 0, len(v.items))
	next = append(next, rest[:to]...)
	next = append(next, item)
	next = append(next, rest[to:]...)
	for i := range next {
		next[i].SortOrder = i
	}
	v.items = next

	updates := make([]models.SortOrderUpdate, len(next))
	for i, it := range next {
		updates[i] = models.SortOrderUpdate{ID: it.ID, SortOrder: it.SortOrder}
	}

	if err := v.ef.Reorder(ctx, models.ReorderRequest{GirlID: v.girlID, Items: updates}); err != nil {
		v.items = snapshot
		v.log.Warn(ctx, "reorder rejected, restoring previous order", "error", err)
		return err
	}
	return nil
}

// Remove deletes a pending or rejected item and drops it from the list.
func (v *ListView) Remove(ctx context.Context, mediaID uuid.UUID) error {
	var target *models.MediaItem
	for i := range v.items {
		if v.items[i].ID == mediaID {
			target = &v.items[i]
			break
		}
	}
	if target != nil && target.Status == models.StatusApproved {
		return ErrNotDeletable
	}

	if err := v.ef.RemoveTmp(ctx, mediaID); err != nil {
		return err
	}
	for i := range v.items {
		if v.items[i].ID == mediaID {
			v.items = append(v.items[:i], v.items[i+1:]...)
			break
		}
	}
	return nil
}
