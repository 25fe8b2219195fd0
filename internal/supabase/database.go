package supabase

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"partner-media-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) GetGirlProfile(girlID uuid.UUID) (*models.GirlProfile, error) {
	var girl models.GirlProfile
	err := d.db.QueryRow(`
		SELECT id, user_id, is_blocked
		FROM girls
		WHERE id = $1
	`, girlID).Scan(&girl.ID, &girl.UserID, &girl.IsBlocked)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get girl profile: %w", err)
	}

	return &girl, nil
}

func (d *DatabaseClient) GetGirlProfileByUserID(userID uuid.UUID) (*models.GirlProfile, error) {
	var girl models.GirlProfile
	err := d.db.QueryRow(`
		SELECT id, user_id, is_blocked
		FROM girls
		WHERE user_id = $1
	`, userID).Scan(&girl.ID, &girl.UserID, &girl.IsBlocked)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get girl profile by user: %w", err)
	}

	return &girl, nil
}

// CountQuota counts the items occupying quota slots: pending and approved.
func (d *DatabaseClient) CountQuota(girlID uuid.UUID) (int, error) {
	var count int
	err := d.db.QueryRow(`
		SELECT COUNT(*)
		FROM girls_media
		WHERE girl_id = $1 AND status IN ('pending', 'approved')
	`, girlID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}

	return count, nil
}

// InsertDraft inserts the pending draft row created before any bytes are
// transferred and returns the stored record.
func (d *DatabaseClient) InsertDraft(girlID uuid.UUID, kind models.MediaKind, storageKey string, thumbKey *string, meta models.MediaMeta, sortOrder int, createdBy uuid.UUID) (*models.MediaItem, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meta: %w", err)
	}

	var item models.MediaItem
	var rawMeta []byte
	err = d.db.QueryRow(`
		INSERT INTO girls_media (girl_id, kind, storage_key, thumb_key, meta, status, sort_order, created_by)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7)
		RETURNING id, girl_id, kind, storage_key, thumb_key, meta, status, reject_reason, sort_order, created_by, created_at, updated_at
	`, girlID, kind, storageKey, thumbKey, metaJSON, sortOrder, createdBy).Scan(
		&item.ID, &item.GirlID, &item.Kind, &item.StorageKey, &item.ThumbKey,
		&rawMeta, &item.Status, &item.RejectReason, &item.SortOrder,
		&item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert media draft: %w", err)
	}
	if err := json.Unmarshal(rawMeta, &item.Meta); err != nil {
		return nil, fmt.Errorf("failed to decode media meta: %w", err)
	}

	return &item, nil
}

func (d *DatabaseClient) GetMediaItem(mediaID uuid.UUID) (*models.MediaItem, error) {
	var item models.MediaItem
	var rawMeta []byte
	err := d.db.QueryRow(`
		SELECT id, girl_id, kind, storage_key, thumb_key, meta, status, reject_reason, sort_order, created_by, created_at, updated_at
		FROM girls_media
		WHERE id = $1
	`, mediaID).Scan(
		&item.ID, &item.GirlID, &item.Kind, &item.StorageKey, &item.ThumbKey,
		&rawMeta, &item.Status, &item.RejectReason, &item.SortOrder,
		&item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media item: %w", err)
	}
	if err := json.Unmarshal(rawMeta, &item.Meta); err != nil {
		return nil, fmt.Errorf("failed to decode media meta: %w", err)
	}

	return &item, nil
}

// ListMedia returns all items for a profile in display order.
func (d *DatabaseClient) ListMedia(girlID uuid.UUID) ([]models.MediaItem, error) {
	rows, err := d.db.Query(`
		SELECT id, girl_id, kind, storage_key, thumb_key, meta, status, reject_reason, sort_order, created_by, created_at, updated_at
		FROM girls_media
		WHERE girl_id = $1
		ORDER BY sort_order ASC, created_at DESC
	`, girlID)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		var item models.MediaItem
		var rawMeta []byte
		err := rows.Scan(
			&item.ID, &item.GirlID, &item.Kind, &item.StorageKey, &item.ThumbKey,
			&rawMeta, &item.Status, &item.RejectReason, &item.SortOrder,
			&item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media item: %w", err)
		}
		if err := json.Unmarshal(rawMeta, &item.Meta); err != nil {
			return nil, fmt.Errorf("failed to decode media meta: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (d *DatabaseClient) DeleteMediaItem(mediaID uuid.UUID) error {
	_, err := d.db.Exec(`
		DELETE FROM girls_media
		WHERE id = $1
	`, mediaID)
	return err
}

// UpdateSortOrders applies a batch of sort_order changes in one transaction.
// Rows not owned by the profile are left untouched.
func (d *DatabaseClient) UpdateSortOrders(girlID uuid.UUID, items []models.SortOrderUpdate) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE girls_media
		SET sort_order = $1
		WHERE id = $2 AND girl_id = $3
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare reorder update: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.Exec(it.SortOrder, it.ID, girlID); err != nil {
			return fmt.Errorf("failed to update sort order for %s: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
