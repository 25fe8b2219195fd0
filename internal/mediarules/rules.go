// Package mediarules holds the media policy shared by the server and the
// client SDK: upload limits, quota accounting, deletion eligibility and
// bucket selection.
package mediarules

import (
	"time"

	"partner-media-backend/internal/models"
)

const (
	PhotoMaxBytes = 4 << 20 // after compression
	PhotoMaxDim   = 2160
	PhotoQuality  = 82 // JPEG quality, matches the app's 0.82 factor

	VideoMaxBytes    = 120 << 20
	VideoMaxDuration = 60 * time.Second

	MaxMediaPerGirl = 30

	// Signed display URLs are valid for an hour; the client caches them
	// for a shorter fresh window and keeps stale ones a while longer.
	SignedURLTTL   = time.Hour
	URLCacheFresh  = 30 * time.Minute
	URLCacheRetain = time.Hour
)

// CountsTowardQuota reports whether an item in this status occupies a quota
// slot. Rejected items never block new uploads.
func CountsTowardQuota(s models.MediaStatus) bool {
	return s == models.StatusPending || s == models.StatusApproved
}

// Deletable reports whether the owner may delete an item in this status.
func Deletable(s models.MediaStatus) bool {
	return s == models.StatusPending || s == models.StatusRejected
}

// UsesPermanentBucket picks the bucket from the item's current status, never
// from where it was originally written.
func UsesPermanentBucket(s models.MediaStatus) bool {
	return s == models.StatusApproved
}

// ValidKind reports whether the kind is one the pipeline accepts.
func ValidKind(k models.MediaKind) bool {
	switch k {
	case models.KindImage, models.KindVideo, models.KindLivePhoto:
		return true
	}
	return false
}
