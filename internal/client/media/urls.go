package media

import (
	"fmt"
	"strings"
	"sync"
	"time"

	storage_go "github.com/supabase-community/storage-go"

	"partner-media-backend/internal/mediarules"
	"partner-media-backend/internal/models"
)

// URLSigner is the slice of the storage API the resolver needs. Satisfied
// by storage_go.Client.
type URLSigner interface {
	CreateSignedUrl(bucketID, filePath string, expiresIn int) (storage_go.SignedUrlResponse, error)
}

// Resolver mints signed display URLs for media, picking the bucket by
// moderation status and caching results so scrolling a gallery does not
// re-sign every image.
type Resolver struct {
	storage     URLSigner
	baseURL     string
	tmpBucket   string
	mediaBucket string
	now         func() time.Time

	mu    sync.Mutex
	cache map[string]cachedURL
}

type cachedURL struct {
	url      string
	mintedAt time.Time
}

func NewResolver(storage URLSigner, baseURL, tmpBucket, mediaBucket string) *Resolver {
	return &Resolver{
		storage:     storage,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		tmpBucket:   tmpBucket,
		mediaBucket: mediaBucket,
		now:         time.Now,
		cache:       map[string]cachedURL{},
	}
}

// BucketFor maps a moderation status to the bucket its files live in.
// Approved media is in the permanent bucket, everything else stays in tmp.
func (r *Resolver) BucketFor(status models.MediaStatus) string {
	if mediarules.UsesPermanentBucket(status) {
		return r.mediaBucket
	}
	return r.tmpBucket
}

// URL returns a signed URL for the item's main file.
func (r *Resolver) URL(item models.MediaItem) (string, error) {
	return r.resolve(item.ID.String()+"/"+item.StorageKey, item.Status, item.StorageKey)
}

// ThumbURL returns a signed URL for the item's thumbnail, or "" when the
// item has none.
func (r *Resolver) ThumbURL(item models.MediaItem) (string, error) {
	if item.ThumbKey == nil || *item.ThumbKey == "" {
		return "", nil
	}
	return r.resolve(item.ID.String()+"/"+*item.ThumbKey, item.Status, *item.ThumbKey)
}

// resolve serves from cache while fresh, mints otherwise, and falls back to
// a stale cached URL when minting fails and the entry is still within the
// retain window.
func (r *Resolver) resolve(cacheKey string, status models.MediaStatus, path string) (string, error) {
	r.mu.Lock()
	entry, hit := r.cache[cacheKey]
	r.mu.Unlock()

	if hit && r.now().Sub(entry.mintedAt) < mediarules.URLCacheFresh {
		return entry.url, nil
	}

	resp, err := r.storage.CreateSignedUrl(r.BucketFor(status), path, int(mediarules.SignedURLTTL.Seconds()))
	if err != nil {
		if hit && r.now().Sub(entry.mintedAt) < mediarules.URLCacheRetain {
			return entry.url, nil
		}
		return "", fmt.Errorf("failed to sign url: %w", err)
	}

	url := r.absoluteURL(resp.SignedURL)
	r.mu.Lock()
	r.cache[cacheKey] = cachedURL{url: url, mintedAt: r.now()}
	r.evictExpiredLocked()
	r.mu.Unlock()
	return url, nil
}

// Invalidate drops any cached URLs for the item, as after deletion or a
// status change.
func (r *Resolver) Invalidate(item models.MediaItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, item.ID.String()+"/"+item.StorageKey)
	if item.ThumbKey != nil {
		delete(r.cache, item.ID.String()+"/"+*item.ThumbKey)
	}
}

func (r *Resolver) evictExpiredLocked() {
	cutoff := r.now().Add(-mediarules.URLCacheRetain)
	for k, v := range r.cache {
		if v.mintedAt.Before(cutoff) {
			delete(r.cache, k)
		}
	}
}

func (r *Resolver) absoluteURL(signed string) string {
	if strings.HasPrefix(signed, "http://") || strings.HasPrefix(signed, "https://") {
		return signed
	}
	return r.baseURL + "/storage/v1" + signed
}
