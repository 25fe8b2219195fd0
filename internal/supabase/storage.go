package supabase

import (
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"

	"partner-media-backend/internal/mediarules"
	"partner-media-backend/internal/models"
)

// StorageClient wraps Supabase Storage for the two-bucket media layout:
// tmpBucket holds items awaiting moderation, mediaBucket holds approved ones.
type StorageClient struct {
	client      *storage.Client
	tmpBucket   string
	mediaBucket string
	baseURL     string
}

func NewStorageClient(supabaseURL, serviceKey, tmpBucket, mediaBucket string) (*StorageClient, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &StorageClient{
		client:      client,
		tmpBucket:   tmpBucket,
		mediaBucket: mediaBucket,
		baseURL:     baseURL,
	}, nil
}

// BucketFor returns the bucket name for an item's current moderation status.
func (s *StorageClient) BucketFor(status models.MediaStatus) string {
	if mediarules.UsesPermanentBucket(status) {
		return s.mediaBucket
	}
	return s.tmpBucket
}

// CreateSignedUploadURL mints a one-time PUT URL in the temporary bucket.
func (s *StorageClient) CreateSignedUploadURL(key string) (string, error) {
	resp, err := s.client.CreateSignedUploadUrl(s.tmpBucket, key)
	if err != nil {
		return "", fmt.Errorf("failed to create signed upload URL for %s: %w", key, err)
	}
	return s.absoluteURL(resp.Url), nil
}

// CreateSignedURL mints a time-limited display URL in the bucket matching
// the item's current status.
func (s *StorageClient) CreateSignedURL(status models.MediaStatus, key string, expiresIn int) (string, error) {
	bucket := s.BucketFor(status)
	resp, err := s.client.CreateSignedUrl(bucket, key, expiresIn)
	if err != nil {
		return "", fmt.Errorf("failed to create signed URL for %s/%s: %w", bucket, key, err)
	}
	return s.absoluteURL(resp.SignedURL), nil
}

// RemovePrefix lists every object under prefix in the status bucket and
// removes them. Listing rather than assuming names avoids orphaned objects.
func (s *StorageClient) RemovePrefix(status models.MediaStatus, prefix string) error {
	bucket := s.BucketFor(status)

	files, err := s.client.ListFiles(bucket, prefix, storage.FileSearchOptions{
		Limit: 100,
	})
	if err != nil {
		return fmt.Errorf("failed to list %s/%s: %w", bucket, prefix, err)
	}

	if len(files) == 0 {
		return nil
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = prefix + "/" + f.Name
	}
	if _, err := s.client.RemoveFile(bucket, paths); err != nil {
		return fmt.Errorf("failed to remove objects under %s/%s: %w", bucket, prefix, err)
	}
	return nil
}

// The storage API returns bucket-relative signed paths.
func (s *StorageClient) absoluteURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return s.baseURL + "/storage/v1" + u
}
