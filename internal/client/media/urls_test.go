package media

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage_go "github.com/supabase-community/storage-go"

	"partner-media-backend/internal/mediarules"
	"partner-media-backend/internal/models"
)

type fakeSigner struct {
	calls   int
	err     error
	buckets []string
}

func (f *fakeSigner) CreateSignedUrl(bucketID, filePath string, expiresIn int) (storage_go.SignedUrlResponse, error) {
	f.calls++
	f.buckets = append(f.buckets, bucketID)
	if f.err != nil {
		return storage_go.SignedUrlResponse{}, f.err
	}
	return storage_go.SignedUrlResponse{SignedURL: "/object/sign/" + bucketID + "/" + filePath + "?token=abc"}, nil
}

func newTestResolver(signer *fakeSigner) (*Resolver, *time.Time) {
	r := NewResolver(signer, "https://proj.supabase.co", "tmp-uploads", "girls-media")
	now := time.Now()
	r.now = func() time.Time { return now }
	return r, &now
}

func item(status models.MediaStatus) models.MediaItem {
	return models.MediaItem{ID: uuid.New(), StorageKey: "acc/asset/main.jpg", Status: status}
}

func TestResolver_BucketFollowsStatus(t *testing.T) {
	signer := &fakeSigner{}
	r, _ := newTestResolver(signer)

	_, err := r.URL(item(models.StatusPending))
	require.NoError(t, err)
	_, err = r.URL(item(models.StatusRejected))
	require.NoError(t, err)
	_, err = r.URL(item(models.StatusApproved))
	require.NoError(t, err)

	assert.Equal(t, []string{"tmp-uploads", "tmp-uploads", "girls-media"}, signer.buckets)
}

func TestResolver_RelativeURLsAreAbsolutized(t *testing.T) {
	r, _ := newTestResolver(&fakeSigner{})

	url, err := r.URL(item(models.StatusPending))
	require.NoError(t, err)
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/sign/tmp-uploads/acc/asset/main.jpg?token=abc", url)
}

func TestResolver_FreshCacheSkipsSigning(t *testing.T) {
	signer := &fakeSigner{}
	r, now := newTestResolver(signer)
	it := item(models.StatusPending)

	first, err := r.URL(it)
	require.NoError(t, err)

	*now = now.Add(mediarules.URLCacheFresh - time.Minute)
	second, err := r.URL(it)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, signer.calls)
}

func TestResolver_StaleEntryIsReminted(t *testing.T) {
	signer := &fakeSigner{}
	r, now := newTestResolver(signer)
	it := item(models.StatusPending)

	_, err := r.URL(it)
	require.NoError(t, err)

	*now = now.Add(mediarules.URLCacheFresh + time.Minute)
	_, err = r.URL(it)
	require.NoError(t, err)
	assert.Equal(t, 2, signer.calls)
}

func TestResolver_StaleFallbackWhenMintingFails(t *testing.T) {
	signer := &fakeSigner{}
	r, now := newTestResolver(signer)
	it := item(models.StatusPending)

	first, err := r.URL(it)
	require.NoError(t, err)

	signer.err = errors.New("storage down")
	*now = now.Add(mediarules.URLCacheFresh + time.Minute)
	second, err := r.URL(it)
	require.NoError(t, err, "a stale URL beats no URL")
	assert.Equal(t, first, second)

	*now = now.Add(mediarules.URLCacheRetain)
	_, err = r.URL(it)
	assert.Error(t, err, "beyond the retain window the failure surfaces")
}

func TestResolver_ThumbURL(t *testing.T) {
	signer := &fakeSigner{}
	r, _ := newTestResolver(signer)

	it := item(models.StatusApproved)
	url, err := r.ThumbURL(it)
	require.NoError(t, err)
	assert.Empty(t, url, "no thumb key, no URL")
	assert.Zero(t, signer.calls)

	thumb := "acc/asset/thumb.jpg"
	it.ThumbKey = &thumb
	url, err = r.ThumbURL(it)
	require.NoError(t, err)
	assert.Contains(t, url, "girls-media/acc/asset/thumb.jpg")
}
