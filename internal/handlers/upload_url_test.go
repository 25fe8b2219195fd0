package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-media-backend/internal/handlers"
	"partner-media-backend/internal/metrics"
	"partner-media-backend/internal/middleware"
	"partner-media-backend/internal/models"
)

type fakeDB struct {
	girl     *models.GirlProfile
	girlErr  error
	count    int
	countErr error
	item     *models.MediaItem
	itemErr  error
	items    []models.MediaItem

	deleteErr error
	sortErr   error
	sorted    []models.SortOrderUpdate
}

func (f *fakeDB) GetGirlProfile(uuid.UUID) (*models.GirlProfile, error) {
	return f.girl, f.girlErr
}

func (f *fakeDB) GetGirlProfileByUserID(uuid.UUID) (*models.GirlProfile, error) {
	return f.girl, f.girlErr
}

func (f *fakeDB) CountQuota(uuid.UUID) (int, error) {
	return f.count, f.countErr
}

func (f *fakeDB) InsertDraft(girlID uuid.UUID, kind models.MediaKind, storageKey string, thumbKey *string, _ models.MediaMeta, sortOrder int, createdBy uuid.UUID) (*models.MediaItem, error) {
	return &models.MediaItem{
		ID:         uuid.New(),
		GirlID:     girlID,
		Kind:       kind,
		StorageKey: storageKey,
		ThumbKey:   thumbKey,
		Status:     models.StatusPending,
		SortOrder:  sortOrder,
		CreatedBy:  createdBy,
	}, nil
}

func (f *fakeDB) GetMediaItem(uuid.UUID) (*models.MediaItem, error) {
	return f.item, f.itemErr
}

func (f *fakeDB) ListMedia(uuid.UUID) ([]models.MediaItem, error) {
	return f.items, nil
}

func (f *fakeDB) DeleteMediaItem(uuid.UUID) error {
	return f.deleteErr
}

func (f *fakeDB) UpdateSortOrders(_ uuid.UUID, items []models.SortOrderUpdate) error {
	if f.sortErr != nil {
		return f.sortErr
	}
	f.sorted = items
	return nil
}

type fakeStorage struct {
	uploadErr error
	removeErr error
	removed   []string
}

func (f *fakeStorage) CreateSignedUploadURL(key string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "https://storage.test/sign/" + key, nil
}

func (f *fakeStorage) CreateSignedURL(_ models.MediaStatus, key string, _ int) (string, error) {
	return "https://storage.test/read/" + key, nil
}

func (f *fakeStorage) RemovePrefix(_ models.MediaStatus, prefix string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, prefix)
	return nil
}

// authedRouter mounts the handler behind a stub of the auth middleware.
func authedRouter(userID uuid.UUID, method, path string, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(middleware.UserIDKey, userID.String()) })
	router.Handle(method, path, handler)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testMetrics() *metrics.Metrics {
	return metrics.NewWith(prometheus.NewRegistry())
}

func ownedProfile(userID uuid.UUID) *models.GirlProfile {
	return &models.GirlProfile{ID: uuid.New(), UserID: &userID}
}

func TestGetUploadURL_IssuesURLsAndDraft(t *testing.T) {
	userID := uuid.New()
	girl := ownedProfile(userID)
	db := &fakeDB{girl: girl, count: 3}
	h := handlers.NewUploadURLHandler(db, &fakeStorage{}, testMetrics())
	router := authedRouter(userID, http.MethodPost, "/get-upload-url", h.GetUploadURL)

	w := postJSON(t, router, "/get-upload-url", models.GetUploadURLRequest{
		GirlID:   girl.ID,
		Kind:     models.KindImage,
		Ext:      "jpg",
		HasThumb: true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.GetUploadURLResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.PutURLMain)
	assert.NotEmpty(t, resp.PutURLThumb)
	assert.Contains(t, resp.TmpKeyMain, "/main.jpg")
	assert.Contains(t, resp.TmpKeyThumb, "/thumb.jpg")
	assert.Equal(t, girl.ID, resp.RecordDraft.GirlID)
	assert.Equal(t, models.StatusPending, resp.RecordDraft.Status)
	assert.Equal(t, 3, resp.RecordDraft.SortOrder, "draft appended after existing items")
}

func TestGetUploadURL_UnknownProfileIsForbidden(t *testing.T) {
	h := handlers.NewUploadURLHandler(&fakeDB{}, &fakeStorage{}, testMetrics())
	router := authedRouter(uuid.New(), http.MethodPost, "/get-upload-url", h.GetUploadURL)

	w := postJSON(t, router, "/get-upload-url", models.GetUploadURLRequest{
		GirlID: uuid.New(), Kind: models.KindImage, Ext: "jpg",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetUploadURL_NotOwnerIsForbidden(t *testing.T) {
	db := &fakeDB{girl: ownedProfile(uuid.New())}
	h := handlers.NewUploadURLHandler(db, &fakeStorage{}, testMetrics())
	router := authedRouter(uuid.New(), http.MethodPost, "/get-upload-url", h.GetUploadURL)

	w := postJSON(t, router, "/get-upload-url", models.GetUploadURLRequest{
		GirlID: db.girl.ID, Kind: models.KindImage, Ext: "jpg",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetUploadURL_ProfileLookupFailureIsServerError(t *testing.T) {
	db := &fakeDB{girlErr: assert.AnError}
	h := handlers.NewUploadURLHandler(db, &fakeStorage{}, testMetrics())
	router := authedRouter(uuid.New(), http.MethodPost, "/get-upload-url", h.GetUploadURL)

	w := postJSON(t, router, "/get-upload-url", models.GetUploadURLRequest{
		GirlID: uuid.New(), Kind: models.KindImage, Ext: "jpg",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code, "a down database is not an ownership verdict")
}

func TestGetUploadURL_QuotaFullIsConflict(t *testing.T) {
	userID := uuid.New()
	girl := ownedProfile(userID)
	db := &fakeDB{girl: girl, count: 30}
	h := handlers.NewUploadURLHandler(db, &fakeStorage{}, testMetrics())
	router := authedRouter(userID, http.MethodPost, "/get-upload-url", h.GetUploadURL)

	w := postJSON(t, router, "/get-upload-url", models.GetUploadURLRequest{
		GirlID: girl.ID, Kind: models.KindImage, Ext: "jpg",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
