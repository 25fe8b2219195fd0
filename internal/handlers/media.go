package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"partner-media-backend/internal/mediarules"
	"partner-media-backend/internal/models"
)

type MediaHandler struct {
	dbClient      Database
	storageClient Storage
}

func NewMediaHandler(dbClient Database, storageClient Storage) *MediaHandler {
	return &MediaHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
	}
}

// ListMedia godoc
// @Summary     List the caller's gallery
// @Description Returns all media items for the profile ordered by
// @Description (sort_order asc, created_at desc).
// @Tags        media
// @Produce     json
// @Security    Bearer
// @Param       girl_id query string true "Profile id (UUID)"
// @Success     200 {object} models.MediaListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /media [get]
func (h *MediaHandler) ListMedia(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	girlID, ok := h.ownedGirlID(c, userID)
	if !ok {
		return
	}

	items, err := h.dbClient.ListMedia(girlID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list media", Message: err.Error()})
		return
	}
	if items == nil {
		items = []models.MediaItem{}
	}

	c.JSON(http.StatusOK, models.MediaListResponse{Items: items})
}

// GetQuota godoc
// @Summary     Get quota usage
// @Description Counts pending and approved items against the per-profile cap.
// @Tags        media
// @Produce     json
// @Security    Bearer
// @Param       girl_id query string true "Profile id (UUID)"
// @Success     200 {object} models.QuotaResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /media/quota [get]
func (h *MediaHandler) GetQuota(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	girlID, ok := h.ownedGirlID(c, userID)
	if !ok {
		return
	}

	count, err := h.dbClient.CountQuota(girlID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to count media", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.QuotaResponse{Count: count, Max: mediarules.MaxMediaPerGirl})
}

// GetMediaURL godoc
// @Summary     Mint signed display URLs for one item
// @Description Signs time-limited read URLs against the bucket matching the
// @Description item's current moderation status.
// @Tags        media
// @Produce     json
// @Security    Bearer
// @Param       media_id query string true "Media id (UUID)"
// @Success     200 {object} models.MediaURLResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /media/url [get]
func (h *MediaHandler) GetMediaURL(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	mediaID, err := uuid.Parse(c.Query("media_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid media id"})
		return
	}

	item, err := h.dbClient.GetMediaItem(mediaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load media", Message: err.Error()})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "media not found"})
		return
	}

	girl, err := h.dbClient.GetGirlProfile(item.GirlID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load profile", Message: err.Error()})
		return
	}
	if girl == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "profile not found"})
		return
	}
	if girl.UserID == nil || *girl.UserID != userID {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "forbidden"})
		return
	}

	ttl := int(mediarules.SignedURLTTL.Seconds())
	url, err := h.storageClient.CreateSignedURL(item.Status, item.StorageKey, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to sign URL", Message: err.Error()})
		return
	}

	resp := models.MediaURLResponse{URL: url, ExpiresIn: ttl}
	if item.ThumbKey != nil && *item.ThumbKey != "" {
		thumbURL, err := h.storageClient.CreateSignedURL(item.Status, *item.ThumbKey, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to sign thumb URL", Message: err.Error()})
			return
		}
		resp.ThumbURL = thumbURL
	}

	c.JSON(http.StatusOK, resp)
}
