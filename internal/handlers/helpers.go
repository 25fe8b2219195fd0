package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"partner-media-backend/internal/middleware"
	"partner-media-backend/internal/models"
)

// Database is the subset of the data layer the handlers use. Lookups return
// (nil, nil) when the row does not exist; an error means the query failed.
type Database interface {
	GetGirlProfile(girlID uuid.UUID) (*models.GirlProfile, error)
	GetGirlProfileByUserID(userID uuid.UUID) (*models.GirlProfile, error)
	CountQuota(girlID uuid.UUID) (int, error)
	InsertDraft(girlID uuid.UUID, kind models.MediaKind, storageKey string, thumbKey *string, meta models.MediaMeta, sortOrder int, createdBy uuid.UUID) (*models.MediaItem, error)
	GetMediaItem(mediaID uuid.UUID) (*models.MediaItem, error)
	ListMedia(girlID uuid.UUID) ([]models.MediaItem, error)
	DeleteMediaItem(mediaID uuid.UUID) error
	UpdateSortOrders(girlID uuid.UUID, items []models.SortOrderUpdate) error
}

// Storage is the subset of the storage layer the handlers use.
type Storage interface {
	CreateSignedUploadURL(key string) (string, error)
	CreateSignedURL(status models.MediaStatus, key string, expiresIn int) (string, error)
	RemovePrefix(status models.MediaStatus, prefix string) error
}

// callerID extracts the authenticated account id set by the auth middleware.
// Writes the error response and returns false when it is missing or malformed.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}

	return userID, true
}

// ownedGirlID parses the girl_id query parameter and verifies ownership.
func (h *MediaHandler) ownedGirlID(c *gin.Context, userID uuid.UUID) (uuid.UUID, bool) {
	girlID, err := uuid.Parse(c.Query("girl_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid girl id"})
		return uuid.Nil, false
	}

	girl, err := h.dbClient.GetGirlProfile(girlID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load profile", Message: err.Error()})
		return uuid.Nil, false
	}
	if girl == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "profile not found"})
		return uuid.Nil, false
	}
	if girl.UserID == nil || *girl.UserID != userID {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "not your profile"})
		return uuid.Nil, false
	}

	return girlID, true
}
