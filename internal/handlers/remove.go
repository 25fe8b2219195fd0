package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"partner-media-backend/internal/mediarules"
	"partner-media-backend/internal/metrics"
	"partner-media-backend/internal/models"
)

type RemoveHandler struct {
	dbClient      Database
	storageClient Storage
	metrics       *metrics.Metrics
}

func NewRemoveHandler(dbClient Database, storageClient Storage, m *metrics.Metrics) *RemoveHandler {
	return &RemoveHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
		metrics:       m,
	}
}

// RemoveTmp godoc
// @Summary     Delete a pending or rejected media item
// @Description Verifies ownership and status eligibility, removes every
// @Description storage object under the item's path prefix, then deletes the
// @Description record. The record deletion is the authoritative signal;
// @Description clients refetch afterwards.
// @Tags        media
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.RemoveTmpRequest true "Media id"
// @Success     200 {object} models.OKResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /remove-tmp [post]
func (h *RemoveHandler) RemoveTmp(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.RemoveTmpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	item, err := h.dbClient.GetMediaItem(req.MediaID)
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

	// Status eligibility comes before any storage access: approved items
	// are immutable for the owner.
	if !mediarules.Deletable(item.Status) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "can only delete pending or rejected media"})
		return
	}

	// Keys look like {account}/{uuid}/main.{ext}; everything under the
	// {account}/{uuid} prefix belongs to this item.
	if prefix := keyPrefix(item.StorageKey); prefix != "" {
		start := time.Now()
		if err := h.storageClient.RemovePrefix(item.Status, prefix); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to remove storage objects", Message: err.Error()})
			return
		}
		h.metrics.StorageOpDuration.WithLabelValues("remove_prefix").Observe(time.Since(start).Seconds())
	}

	if err := h.dbClient.DeleteMediaItem(item.ID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete media record", Message: err.Error()})
		return
	}

	h.metrics.MediaDeleted.Inc()
	c.JSON(http.StatusOK, models.OKResponse{OK: true})
}

func keyPrefix(storageKey string) string {
	parts := strings.Split(storageKey, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0] + "/" + parts[1]
}
