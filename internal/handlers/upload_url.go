package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"partner-media-backend/internal/mediarules"
	"partner-media-backend/internal/metrics"
	"partner-media-backend/internal/models"
)

type UploadURLHandler struct {
	dbClient      Database
	storageClient Storage
	metrics       *metrics.Metrics
}

func NewUploadURLHandler(dbClient Database, storageClient Storage, m *metrics.Metrics) *UploadURLHandler {
	return &UploadURLHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
		metrics:       m,
	}
}

// GetUploadURL godoc
// @Summary     Issue signed upload URLs and create a draft record
// @Description Verifies profile ownership, enforces the 30-item quota, mints
// @Description one-time PUT URLs in the temporary bucket and inserts the
// @Description pending draft row before any bytes are transferred.
// @Tags        media
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.GetUploadURLRequest true "Upload request"
// @Success     200 {object} models.GetUploadURLResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /get-upload-url [post]
func (h *UploadURLHandler) GetUploadURL(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.GetUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	if !mediarules.ValidKind(req.Kind) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid media kind"})
		return
	}
	ext := strings.TrimPrefix(strings.ToLower(req.Ext), ".")
	if ext == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing file extension"})
		return
	}

	// Ownership: the draft must belong to the caller's own profile.
	girl, err := h.dbClient.GetGirlProfile(req.GirlID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load profile", Message: err.Error()})
		return
	}
	if girl == nil || girl.UserID == nil || *girl.UserID != userID {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "not your profile"})
		return
	}

	// Quota is enforced here, at creation time. The client-side check is
	// advisory only.
	count, err := h.dbClient.CountQuota(req.GirlID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to check quota", Message: err.Error()})
		return
	}
	if count >= mediarules.MaxMediaPerGirl {
		h.metrics.QuotaRejections.Inc()
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: fmt.Sprintf("maximum %d media items allowed", mediarules.MaxMediaPerGirl),
		})
		return
	}

	// Storage layout: {account}/{uuid}/main.{ext} plus an optional thumb.
	assetID := uuid.New()
	tmpKeyMain := fmt.Sprintf("%s/%s/main.%s", userID, assetID, ext)
	var tmpKeyThumb string
	if req.HasThumb {
		tmpKeyThumb = fmt.Sprintf("%s/%s/thumb.jpg", userID, assetID)
	}

	start := time.Now()
	putURLMain, err := h.storageClient.CreateSignedUploadURL(tmpKeyMain)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create upload URL", Message: err.Error()})
		return
	}

	var putURLThumb string
	if req.HasThumb {
		putURLThumb, err = h.storageClient.CreateSignedUploadURL(tmpKeyThumb)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create thumb upload URL", Message: err.Error()})
			return
		}
	}
	h.metrics.StorageOpDuration.WithLabelValues("signed_upload_url").Observe(time.Since(start).Seconds())

	var thumbKey *string
	if req.HasThumb {
		thumbKey = &tmpKeyThumb
	}
	draft, err := h.dbClient.InsertDraft(req.GirlID, req.Kind, tmpKeyMain, thumbKey, req.Meta, count, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create media record", Message: err.Error()})
		return
	}

	h.metrics.UploadURLsIssued.Inc()

	c.JSON(http.StatusOK, models.GetUploadURLResponse{
		PutURLMain:  putURLMain,
		PutURLThumb: putURLThumb,
		TmpKeyMain:  tmpKeyMain,
		TmpKeyThumb: tmpKeyThumb,
		RecordDraft: *draft,
	})
}
