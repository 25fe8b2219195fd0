package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partner-media-backend/internal/metrics"
	"partner-media-backend/internal/models"
)

type ReorderHandler struct {
	dbClient Database
	metrics  *metrics.Metrics
}

func NewReorderHandler(dbClient Database, m *metrics.Metrics) *ReorderHandler {
	return &ReorderHandler{
		dbClient: dbClient,
		metrics:  m,
	}
}

// Reorder godoc
// @Summary     Batch-update display order
// @Description Applies the full set of {id, sort_order} pairs in one
// @Description transaction. Concurrent reorders from two devices resolve
// @Description last-write-wins; clients reconcile by refetching.
// @Tags        media
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ReorderRequest true "Reorder request"
// @Success     200 {object} models.OKResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /reorder [post]
func (h *ReorderHandler) Reorder(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no items to reorder"})
		return
	}

	girl, err := h.dbClient.GetGirlProfile(req.GirlID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load profile", Message: err.Error()})
		return
	}
	if girl == nil || girl.UserID == nil || *girl.UserID != userID {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "not your profile"})
		return
	}

	if err := h.dbClient.UpdateSortOrders(req.GirlID, req.Items); err != nil {
		h.metrics.ReorderTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to reorder media", Message: err.Error()})
		return
	}

	h.metrics.ReorderTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, models.OKResponse{OK: true})
}
