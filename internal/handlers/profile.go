package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partner-media-backend/internal/models"
)

type ProfileHandler struct {
	dbClient Database
}

func NewProfileHandler(dbClient Database) *ProfileHandler {
	return &ProfileHandler{dbClient: dbClient}
}

// GetMyProfile godoc
// @Summary     Get the caller's linked profile
// @Description Resolves the profile linked to the authenticated account.
// @Description 404 when no profile is linked, 403 when it is blocked.
// @Tags        profile
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.GirlProfile
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /me [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	girl, err := h.dbClient.GetGirlProfileByUserID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load profile", Message: err.Error()})
		return
	}
	if girl == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no profile linked to this account"})
		return
	}
	if girl.IsBlocked {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "profile is blocked"})
		return
	}

	c.JSON(http.StatusOK, girl)
}
