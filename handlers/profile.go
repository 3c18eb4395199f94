package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"selfcheck/common"
	"selfcheck/logging"
	"selfcheck/models"
	"selfcheck/services"
)

type ProfileService interface {
	SaveProfile(ctx context.Context, userID uuid.UUID, in services.ProfileInput) error
	GetProfile(ctx context.Context, userID uuid.UUID) (models.ProfileView, error)
}

type ProfileHandler struct {
	profiles ProfileService
	log      logging.Logger
}

func NewProfileHandler(profiles ProfileService, log logging.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, log: log}
}

type saveInfoRequest struct {
	FullName  string     `json:"nome_completo" form:"nome_completo"`
	BirthDate string     `json:"nascimento" form:"nascimento"`
	Weight    flexNumber `json:"peso" form:"peso"`
	Height    flexNumber `json:"altura" form:"altura"`
}

func (h *ProfileHandler) SaveInfo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	var req saveInfoRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, h.log, common.Validation("invalid request body"))
		return
	}

	err := h.profiles.SaveProfile(c.Request.Context(), userID, services.ProfileInput{
		FullName:  req.FullName,
		BirthDate: req.BirthDate,
		Weight:    req.Weight.Ptr(),
		Height:    req.Height.Ptr(),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "profile information saved"})
}

func (h *ProfileHandler) UserInfo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	view, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
