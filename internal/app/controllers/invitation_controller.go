package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/app/services"
)

// InvitationController handles community invitation endpoints
type InvitationController struct {
	invitationService services.InvitationService
}

// NewInvitationController creates a new InvitationController
func NewInvitationController(invitationService services.InvitationService) *InvitationController {
	return &InvitationController{invitationService: invitationService}
}

// Invite invites a user to a community by username
func (ic *InvitationController) Invite(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := ic.invitationService.Invite(c.Request.Context(), communityID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// ListByCommunity returns a community's invitations for its admins
func (ic *InvitationController) ListByCommunity(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := ic.invitationService.ListByCommunity(c.Request.Context(), communityID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListMine returns the caller's pending invitations
func (ic *InvitationController) ListMine(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	resp, err := ic.invitationService.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Accept accepts a pending invitation
func (ic *InvitationController) Accept(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	invitationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := ic.invitationService.Accept(c.Request.Context(), invitationID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Invitation accepted"))
}

// Decline declines a pending invitation
func (ic *InvitationController) Decline(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	invitationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := ic.invitationService.Decline(c.Request.Context(), invitationID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Invitation declined"))
}

// Revoke withdraws a pending invitation
func (ic *InvitationController) Revoke(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	invitationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := ic.invitationService.Revoke(c.Request.Context(), invitationID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Invitation revoked"))
}
