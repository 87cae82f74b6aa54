package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/app/services"
)

// CommunityController handles community endpoints
type CommunityController struct {
	communityService services.CommunityService
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService) *CommunityController {
	return &CommunityController{communityService: communityService}
}

// Create creates a community owned by the caller
func (cc *CommunityController) Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := cc.communityService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Get returns a community with its members
func (cc *CommunityController) Get(c *gin.Context) {
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := cc.communityService.Get(c.Request.Context(), communityID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// List returns communities matching an optional search term
func (cc *CommunityController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := cc.communityService.List(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListMine returns the caller's communities
func (cc *CommunityController) ListMine(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	resp, err := cc.communityService.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Update modifies a community
func (cc *CommunityController) Update(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := cc.communityService.Update(c.Request.Context(), communityID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Delete removes a community
func (cc *CommunityController) Delete(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := cc.communityService.Delete(c.Request.Context(), communityID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Community deleted"))
}

// Leave removes the caller's membership
func (cc *CommunityController) Leave(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := cc.communityService.Leave(c.Request.Context(), communityID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Left community"))
}
