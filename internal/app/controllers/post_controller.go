package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/app/services"
)

// PostController handles post and comment endpoints
type PostController struct {
	postService services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Create publishes a post in a community
func (pc *PostController) Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := pc.postService.Create(c.Request.Context(), communityID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Get returns a post with its comments
func (pc *PostController) Get(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := pc.postService.Get(c.Request.Context(), postID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListByCommunity returns a community's posts
func (pc *PostController) ListByCommunity(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	communityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := pc.postService.ListByCommunity(c.Request.Context(), communityID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Delete removes a post
func (pc *PostController) Delete(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := pc.postService.Delete(c.Request.Context(), postID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse("Post deleted"))
}

// Comment adds a comment to a post
func (pc *PostController) Comment(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := pc.postService.Comment(c.Request.Context(), postID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}
