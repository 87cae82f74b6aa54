package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/deniz/commverse/internal/app/models"
)

// CreatePostRequest represents the post creation payload
type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,min=3,max=128"`
	Content string `json:"content" binding:"required"`
}

// CreateCommentRequest represents the comment creation payload
type CreateCommentRequest struct {
	Content          string     `json:"content" binding:"required,max=2000"`
	RepliedCommentID *uuid.UUID `json:"repliedCommentId,omitempty"`
}

// PostResponse represents a post in API responses
type PostResponse struct {
	ID          uuid.UUID `json:"id"`
	CommunityID uuid.UUID `json:"communityId"`
	AuthorID    uuid.UUID `json:"authorId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID               uuid.UUID  `json:"id"`
	PostID           uuid.UUID  `json:"postId"`
	AuthorID         uuid.UUID  `json:"authorId"`
	Content          string     `json:"content"`
	RepliedCommentID *uuid.UUID `json:"repliedCommentId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// PostDetailResponse represents a post with its comments
type PostDetailResponse struct {
	PostResponse
	Comments []CommentResponse `json:"comments"`
}

// NewPostResponse maps a post model to its response form
func NewPostResponse(post *models.Post) PostResponse {
	return PostResponse{
		ID:          post.ID,
		CommunityID: post.CommunityID,
		AuthorID:    post.AuthorID,
		Title:       post.Title,
		Content:     post.Content,
		CreatedAt:   post.CreatedAt,
	}
}

// NewCommentResponse maps a comment model to its response form
func NewCommentResponse(comment *models.PostComment) CommentResponse {
	return CommentResponse{
		ID:               comment.ID,
		PostID:           comment.PostID,
		AuthorID:         comment.AuthorID,
		Content:          comment.Content,
		RepliedCommentID: comment.RepliedCommentID,
		CreatedAt:        comment.CreatedAt,
	}
}
