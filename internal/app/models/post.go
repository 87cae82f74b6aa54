package models

import (
	"time"

	"github.com/google/uuid"
)

// Post represents a community announcement post
type Post struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CommunityID uuid.UUID `json:"communityId" db:"community_id"`
	AuthorID    uuid.UUID `json:"authorId" db:"author_id"`
	Title       string    `json:"title" db:"title"`
	Content     string    `json:"content" db:"content"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	// Related entities
	Comments []*PostComment `json:"comments,omitempty"`
}

// PostComment represents a comment on a post. RepliedCommentID forms a
// parent-reference relation; depth limiting is a presentation concern.
type PostComment struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	PostID           uuid.UUID  `json:"postId" db:"post_id"`
	AuthorID         uuid.UUID  `json:"authorId" db:"author_id"`
	Content          string     `json:"content" db:"content"`
	RepliedCommentID *uuid.UUID `json:"repliedCommentId,omitempty" db:"replied_comment_id"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
}
