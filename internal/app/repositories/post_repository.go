package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/pkg/apperrors"
)

// PostRepository handles database operations for posts and comments
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (community_id, author_id, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		post.CommunityID,
		post.AuthorID,
		post.Title,
		post.Content,
	).Scan(&post.ID, &post.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by its ID
func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	query := `
		SELECT id, community_id, author_id, title, content, created_at
		FROM posts
		WHERE id = $1
	`

	var post models.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.CommunityID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving post: %w", err)
	}

	return &post, nil
}

// GetCommunityID resolves the community a post belongs to
func (r *PostRepository) GetCommunityID(ctx context.Context, postID uuid.UUID) (uuid.UUID, error) {
	var communityID uuid.UUID
	err := r.db.QueryRow(ctx,
		`SELECT community_id FROM posts WHERE id = $1`, postID,
	).Scan(&communityID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperrors.ErrResourceNotFound
		}
		return uuid.Nil, fmt.Errorf("error retrieving post community: %w", err)
	}

	return communityID, nil
}

// ListByCommunity retrieves a community's posts, newest first
func (r *PostRepository) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.Post, error) {
	query := `
		SELECT id, community_id, author_id, title, content, created_at
		FROM posts
		WHERE community_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(
			&post.ID,
			&post.CommunityID,
			&post.AuthorID,
			&post.Title,
			&post.Content,
			&post.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, &post)
	}

	return posts, rows.Err()
}

// Delete removes a post with its comments
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}

// CreateComment inserts a new comment on a post
func (r *PostRepository) CreateComment(ctx context.Context, comment *models.PostComment) error {
	query := `
		INSERT INTO post_comments (post_id, author_id, content, replied_comment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		comment.RepliedCommentID,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating comment: %w", err)
	}

	return nil
}

// ListComments retrieves a post's comments, oldest first
func (r *PostRepository) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.PostComment, error) {
	query := `
		SELECT id, post_id, author_id, content, replied_comment_id, created_at
		FROM post_comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var comments []*models.PostComment
	for rows.Next() {
		var comment models.PostComment
		if err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.AuthorID,
			&comment.Content,
			&comment.RepliedCommentID,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		comments = append(comments, &comment)
	}

	return comments, rows.Err()
}
