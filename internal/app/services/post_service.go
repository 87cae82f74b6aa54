package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/pkg/apperrors"
	"github.com/deniz/commverse/internal/realtime"
)

// PostStore is the persistence surface for posts and comments
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CreateComment(ctx context.Context, comment *models.PostComment) error
	ListComments(ctx context.Context, postID uuid.UUID) ([]*models.PostComment, error)
}

// PostService defines the interface for post operations
type PostService interface {
	Create(ctx context.Context, communityID, authorID uuid.UUID, req *dto.CreatePostRequest) (*dto.PostResponse, error)
	Get(ctx context.Context, postID, userID uuid.UUID) (*dto.PostDetailResponse, error)
	ListByCommunity(ctx context.Context, communityID, userID uuid.UUID) ([]dto.PostResponse, error)
	Delete(ctx context.Context, postID, userID uuid.UUID) error
	Comment(ctx context.Context, postID, authorID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
}

// postServiceImpl implements PostService
type postServiceImpl struct {
	posts         PostStore
	members       MemberStore
	notifications NotificationService
	publisher     Publisher
	logger        zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	posts PostStore,
	members MemberStore,
	notifications NotificationService,
	publisher Publisher,
	logger zerolog.Logger,
) PostService {
	return &postServiceImpl{
		posts:         posts,
		members:       members,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// Create publishes a new post and notifies the community members
func (s *postServiceImpl) Create(ctx context.Context, communityID, authorID uuid.UUID, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	if err := s.requireMember(ctx, communityID, authorID); err != nil {
		return nil, err
	}

	post := &models.Post{
		CommunityID: communityID,
		AuthorID:    authorID,
		Title:       req.Title,
		Content:     req.Content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	err := s.notifications.NotifyMembers(ctx, communityID, authorID, &models.Notification{
		Type:      models.NotificationTypePostCreation,
		ContentID: &post.ID,
		Title:     post.Title,
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("postID", post.ID.String()).
			Msg("Failed to notify members about new post")
	}

	resp := dto.NewPostResponse(post)
	return &resp, nil
}

// Get retrieves a post with its comments
func (s *postServiceImpl) Get(ctx context.Context, postID, userID uuid.UUID) (*dto.PostDetailResponse, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, post.CommunityID, userID); err != nil {
		return nil, err
	}

	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PostDetailResponse{
		PostResponse: dto.NewPostResponse(post),
		Comments:     make([]dto.CommentResponse, 0, len(comments)),
	}
	for _, c := range comments {
		resp.Comments = append(resp.Comments, dto.NewCommentResponse(c))
	}

	return resp, nil
}

// ListByCommunity retrieves a community's posts, newest first
func (s *postServiceImpl) ListByCommunity(ctx context.Context, communityID, userID uuid.UUID) ([]dto.PostResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, dto.NewPostResponse(p))
	}
	return out, nil
}

// Delete removes a post. Authors may delete their own, admins any.
func (s *postServiceImpl) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != userID {
		isAdmin, err := s.members.IsAdmin(ctx, post.CommunityID, userID)
		if err != nil {
			return err
		}
		if !isAdmin {
			return apperrors.ErrPermissionDenied
		}
	}

	return s.posts.Delete(ctx, postID)
}

// Comment adds a comment to a post and publishes it on the post's topic
func (s *postServiceImpl) Comment(ctx context.Context, postID, authorID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, post.CommunityID, authorID); err != nil {
		return nil, err
	}

	comment := &models.PostComment{
		PostID:           postID,
		AuthorID:         authorID,
		Content:          req.Content,
		RepliedCommentID: req.RepliedCommentID,
	}
	if err := s.posts.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	resp := dto.NewCommentResponse(comment)
	s.publisher.Publish(realtime.PostTopic(postID), "comment", resp)

	return &resp, nil
}

func (s *postServiceImpl) requireMember(ctx context.Context, communityID, userID uuid.UUID) error {
	isMember, err := s.members.IsMember(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.ErrNotMember
	}
	return nil
}
