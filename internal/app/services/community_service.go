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

// CommunityStore is the persistence surface for communities
type CommunityStore interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error)
	List(ctx context.Context, search string, limit, offset int) ([]*models.Community, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.Community, error)
	Update(ctx context.Context, community *models.Community) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemberStore is the persistence surface for memberships
type MemberStore interface {
	Add(ctx context.Context, member *models.Member) error
	Remove(ctx context.Context, communityID, userID uuid.UUID) error
	IsMember(ctx context.Context, communityID, userID uuid.UUID) (bool, error)
	IsAdmin(ctx context.Context, communityID, userID uuid.UUID) (bool, error)
	ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.Member, error)
}

// CommunityService defines the interface for community operations
type CommunityService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req *dto.CreateCommunityRequest) (*dto.CommunityResponse, error)
	Get(ctx context.Context, communityID uuid.UUID) (*dto.CommunityDetailResponse, error)
	List(ctx context.Context, search string, limit, offset int) ([]dto.CommunityResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]dto.CommunityResponse, error)
	Update(ctx context.Context, communityID, userID uuid.UUID, req *dto.UpdateCommunityRequest) (*dto.CommunityResponse, error)
	Delete(ctx context.Context, communityID, userID uuid.UUID) error
	Leave(ctx context.Context, communityID, userID uuid.UUID) error
}

// communityServiceImpl implements CommunityService
type communityServiceImpl struct {
	communities CommunityStore
	members     MemberStore
	publisher   Publisher
	logger      zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(
	communities CommunityStore,
	members MemberStore,
	publisher Publisher,
	logger zerolog.Logger,
) CommunityService {
	return &communityServiceImpl{
		communities: communities,
		members:     members,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create creates a community and enrolls the owner as its first admin
func (s *communityServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, req *dto.CreateCommunityRequest) (*dto.CommunityResponse, error) {
	community := &models.Community{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
	}

	if err := s.communities.Create(ctx, community); err != nil {
		return nil, err
	}

	member := &models.Member{
		CommunityID: community.ID,
		UserID:      ownerID,
		IsAdmin:     true,
	}
	if err := s.members.Add(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("communityID", community.ID.String()).
		Str("ownerID", ownerID.String()).
		Msg("Community created")

	resp := dto.NewCommunityResponse(community)
	return &resp, nil
}

// Get retrieves a community with its member list
func (s *communityServiceImpl) Get(ctx context.Context, communityID uuid.UUID) (*dto.CommunityDetailResponse, error) {
	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	members, err := s.members.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CommunityDetailResponse{
		CommunityResponse: dto.NewCommunityResponse(community),
		Members:           make([]dto.MemberResponse, 0, len(members)),
	}
	for _, m := range members {
		resp.Members = append(resp.Members, dto.NewMemberResponse(m))
	}

	return resp, nil
}

// List retrieves communities matching an optional name search
func (s *communityServiceImpl) List(ctx context.Context, search string, limit, offset int) ([]dto.CommunityResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	communities, err := s.communities.List(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}

	return toCommunityResponses(communities), nil
}

// ListMine retrieves the communities the user belongs to
func (s *communityServiceImpl) ListMine(ctx context.Context, userID uuid.UUID) ([]dto.CommunityResponse, error) {
	communities, err := s.communities.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	return toCommunityResponses(communities), nil
}

// Update modifies a community. Only admins may update.
func (s *communityServiceImpl) Update(ctx context.Context, communityID, userID uuid.UUID, req *dto.UpdateCommunityRequest) (*dto.CommunityResponse, error) {
	if err := s.requireAdmin(ctx, communityID, userID); err != nil {
		return nil, err
	}

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	community.Name = req.Name
	community.Description = req.Description
	if err := s.communities.Update(ctx, community); err != nil {
		return nil, err
	}

	resp := dto.NewCommunityResponse(community)
	return &resp, nil
}

// Delete removes a community. Only the owner may delete.
func (s *communityServiceImpl) Delete(ctx context.Context, communityID, userID uuid.UUID) error {
	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.OwnerID != userID {
		return apperrors.ErrPermissionDenied
	}

	return s.communities.Delete(ctx, communityID)
}

// Leave removes the user's own membership. The owner cannot leave their
// community, they must delete it instead.
func (s *communityServiceImpl) Leave(ctx context.Context, communityID, userID uuid.UUID) error {
	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.OwnerID == userID {
		return apperrors.ErrOwnerCannotLeave
	}

	if err := s.members.Remove(ctx, communityID, userID); err != nil {
		return err
	}

	s.publisher.Publish(realtime.CommunityTopic(communityID), "member_left", map[string]any{
		"communityId": communityID,
		"userId":      userID,
	})

	return nil
}

func (s *communityServiceImpl) requireAdmin(ctx context.Context, communityID, userID uuid.UUID) error {
	isAdmin, err := s.members.IsAdmin(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

func toCommunityResponses(communities []*models.Community) []dto.CommunityResponse {
	out := make([]dto.CommunityResponse, 0, len(communities))
	for _, c := range communities {
		out = append(out, dto.NewCommunityResponse(c))
	}
	return out
}
