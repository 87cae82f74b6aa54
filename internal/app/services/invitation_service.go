package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/pkg/apperrors"
	"github.com/deniz/commverse/internal/pkg/email"
	"github.com/deniz/commverse/internal/realtime"
)

// InvitationStore is the persistence surface for invitations
type InvitationStore interface {
	Create(ctx context.Context, invitation *models.CommunityInvitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CommunityInvitation, error)
	Decide(ctx context.Context, id uuid.UUID, accepted bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPendingByUser(ctx context.Context, userID uuid.UUID) ([]*models.CommunityInvitation, error)
	ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.CommunityInvitation, error)
}

// InvitationProfileStore resolves invitees
type InvitationProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
}

// InvitationService defines the interface for invitation operations
type InvitationService interface {
	Invite(ctx context.Context, communityID, actorID uuid.UUID, req *dto.InviteRequest) (*dto.InvitationResponse, error)
	Revoke(ctx context.Context, invitationID, actorID uuid.UUID) error
	Accept(ctx context.Context, invitationID, userID uuid.UUID) error
	Decline(ctx context.Context, invitationID, userID uuid.UUID) error
	ListMine(ctx context.Context, userID uuid.UUID) ([]dto.InvitationResponse, error)
	ListByCommunity(ctx context.Context, communityID, actorID uuid.UUID) ([]dto.InvitationResponse, error)
}

// invitationServiceImpl implements InvitationService
type invitationServiceImpl struct {
	invitations   InvitationStore
	communities   CommunityStore
	members       MemberStore
	profiles      InvitationProfileStore
	notifications NotificationService
	emailService  *email.Service
	publisher     Publisher
	logger        zerolog.Logger
}

// NewInvitationService creates a new InvitationService
func NewInvitationService(
	invitations InvitationStore,
	communities CommunityStore,
	members MemberStore,
	profiles InvitationProfileStore,
	notifications NotificationService,
	emailService *email.Service,
	publisher Publisher,
	logger zerolog.Logger,
) InvitationService {
	return &invitationServiceImpl{
		invitations:   invitations,
		communities:   communities,
		members:       members,
		profiles:      profiles,
		notifications: notifications,
		emailService:  emailService,
		publisher:     publisher,
		logger:        logger,
	}
}

// Invite creates a pending invitation for a user by username. Only
// community admins may invite.
func (s *invitationServiceImpl) Invite(ctx context.Context, communityID, actorID uuid.UUID, req *dto.InviteRequest) (*dto.InvitationResponse, error) {
	isAdmin, err := s.members.IsAdmin(ctx, communityID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, apperrors.ErrPermissionDenied
	}

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	invitee, err := s.profiles.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	isMember, err := s.members.IsMember(ctx, communityID, invitee.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, apperrors.ErrAlreadyMember
	}

	invitation := &models.CommunityInvitation{
		CommunityID: communityID,
		UserID:      invitee.ID,
	}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, err
	}

	// The invitee learns about it through their notification channel,
	// other admins through the community topic.
	err = s.notifications.Notify(ctx, &models.Notification{
		UserID:      invitee.ID,
		CommunityID: &communityID,
		Type:        models.NotificationTypeCommunityInvitation,
		ContentID:   &invitation.ID,
		Title:       fmt.Sprintf("You were invited to %s", community.Name),
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("invitationID", invitation.ID.String()).
			Msg("Failed to store invitation notification")
	}
	s.publisher.Publish(realtime.CommunityTopic(communityID), "invitation", dto.NewInvitationResponse(invitation))

	if s.emailService != nil {
		if err := s.emailService.SendInvitation(invitee.Email, community.Name); err != nil {
			s.logger.Warn().
				Err(err).
				Str("invitationID", invitation.ID.String()).
				Msg("Failed to send invitation email")
		}
	}

	resp := dto.NewInvitationResponse(invitation)
	return &resp, nil
}

// Revoke deletes a pending invitation. Only community admins may revoke.
func (s *invitationServiceImpl) Revoke(ctx context.Context, invitationID, actorID uuid.UUID) error {
	invitation, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return err
	}

	isAdmin, err := s.members.IsAdmin(ctx, invitation.CommunityID, actorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return apperrors.ErrPermissionDenied
	}

	if err := s.invitations.Delete(ctx, invitationID); err != nil {
		return err
	}

	s.publisher.Publish(realtime.CommunityTopic(invitation.CommunityID), "invitation_remove", map[string]any{
		"id": invitationID,
	})

	return nil
}

// Accept records the acceptance and enrolls the user. An invitation can
// be decided exactly once.
func (s *invitationServiceImpl) Accept(ctx context.Context, invitationID, userID uuid.UUID) error {
	invitation, err := s.ownInvitation(ctx, invitationID, userID)
	if err != nil {
		return err
	}

	if err := s.invitations.Decide(ctx, invitationID, true); err != nil {
		return err
	}

	member := &models.Member{
		CommunityID: invitation.CommunityID,
		UserID:      userID,
	}
	if err := s.members.Add(ctx, member); err != nil {
		return err
	}

	s.publisher.Publish(realtime.CommunityTopic(invitation.CommunityID), "new_member", map[string]any{
		"communityId": invitation.CommunityID,
		"userId":      userID,
	})

	s.logger.Info().
		Str("invitationID", invitationID.String()).
		Str("userID", userID.String()).
		Msg("Invitation accepted")

	return nil
}

// Decline records the rejection. An invitation can be decided exactly once.
func (s *invitationServiceImpl) Decline(ctx context.Context, invitationID, userID uuid.UUID) error {
	if _, err := s.ownInvitation(ctx, invitationID, userID); err != nil {
		return err
	}

	return s.invitations.Decide(ctx, invitationID, false)
}

// ListMine retrieves the user's pending invitations
func (s *invitationServiceImpl) ListMine(ctx context.Context, userID uuid.UUID) ([]dto.InvitationResponse, error) {
	invitations, err := s.invitations.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return toInvitationResponses(invitations), nil
}

// ListByCommunity retrieves all invitations of a community for its admins
func (s *invitationServiceImpl) ListByCommunity(ctx context.Context, communityID, actorID uuid.UUID) ([]dto.InvitationResponse, error) {
	isAdmin, err := s.members.IsAdmin(ctx, communityID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, apperrors.ErrPermissionDenied
	}

	invitations, err := s.invitations.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	return toInvitationResponses(invitations), nil
}

func (s *invitationServiceImpl) ownInvitation(ctx context.Context, invitationID, userID uuid.UUID) (*models.CommunityInvitation, error) {
	invitation, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if invitation.UserID != userID {
		return nil, apperrors.ErrPermissionDenied
	}
	return invitation, nil
}

func toInvitationResponses(invitations []*models.CommunityInvitation) []dto.InvitationResponse {
	out := make([]dto.InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, dto.NewInvitationResponse(inv))
	}
	return out
}
