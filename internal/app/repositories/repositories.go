package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	ProfileRepository      *ProfileRepository
	CommunityRepository    *CommunityRepository
	MemberRepository       *MemberRepository
	InvitationRepository   *InvitationRepository
	ChatRepository         *ChatRepository
	SurveyRepository       *SurveyRepository
	PostRepository         *PostRepository
	NotificationRepository *NotificationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ProfileRepository:      NewProfileRepository(db),
		CommunityRepository:    NewCommunityRepository(db),
		MemberRepository:       NewMemberRepository(db),
		InvitationRepository:   NewInvitationRepository(db),
		ChatRepository:         NewChatRepository(db),
		SurveyRepository:       NewSurveyRepository(db),
		PostRepository:         NewPostRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// IsMember implements topic authorization for community-scoped topics.
func (r *Repositories) IsMember(ctx context.Context, communityID, userID uuid.UUID) (bool, error) {
	return r.MemberRepository.IsMember(ctx, communityID, userID)
}

// SurveyCommunity resolves the community a survey belongs to.
func (r *Repositories) SurveyCommunity(ctx context.Context, surveyID uuid.UUID) (uuid.UUID, error) {
	return r.SurveyRepository.GetCommunityID(ctx, surveyID)
}

// PostCommunity resolves the community a post belongs to.
func (r *Repositories) PostCommunity(ctx context.Context, postID uuid.UUID) (uuid.UUID, error) {
	return r.PostRepository.GetCommunityID(ctx, postID)
}
