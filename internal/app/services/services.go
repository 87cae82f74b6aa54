package services

import (
	"github.com/rs/zerolog"

	"github.com/deniz/commverse/internal/app/repositories"
	"github.com/deniz/commverse/internal/pkg/auth"
	"github.com/deniz/commverse/internal/pkg/email"
)

// Publisher is the outbound side of the realtime channel. Satisfied by
// realtime.Hub.
type Publisher interface {
	Publish(topic, name string, payload any)
}

// Services holds all the service instances
type Services struct {
	AuthService         AuthService
	CommunityService    CommunityService
	InvitationService   InvitationService
	ChatService         ChatService
	SurveyService       SurveyService
	PostService         PostService
	NotificationService NotificationService
}

// NewServices initializes all services
func NewServices(
	repos *repositories.Repositories,
	cache *repositories.NotificationCache,
	jwtService *auth.JWTService,
	emailService *email.Service,
	publisher Publisher,
	logger zerolog.Logger,
) *Services {
	notificationService := NewNotificationService(
		repos.NotificationRepository,
		repos.MemberRepository,
		cache,
		publisher,
		logger,
	)

	return &Services{
		AuthService: NewAuthService(repos.ProfileRepository, jwtService, logger),
		CommunityService: NewCommunityService(
			repos.CommunityRepository,
			repos.MemberRepository,
			publisher,
			logger,
		),
		InvitationService: NewInvitationService(
			repos.InvitationRepository,
			repos.CommunityRepository,
			repos.MemberRepository,
			repos.ProfileRepository,
			notificationService,
			emailService,
			publisher,
			logger,
		),
		ChatService: NewChatService(
			repos.ChatRepository,
			repos.MemberRepository,
			repos.ProfileRepository,
			publisher,
			logger,
		),
		SurveyService: NewSurveyService(
			repos.SurveyRepository,
			repos.MemberRepository,
			notificationService,
			publisher,
			logger,
		),
		PostService: NewPostService(
			repos.PostRepository,
			repos.MemberRepository,
			notificationService,
			publisher,
			logger,
		),
		NotificationService: notificationService,
	}
}
