package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/pkg/apperrors"
	"github.com/deniz/commverse/internal/pkg/auth"
)

// ProfileStore is the persistence surface the auth service depends on
type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	profiles   ProfileStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(profiles ProfileStore, jwtService *auth.JWTService, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		profiles:   profiles,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a new profile and returns a token for it
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		FullName: req.FullName,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("userID", profile.ID.String()).
		Str("username", profile.Username).
		Msg("User registered")

	return s.tokenResponse(profile)
}

// Login verifies credentials and returns a token
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	profile, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		// Do not reveal whether the email exists
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(profile.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.tokenResponse(profile)
}

// GetProfile retrieves the profile of the authenticated user
func (s *authServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewProfileResponse(profile)
	return &resp, nil
}

func (s *authServiceImpl) tokenResponse(profile *models.Profile) (*dto.TokenResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateToken(profile)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
		User:      dto.NewProfileResponse(profile),
	}, nil
}
