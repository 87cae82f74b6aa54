package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/deniz/commverse/internal/app/models"
)

// CreateCommunityRequest represents the community creation payload
type CreateCommunityRequest struct {
	Name        string  `json:"name" binding:"required,min=3,max=64"`
	Description *string `json:"description,omitempty"`
}

// UpdateCommunityRequest represents the community update payload
type UpdateCommunityRequest struct {
	Name        string  `json:"name" binding:"required,min=3,max=64"`
	Description *string `json:"description,omitempty"`
}

// InviteRequest invites a user to a community by username
type InviteRequest struct {
	Username string `json:"username" binding:"required"`
}

// CommunityResponse represents a community in API responses
type CommunityResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     uuid.UUID `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MemberResponse represents a community member with their profile
type MemberResponse struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	FullName *string   `json:"fullName,omitempty"`
	IsAdmin  bool      `json:"isAdmin"`
	JoinedAt time.Time `json:"joinedAt"`
}

// CommunityDetailResponse represents a community with its members
type CommunityDetailResponse struct {
	CommunityResponse
	Members []MemberResponse `json:"members"`
}

// InvitationResponse represents a community invitation
type InvitationResponse struct {
	ID          uuid.UUID `json:"id"`
	CommunityID uuid.UUID `json:"communityId"`
	UserID      uuid.UUID `json:"userId"`
	Accepted    *bool     `json:"accepted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCommunityResponse maps a community model to its response form
func NewCommunityResponse(community *models.Community) CommunityResponse {
	return CommunityResponse{
		ID:          community.ID,
		Name:        community.Name,
		Description: community.Description,
		OwnerID:     community.OwnerID,
		CreatedAt:   community.CreatedAt,
	}
}

// NewMemberResponse maps a membership with profile to its response form
func NewMemberResponse(member *models.Member) MemberResponse {
	resp := MemberResponse{
		UserID:   member.UserID,
		IsAdmin:  member.IsAdmin,
		JoinedAt: member.JoinedAt,
	}
	if member.Profile != nil {
		resp.Username = member.Profile.Username
		resp.FullName = member.Profile.FullName
	}
	return resp
}

// NewInvitationResponse maps an invitation model to its response form
func NewInvitationResponse(invitation *models.CommunityInvitation) InvitationResponse {
	return InvitationResponse{
		ID:          invitation.ID,
		CommunityID: invitation.CommunityID,
		UserID:      invitation.UserID,
		Accepted:    invitation.Accepted,
		CreatedAt:   invitation.CreatedAt,
	}
}
