package models

import (
	"time"

	"github.com/google/uuid"
)

// Community represents a community, the tenancy boundary for messages,
// surveys, posts and invitations
type Community struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	OwnerID     uuid.UUID `json:"ownerId" db:"owner_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	// Related entities
	Members []*Member `json:"members,omitempty"`
}

// Member represents a user's membership in a community. The owner is
// implicitly an admin even when is_admin is false on their row.
type Member struct {
	CommunityID uuid.UUID `json:"communityId" db:"community_id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	IsAdmin     bool      `json:"isAdmin" db:"is_admin"`
	JoinedAt    time.Time `json:"joinedAt" db:"created_at"`

	// Profile snapshot for display
	Profile *Profile `json:"profile,omitempty"`
}

// CommunityInvitation represents an invitation of a user into a community.
// Accepted is tri-state: nil while pending, then decided exactly once.
type CommunityInvitation struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CommunityID uuid.UUID `json:"communityId" db:"community_id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	Accepted    *bool     `json:"accepted" db:"accepted"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Pending reports whether the invitation is still undecided.
func (i *CommunityInvitation) Pending() bool {
	return i.Accepted == nil
}
