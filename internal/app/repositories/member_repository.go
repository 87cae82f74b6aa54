package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/pkg/apperrors"
	"github.com/deniz/commverse/internal/pkg/dberrors"
)

// MemberRepository handles database operations for community memberships
type MemberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

// Add inserts a new membership
func (r *MemberRepository) Add(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO community_members (community_id, user_id, is_admin)
		VALUES ($1, $2, $3)
		RETURNING joined_at
	`

	err := r.db.QueryRow(ctx, query,
		member.CommunityID,
		member.UserID,
		member.IsAdmin,
	).Scan(&member.JoinedAt)

	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrAlreadyMember
		}
		return fmt.Errorf("error adding member: %w", err)
	}

	return nil
}

// Remove deletes a membership
func (r *MemberRepository) Remove(ctx context.Context, communityID, userID uuid.UUID) error {
	query := `
		DELETE FROM community_members
		WHERE community_id = $1 AND user_id = $2
	`

	tag, err := r.db.Exec(ctx, query, communityID, userID)
	if err != nil {
		return fmt.Errorf("error removing member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotMember
	}

	return nil
}

// IsMember checks whether a user belongs to a community
func (r *MemberRepository) IsMember(ctx context.Context, communityID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM community_members
			WHERE community_id = $1 AND user_id = $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, communityID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking membership: %w", err)
	}

	return exists, nil
}

// IsAdmin checks whether a user is an admin of a community
func (r *MemberRepository) IsAdmin(ctx context.Context, communityID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM community_members
			WHERE community_id = $1 AND user_id = $2 AND is_admin = TRUE
		)
	`

	var isAdmin bool
	if err := r.db.QueryRow(ctx, query, communityID, userID).Scan(&isAdmin); err != nil {
		return false, fmt.Errorf("error checking admin status: %w", err)
	}

	return isAdmin, nil
}

// SetAdmin updates the admin flag of a membership
func (r *MemberRepository) SetAdmin(ctx context.Context, communityID, userID uuid.UUID, isAdmin bool) error {
	query := `
		UPDATE community_members
		SET is_admin = $1
		WHERE community_id = $2 AND user_id = $3
	`

	tag, err := r.db.Exec(ctx, query, isAdmin, communityID, userID)
	if err != nil {
		return fmt.Errorf("error updating admin status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotMember
	}

	return nil
}

// ListByCommunity retrieves the members of a community with their
// profiles, oldest membership first.
func (r *MemberRepository) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.Member, error) {
	query := `
		SELECT
			m.community_id, m.user_id, m.is_admin, m.joined_at,
			p.id, p.username, p.email, p.full_name, p.created_at
		FROM community_members m
		JOIN profiles p ON p.id = m.user_id
		WHERE m.community_id = $1
		ORDER BY m.joined_at ASC
	`

	rows, err := r.db.Query(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		var member models.Member
		var profile models.Profile
		if err := rows.Scan(
			&member.CommunityID,
			&member.UserID,
			&member.IsAdmin,
			&member.JoinedAt,
			&profile.ID,
			&profile.Username,
			&profile.Email,
			&profile.FullName,
			&profile.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning member: %w", err)
		}
		member.Profile = &profile
		members = append(members, &member)
	}

	return members, rows.Err()
}

// ListUserIDs retrieves the ids of all members of a community
func (r *MemberRepository) ListUserIDs(ctx context.Context, communityID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT user_id FROM community_members
		WHERE community_id = $1
	`

	rows, err := r.db.Query(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning member id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
