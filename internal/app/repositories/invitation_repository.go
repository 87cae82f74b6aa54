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
	"github.com/deniz/commverse/internal/pkg/dberrors"
)

// InvitationRepository handles database operations for community invitations
type InvitationRepository struct {
	db *pgxpool.Pool
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create inserts a new pending invitation
func (r *InvitationRepository) Create(ctx context.Context, invitation *models.CommunityInvitation) error {
	query := `
		INSERT INTO community_invitations (community_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		invitation.CommunityID,
		invitation.UserID,
	).Scan(&invitation.ID, &invitation.CreatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "community_invitations_community_id_user_id_key") {
			return apperrors.ErrAlreadyInvited
		}
		return fmt.Errorf("error creating invitation: %w", err)
	}

	return nil
}

// GetByID retrieves an invitation by its ID
func (r *InvitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CommunityInvitation, error) {
	query := `
		SELECT id, community_id, user_id, accepted, created_at
		FROM community_invitations
		WHERE id = $1
	`

	var invitation models.CommunityInvitation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&invitation.ID,
		&invitation.CommunityID,
		&invitation.UserID,
		&invitation.Accepted,
		&invitation.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("error retrieving invitation: %w", err)
	}

	return &invitation, nil
}

// Decide records the accept or decline decision of a pending invitation.
// The WHERE clause only matches undecided rows, so a second decision on
// the same invitation affects no rows and fails.
func (r *InvitationRepository) Decide(ctx context.Context, id uuid.UUID, accepted bool) error {
	query := `
		UPDATE community_invitations
		SET accepted = $1
		WHERE id = $2 AND accepted IS NULL
	`

	tag, err := r.db.Exec(ctx, query, accepted, id)
	if err != nil {
		return fmt.Errorf("error deciding invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a decided invitation from a missing one
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return apperrors.ErrInvitationDecided
	}

	return nil
}

// Delete removes an invitation
func (r *InvitationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM community_invitations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvitationNotFound
	}

	return nil
}

// ListPendingByUser retrieves a user's undecided invitations, newest first
func (r *InvitationRepository) ListPendingByUser(ctx context.Context, userID uuid.UUID) ([]*models.CommunityInvitation, error) {
	query := `
		SELECT id, community_id, user_id, accepted, created_at
		FROM community_invitations
		WHERE user_id = $1 AND accepted IS NULL
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, userID)
}

// ListByCommunity retrieves all invitations of a community, newest first
func (r *InvitationRepository) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.CommunityInvitation, error) {
	query := `
		SELECT id, community_id, user_id, accepted, created_at
		FROM community_invitations
		WHERE community_id = $1
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, communityID)
}

func (r *InvitationRepository) list(ctx context.Context, query string, arg any) ([]*models.CommunityInvitation, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var invitations []*models.CommunityInvitation
	for rows.Next() {
		var invitation models.CommunityInvitation
		if err := rows.Scan(
			&invitation.ID,
			&invitation.CommunityID,
			&invitation.UserID,
			&invitation.Accepted,
			&invitation.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning invitation: %w", err)
		}
		invitations = append(invitations, &invitation)
	}

	return invitations, rows.Err()
}
