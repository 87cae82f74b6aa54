package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/pkg/apperrors"
)

// CommunityRepository handles database operations for communities
type CommunityRepository struct {
	db *pgxpool.Pool
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// Create inserts a new community
func (r *CommunityRepository) Create(ctx context.Context, community *models.Community) error {
	query := `
		INSERT INTO communities (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		community.Name,
		community.Description,
		community.OwnerID,
	).Scan(&community.ID, &community.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating community: %w", err)
	}

	return nil
}

// GetByID retrieves a community by its ID
func (r *CommunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	query := `
		SELECT id, name, description, owner_id, created_at
		FROM communities
		WHERE id = $1
	`

	var community models.Community
	err := r.db.QueryRow(ctx, query, id).Scan(
		&community.ID,
		&community.Name,
		&community.Description,
		&community.OwnerID,
		&community.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommunityNotFound
		}
		return nil, fmt.Errorf("error retrieving community: %w", err)
	}

	return &community, nil
}

// List retrieves communities, optionally filtered by a name search term,
// newest first.
func (r *CommunityRepository) List(ctx context.Context, search string, limit, offset int) ([]*models.Community, error) {
	queryBuilder := squirrel.Select("id", "name", "description", "owner_id", "created_at").
		From("communities").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	if search != "" {
		queryBuilder = queryBuilder.Where("name ILIKE ?", "%"+search+"%")
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var communities []*models.Community
	for rows.Next() {
		var community models.Community
		if err := rows.Scan(
			&community.ID,
			&community.Name,
			&community.Description,
			&community.OwnerID,
			&community.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning community: %w", err)
		}
		communities = append(communities, &community)
	}

	return communities, rows.Err()
}

// ListByMember retrieves the communities a user belongs to, newest first.
func (r *CommunityRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.Community, error) {
	query := `
		SELECT c.id, c.name, c.description, c.owner_id, c.created_at
		FROM communities c
		JOIN community_members m ON m.community_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var communities []*models.Community
	for rows.Next() {
		var community models.Community
		if err := rows.Scan(
			&community.ID,
			&community.Name,
			&community.Description,
			&community.OwnerID,
			&community.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning community: %w", err)
		}
		communities = append(communities, &community)
	}

	return communities, rows.Err()
}

// Update modifies a community's name and description
func (r *CommunityRepository) Update(ctx context.Context, community *models.Community) error {
	query := `
		UPDATE communities
		SET name = $1, description = $2
		WHERE id = $3
	`

	tag, err := r.db.Exec(ctx, query, community.Name, community.Description, community.ID)
	if err != nil {
		return fmt.Errorf("error updating community: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommunityNotFound
	}

	return nil
}

// Delete removes a community. Memberships, messages, surveys and posts
// go with it through ON DELETE CASCADE.
func (r *CommunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM communities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting community: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommunityNotFound
	}

	return nil
}
