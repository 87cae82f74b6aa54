package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/db"
	"github.com/deniz/commverse/internal/pkg/apperrors"
)

// SurveyRepository handles database operations for surveys and answers
type SurveyRepository struct {
	db *pgxpool.Pool
}

// NewSurveyRepository creates a new SurveyRepository
func NewSurveyRepository(db *pgxpool.Pool) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// Create inserts a survey with its choices in a single transaction
func (r *SurveyRepository) Create(ctx context.Context, survey *models.Survey) error {
	pg := &db.PostgresDB{Pool: r.db}

	return pg.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO surveys (community_id, creator_id, title, description, open)
			VALUES ($1, $2, $3, $4, TRUE)
			RETURNING id, created_at
		`

		err := tx.QueryRow(ctx, query,
			survey.CommunityID,
			survey.CreatorID,
			survey.Title,
			survey.Description,
		).Scan(&survey.ID, &survey.CreatedAt)
		if err != nil {
			return fmt.Errorf("error creating survey: %w", err)
		}
		survey.Open = true

		for _, choice := range survey.Choices {
			choice.SurveyID = survey.ID
			err := tx.QueryRow(ctx,
				`INSERT INTO survey_choices (survey_id, text) VALUES ($1, $2) RETURNING id`,
				choice.SurveyID, choice.Text,
			).Scan(&choice.ID)
			if err != nil {
				return fmt.Errorf("error creating survey choice: %w", err)
			}
		}

		return nil
	})
}

// GetByID retrieves a survey with its choices
func (r *SurveyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	query := `
		SELECT id, community_id, creator_id, title, description, open, created_at
		FROM surveys
		WHERE id = $1
	`

	var survey models.Survey
	err := r.db.QueryRow(ctx, query, id).Scan(
		&survey.ID,
		&survey.CommunityID,
		&survey.CreatorID,
		&survey.Title,
		&survey.Description,
		&survey.Open,
		&survey.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSurveyNotFound
		}
		return nil, fmt.Errorf("error retrieving survey: %w", err)
	}

	choices, err := r.listChoices(ctx, id)
	if err != nil {
		return nil, err
	}
	survey.Choices = choices

	return &survey, nil
}

// GetCommunityID resolves the community a survey belongs to
func (r *SurveyRepository) GetCommunityID(ctx context.Context, surveyID uuid.UUID) (uuid.UUID, error) {
	var communityID uuid.UUID
	err := r.db.QueryRow(ctx,
		`SELECT community_id FROM surveys WHERE id = $1`, surveyID,
	).Scan(&communityID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperrors.ErrSurveyNotFound
		}
		return uuid.Nil, fmt.Errorf("error retrieving survey community: %w", err)
	}

	return communityID, nil
}

// ListByCommunity retrieves a community's surveys with choices, newest first
func (r *SurveyRepository) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.Survey, error) {
	query := `
		SELECT id, community_id, creator_id, title, description, open, created_at
		FROM surveys
		WHERE community_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var surveys []*models.Survey
	for rows.Next() {
		var survey models.Survey
		if err := rows.Scan(
			&survey.ID,
			&survey.CommunityID,
			&survey.CreatorID,
			&survey.Title,
			&survey.Description,
			&survey.Open,
			&survey.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning survey: %w", err)
		}
		surveys = append(surveys, &survey)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, survey := range surveys {
		choices, err := r.listChoices(ctx, survey.ID)
		if err != nil {
			return nil, err
		}
		survey.Choices = choices
	}

	return surveys, nil
}

func (r *SurveyRepository) listChoices(ctx context.Context, surveyID uuid.UUID) ([]*models.SurveyChoice, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, survey_id, text FROM survey_choices WHERE survey_id = $1 ORDER BY id`,
		surveyID,
	)
	if err != nil {
		return nil, fmt.Errorf("error listing survey choices: %w", err)
	}
	defer rows.Close()

	var choices []*models.SurveyChoice
	for rows.Next() {
		var choice models.SurveyChoice
		if err := rows.Scan(&choice.ID, &choice.SurveyID, &choice.Text); err != nil {
			return nil, fmt.Errorf("error scanning survey choice: %w", err)
		}
		choices = append(choices, &choice)
	}

	return choices, rows.Err()
}

// SetOpen updates the open flag of a survey
func (r *SurveyRepository) SetOpen(ctx context.Context, surveyID uuid.UUID, open bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE surveys SET open = $1 WHERE id = $2`, open, surveyID,
	)
	if err != nil {
		return fmt.Errorf("error updating survey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSurveyNotFound
	}

	return nil
}

// Delete removes a survey with its choices and answers
func (r *SurveyRepository) Delete(ctx context.Context, surveyID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM surveys WHERE id = $1`, surveyID)
	if err != nil {
		return fmt.Errorf("error deleting survey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSurveyNotFound
	}

	return nil
}

// GetAnswer retrieves a user's answer to a survey, if any
func (r *SurveyRepository) GetAnswer(ctx context.Context, surveyID, userID uuid.UUID) (*models.SurveyAnswer, error) {
	query := `
		SELECT survey_id, user_id, choice_id, created_at
		FROM survey_answers
		WHERE survey_id = $1 AND user_id = $2
	`

	var answer models.SurveyAnswer
	err := r.db.QueryRow(ctx, query, surveyID, userID).Scan(
		&answer.SurveyID,
		&answer.UserID,
		&answer.ChoiceID,
		&answer.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving survey answer: %w", err)
	}

	return &answer, nil
}

// ListAnswers retrieves all answers of a survey
func (r *SurveyRepository) ListAnswers(ctx context.Context, surveyID uuid.UUID) ([]*models.SurveyAnswer, error) {
	query := `
		SELECT survey_id, user_id, choice_id, created_at
		FROM survey_answers
		WHERE survey_id = $1
	`

	rows, err := r.db.Query(ctx, query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var answers []*models.SurveyAnswer
	for rows.Next() {
		var answer models.SurveyAnswer
		if err := rows.Scan(
			&answer.SurveyID,
			&answer.UserID,
			&answer.ChoiceID,
			&answer.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning survey answer: %w", err)
		}
		answers = append(answers, &answer)
	}

	return answers, rows.Err()
}

// InsertAnswer records a first-time answer. The primary key on
// (survey_id, user_id) keeps a user down to one answer per survey.
func (r *SurveyRepository) InsertAnswer(ctx context.Context, answer *models.SurveyAnswer) error {
	query := `
		INSERT INTO survey_answers (survey_id, user_id, choice_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		answer.SurveyID,
		answer.UserID,
		answer.ChoiceID,
	).Scan(&answer.CreatedAt)

	if err != nil {
		return fmt.Errorf("error creating survey answer: %w", err)
	}

	return nil
}

// UpdateAnswer changes a user's existing answer
func (r *SurveyRepository) UpdateAnswer(ctx context.Context, answer *models.SurveyAnswer) error {
	query := `
		UPDATE survey_answers
		SET choice_id = $1
		WHERE survey_id = $2 AND user_id = $3
	`

	tag, err := r.db.Exec(ctx, query, answer.ChoiceID, answer.SurveyID, answer.UserID)
	if err != nil {
		return fmt.Errorf("error updating survey answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}

// GetSurvey satisfies the live-view gateway by loading the full survey
func (r *SurveyRepository) GetSurvey(ctx context.Context, surveyID uuid.UUID) (*models.Survey, error) {
	return r.GetByID(ctx, surveyID)
}
