package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/liveview"
	"github.com/deniz/commverse/internal/pkg/apperrors"
	"github.com/deniz/commverse/internal/pkg/dberrors"
	"github.com/deniz/commverse/internal/realtime"
)

// SurveyStore is the persistence surface for surveys and answers
type SurveyStore interface {
	Create(ctx context.Context, survey *models.Survey) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Survey, error)
	ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.Survey, error)
	SetOpen(ctx context.Context, surveyID uuid.UUID, open bool) error
	Delete(ctx context.Context, surveyID uuid.UUID) error
	GetAnswer(ctx context.Context, surveyID, userID uuid.UUID) (*models.SurveyAnswer, error)
	ListAnswers(ctx context.Context, surveyID uuid.UUID) ([]*models.SurveyAnswer, error)
	InsertAnswer(ctx context.Context, answer *models.SurveyAnswer) error
	UpdateAnswer(ctx context.Context, answer *models.SurveyAnswer) error
}

// SurveyService defines the interface for survey operations
type SurveyService interface {
	Create(ctx context.Context, communityID, creatorID uuid.UUID, req *dto.CreateSurveyRequest) (*dto.SurveyResponse, error)
	Get(ctx context.Context, surveyID, userID uuid.UUID) (*dto.SurveyResponse, error)
	ListByCommunity(ctx context.Context, communityID, userID uuid.UUID) ([]dto.SurveyResponse, error)
	Answer(ctx context.Context, surveyID, userID uuid.UUID, req *dto.AnswerRequest) error
	Close(ctx context.Context, surveyID, userID uuid.UUID) error
	Delete(ctx context.Context, surveyID, userID uuid.UUID) error
}

// surveyServiceImpl implements SurveyService
type surveyServiceImpl struct {
	surveys       SurveyStore
	members       MemberStore
	notifications NotificationService
	publisher     Publisher
	logger        zerolog.Logger
}

// NewSurveyService creates a new SurveyService
func NewSurveyService(
	surveys SurveyStore,
	members MemberStore,
	notifications NotificationService,
	publisher Publisher,
	logger zerolog.Logger,
) SurveyService {
	return &surveyServiceImpl{
		surveys:       surveys,
		members:       members,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
	}
}

// Create opens a new survey and notifies the community members
func (s *surveyServiceImpl) Create(ctx context.Context, communityID, creatorID uuid.UUID, req *dto.CreateSurveyRequest) (*dto.SurveyResponse, error) {
	if err := s.requireMember(ctx, communityID, creatorID); err != nil {
		return nil, err
	}

	survey := &models.Survey{
		CommunityID: communityID,
		CreatorID:   creatorID,
		Title:       req.Title,
		Description: req.Description,
	}
	for _, text := range req.Choices {
		survey.Choices = append(survey.Choices, &models.SurveyChoice{Text: text})
	}

	if err := s.surveys.Create(ctx, survey); err != nil {
		return nil, err
	}

	err := s.notifications.NotifyMembers(ctx, communityID, creatorID, &models.Notification{
		Type:      models.NotificationTypeSurveyCreation,
		ContentID: &survey.ID,
		Title:     survey.Title,
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("surveyID", survey.ID.String()).
			Msg("Failed to notify members about new survey")
	}

	return s.toResponse(survey, nil, creatorID), nil
}

// Get retrieves a survey with its live answer distribution
func (s *surveyServiceImpl) Get(ctx context.Context, surveyID, userID uuid.UUID) (*dto.SurveyResponse, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, survey.CommunityID, userID); err != nil {
		return nil, err
	}

	answers, err := s.surveys.ListAnswers(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	return s.toResponse(survey, answers, userID), nil
}

// ListByCommunity retrieves a community's surveys with distributions
func (s *surveyServiceImpl) ListByCommunity(ctx context.Context, communityID, userID uuid.UUID) ([]dto.SurveyResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	surveys, err := s.surveys.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SurveyResponse, 0, len(surveys))
	for _, survey := range surveys {
		answers, err := s.surveys.ListAnswers(ctx, survey.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *s.toResponse(survey, answers, userID))
	}
	return out, nil
}

// Answer records or changes a user's answer. A closed survey rejects the
// answer outright: nothing is stored and nothing is published. The event
// is published only after the row landed, first answers as "answer" and
// changed answers as "update-answer".
func (s *surveyServiceImpl) Answer(ctx context.Context, surveyID, userID uuid.UUID, req *dto.AnswerRequest) error {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, survey.CommunityID, userID); err != nil {
		return err
	}

	if !survey.Open {
		return apperrors.ErrSurveyClosed
	}

	if !choiceBelongs(survey, req.ChoiceID) {
		return apperrors.ErrUnknownChoice
	}

	answer := &models.SurveyAnswer{
		SurveyID: surveyID,
		UserID:   userID,
		ChoiceID: req.ChoiceID,
	}

	existing, err := s.surveys.GetAnswer(ctx, surveyID, userID)
	switch {
	case err == nil:
		if existing.ChoiceID == req.ChoiceID {
			// Same choice again, nothing changes
			return nil
		}
		if err := s.surveys.UpdateAnswer(ctx, answer); err != nil {
			return err
		}
		s.publisher.Publish(realtime.SurveyTopic(surveyID), "update-answer", liveview.AnswerEvent{
			SurveyID: surveyID,
			UserID:   userID,
			ChoiceID: req.ChoiceID,
		})

	case errors.Is(err, apperrors.ErrResourceNotFound):
		if err := s.surveys.InsertAnswer(ctx, answer); err != nil {
			if !dberrors.IsUniqueViolation(err) {
				return err
			}
			// Another session of the same user won the first-answer race
			// between the lookup and the insert. The row exists now, so
			// change it in place.
			if err := s.surveys.UpdateAnswer(ctx, answer); err != nil {
				return err
			}
			s.publisher.Publish(realtime.SurveyTopic(surveyID), "update-answer", liveview.AnswerEvent{
				SurveyID: surveyID,
				UserID:   userID,
				ChoiceID: req.ChoiceID,
			})
			return nil
		}
		s.publisher.Publish(realtime.SurveyTopic(surveyID), "answer", liveview.AnswerEvent{
			SurveyID: surveyID,
			UserID:   userID,
			ChoiceID: req.ChoiceID,
		})

	default:
		return err
	}

	return nil
}

// Close stops a survey from accepting answers. Only the creator may
// close it. Closing twice is a no-op.
func (s *surveyServiceImpl) Close(ctx context.Context, surveyID, userID uuid.UUID) error {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return err
	}
	if err := requireCreator(survey, userID); err != nil {
		return err
	}

	if !survey.Open {
		return nil
	}

	if err := s.surveys.SetOpen(ctx, surveyID, false); err != nil {
		return err
	}

	s.publisher.Publish(realtime.SurveyTopic(surveyID), "close", liveview.CloseEvent{SurveyID: surveyID})

	err = s.notifications.NotifyMembers(ctx, survey.CommunityID, userID, &models.Notification{
		Type:      models.NotificationTypeInfo,
		ContentID: &survey.ID,
		Title:     "Survey closed: " + survey.Title,
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("surveyID", surveyID.String()).
			Msg("Failed to notify members about closed survey")
	}

	return nil
}

// Delete removes a survey. Only the creator may delete it.
func (s *surveyServiceImpl) Delete(ctx context.Context, surveyID, userID uuid.UUID) error {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		return err
	}
	if err := requireCreator(survey, userID); err != nil {
		return err
	}

	return s.surveys.Delete(ctx, surveyID)
}

func (s *surveyServiceImpl) requireMember(ctx context.Context, communityID, userID uuid.UUID) error {
	isMember, err := s.members.IsMember(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.ErrNotMember
	}
	return nil
}

func requireCreator(survey *models.Survey, userID uuid.UUID) error {
	if survey.CreatorID != userID {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

func choiceBelongs(survey *models.Survey, choiceID uuid.UUID) bool {
	for _, c := range survey.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

// toResponse renders a survey through the same live view the channel
// consumers use, so REST reads and realtime reads agree on the tally.
func (s *surveyServiceImpl) toResponse(survey *models.Survey, answers []*models.SurveyAnswer, userID uuid.UUID) *dto.SurveyResponse {
	state := liveview.NewSurveyState(survey, answers)
	counts := state.Counts()
	dist := state.Distribution()

	resp := &dto.SurveyResponse{
		ID:          survey.ID,
		CommunityID: survey.CommunityID,
		CreatorID:   survey.CreatorID,
		Title:       survey.Title,
		Description: survey.Description,
		Open:        survey.Open,
		AnswerCount: state.AnswerCount(),
		CreatedAt:   survey.CreatedAt,
	}

	for _, choice := range survey.Choices {
		resp.Choices = append(resp.Choices, dto.SurveyChoiceResponse{
			ID:    choice.ID,
			Text:  choice.Text,
			Count: counts[choice.ID],
			Share: dist[choice.ID],
		})
	}

	if choiceID, ok := state.UserAnswer(userID); ok {
		resp.UserChoiceID = &choiceID
	}

	return resp
}
