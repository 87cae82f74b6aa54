package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/pkg/apperrors"
)

type fakeSurveyStore struct {
	mu      sync.Mutex
	surveys map[uuid.UUID]*models.Survey
	answers map[uuid.UUID]map[uuid.UUID]*models.SurveyAnswer
	inserts int
	updates int

	// beforeInsertAnswer runs just before an insert attempt, letting a
	// test squeeze a concurrent write between the lookup and the insert
	beforeInsertAnswer func()
}

func newFakeSurveyStore() *fakeSurveyStore {
	return &fakeSurveyStore{
		surveys: make(map[uuid.UUID]*models.Survey),
		answers: make(map[uuid.UUID]map[uuid.UUID]*models.SurveyAnswer),
	}
}

func (s *fakeSurveyStore) Create(ctx context.Context, survey *models.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	survey.ID = uuid.New()
	survey.Open = true
	for _, c := range survey.Choices {
		c.ID = uuid.New()
		c.SurveyID = survey.ID
	}
	s.surveys[survey.ID] = survey
	return nil
}

func (s *fakeSurveyStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	survey, ok := s.surveys[id]
	if !ok {
		return nil, apperrors.ErrSurveyNotFound
	}
	return survey, nil
}

func (s *fakeSurveyStore) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.Survey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Survey
	for _, survey := range s.surveys {
		if survey.CommunityID == communityID {
			out = append(out, survey)
		}
	}
	return out, nil
}

func (s *fakeSurveyStore) SetOpen(ctx context.Context, surveyID uuid.UUID, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	survey, ok := s.surveys[surveyID]
	if !ok {
		return apperrors.ErrSurveyNotFound
	}
	survey.Open = open
	return nil
}

func (s *fakeSurveyStore) Delete(ctx context.Context, surveyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.surveys, surveyID)
	return nil
}

func (s *fakeSurveyStore) GetAnswer(ctx context.Context, surveyID, userID uuid.UUID) (*models.SurveyAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, ok := s.answers[surveyID][userID]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return answer, nil
}

func (s *fakeSurveyStore) ListAnswers(ctx context.Context, surveyID uuid.UUID) ([]*models.SurveyAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.SurveyAnswer
	for _, a := range s.answers[surveyID] {
		out = append(out, a)
	}
	return out, nil
}

func (s *fakeSurveyStore) InsertAnswer(ctx context.Context, answer *models.SurveyAnswer) error {
	if s.beforeInsertAnswer != nil {
		s.beforeInsertAnswer()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.answers[answer.SurveyID][answer.UserID]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "survey_answers_pkey"}
	}
	if s.answers[answer.SurveyID] == nil {
		s.answers[answer.SurveyID] = make(map[uuid.UUID]*models.SurveyAnswer)
	}
	s.answers[answer.SurveyID][answer.UserID] = answer
	s.inserts++
	return nil
}

func (s *fakeSurveyStore) seedAnswer(answer *models.SurveyAnswer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.answers[answer.SurveyID] == nil {
		s.answers[answer.SurveyID] = make(map[uuid.UUID]*models.SurveyAnswer)
	}
	s.answers[answer.SurveyID][answer.UserID] = answer
}

func (s *fakeSurveyStore) UpdateAnswer(ctx context.Context, answer *models.SurveyAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.answers[answer.SurveyID][answer.UserID]; !ok {
		return apperrors.ErrResourceNotFound
	}
	s.answers[answer.SurveyID][answer.UserID] = answer
	s.updates++
	return nil
}

// noopNotifier satisfies NotificationService where fan-out is irrelevant
type noopNotifier struct{ NotificationService }

func (noopNotifier) Notify(ctx context.Context, n *models.Notification) error { return nil }
func (noopNotifier) NotifyMembers(ctx context.Context, communityID, actorID uuid.UUID, template *models.Notification) error {
	return nil
}

func surveyServiceFixture(t *testing.T) (SurveyService, *fakeSurveyStore, *fakeMemberStore, *fakePublisher) {
	t.Helper()
	store := newFakeSurveyStore()
	members := newFakeMemberStore()
	publisher := &fakePublisher{}
	svc := NewSurveyService(store, members, noopNotifier{}, publisher, zerolog.Nop())
	return svc, store, members, publisher
}

func createSurvey(t *testing.T, svc SurveyService, store *fakeSurveyStore, members *fakeMemberStore, communityID, creatorID uuid.UUID) *models.Survey {
	t.Helper()
	members.addMember(communityID, creatorID, false)

	resp, err := svc.Create(context.Background(), communityID, creatorID, &dto.CreateSurveyRequest{
		Title:   "Where should we meet",
		Choices: []string{"Park", "Cafe"},
	})
	require.NoError(t, err)

	survey, err := store.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	return survey
}

func TestAnswerFirstTimePublishesAnswer(t *testing.T) {
	svc, store, members, publisher := surveyServiceFixture(t)
	communityID, creatorID := uuid.New(), uuid.New()
	survey := createSurvey(t, svc, store, members, communityID, creatorID)

	voter := uuid.New()
	members.addMember(communityID, voter, false)

	err := svc.Answer(context.Background(), survey.ID, voter, &dto.AnswerRequest{ChoiceID: survey.Choices[0].ID})
	require.NoError(t, err)

	assert.Equal(t, 1, store.inserts)
	assert.Zero(t, store.updates)
	require.Len(t, publisher.named("answer"), 1)
	assert.Empty(t, publisher.named("update-answer"))
}

func TestAnswerChangePublishesUpdateAnswer(t *testing.T) {
	svc, store, members, publisher := surveyServiceFixture(t)
	communityID, creatorID := uuid.New(), uuid.New()
	survey := createSurvey(t, svc, store, members, communityID, creatorID)

	voter := uuid.New()
	members.addMember(communityID, voter, false)

	require.NoError(t, svc.Answer(context.Background(), survey.ID, voter, &dto.AnswerRequest{ChoiceID: survey.Choices[0].ID}))
	require.NoError(t, svc.Answer(context.Background(), survey.ID, voter, &dto.AnswerRequest{ChoiceID: survey.Choices[1].ID}))

	assert.Equal(t, 1, store.inserts)
	assert.Equal(t, 1, store.updates)
	assert.Len(t, publisher.named("answer"), 1)
	assert.Len(t, publisher.named("update-answer"), 1)

	answer, err := store.GetAnswer(context.Background(), survey.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, survey.Choices[1].ID, answer.ChoiceID)
}

func TestAnswerConcurrentFirstAnswerBecomesUpdate(t *testing.T) {
	svc, store, members, publisher := surveyServiceFixture(t)
	communityID, creatorID := uuid.New(), uuid.New()
	survey := createSurvey(t, svc, store, members, communityID, creatorID)

	voter := uuid.New()
	members.addMember(communityID, voter, false)

	// Another session of the same user lands its first answer between
	// the lookup and the insert, so the insert hits the answer key
	store.beforeInsertAnswer = func() {
		store.beforeInsertAnswer = nil
		store.seedAnswer(&models.SurveyAnswer{
			SurveyID: survey.ID,
			UserID:   voter,
			ChoiceID: survey.Choices[0].ID,
		})
	}

	require.NoError(t, svc.Answer(context.Background(), survey.ID, voter, &dto.AnswerRequest{ChoiceID: survey.Choices[1].ID}))

	assert.Zero(t, store.inserts)
	assert.Equal(t, 1, store.updates)
	assert.Empty(t, publisher.named("answer"))
	assert.Len(t, publisher.named("update-answer"), 1)

	answer, err := store.GetAnswer(context.Background(), survey.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, survey.Choices[1].ID, answer.ChoiceID)
}

func TestAnswerSameChoiceIsNoOp(t *testing.T) {
	svc, store, members, publisher := surveyServiceFixture(t)
	communityID, creatorID := uuid.New(), uuid.New()
	survey := createSurvey(t, svc, store, members, communityID, creatorID)

	voter := uuid.New()
	members.addMember(communityID, voter, false)

	require.NoError(t, svc.Answer(context.Background(), survey.ID, voter, &dto.AnswerRequest{ChoiceID: survey.Choices[0].ID}))
	before := publisher.count()

	require.NoError(t, svc.Answer(context.Background(), survey.ID, voter, &dto.AnswerRequest{ChoiceID: survey.Choices[0].ID}))

	assert.Equal(t, before, publisher.count())
	assert.Zero(t, store.updates)
}

func TestAnswerClosedSurveyRejectedWithoutSideEffects(t *testing.T) {
	svc, store, members, publisher := surveyServiceFixture(t)
	communityID, creatorID := uuid.New(), uuid.New()
	survey := createSurvey(t, svc, store, members, communityID, creatorID)

	require.NoError(t, svc.Close(context.Background(), survey.ID, creatorID))
	before := publisher.count()

	voter := uuid.New()
	members.addMember(communityID, voter, false)

	err := svc.Answer(context.Background(), survey.ID, voter, &dto.AnswerRequest{ChoiceID: survey.Choices[0].ID})
	assert.ErrorIs(t, err, apperrors.ErrSurveyClosed)

	// Nothing persisted, nothing published
	assert.Zero(t, store.inserts)
	assert.Equal(t, before, publisher.count())
	_, err = store.GetAnswer(context.Background(), survey.ID, voter)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestAnswerUnknownChoiceRejected(t *testing.T) {
	svc, store, members, publisher := surveyServiceFixture(t)
	communityID, creatorID := uuid.New(), uuid.New()
	survey := createSurvey(t, svc, store, members, communityID, creatorID)

	voter := uuid.New()
	members.addMember(communityID, voter, false)

	err := svc.Answer(context.Background(), survey.ID, voter, &dto.AnswerRequest{ChoiceID: uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrUnknownChoice)
	assert.Zero(t, store.inserts)
	assert.Zero(t, publisher.count())
}

func TestAnswerRequiresMembership(t *testing.T) {
	svc, store, members, _ := surveyServiceFixture(t)
	communityID, creatorID := uuid.New(), uuid.New()
	survey := createSurvey(t, svc, store, members, communityID, creatorID)

	outsider := uuid.New()
	err := svc.Answer(context.Background(), survey.ID, outsider, &dto.AnswerRequest{ChoiceID: survey.Choices[0].ID})
	assert.ErrorIs(t, err, apperrors.ErrNotMember)
}

func TestClosePublishesCloseOnce(t *testing.T) {
	svc, store, members, publisher := surveyServiceFixture(t)
	communityID, creatorID := uuid.New(), uuid.New()
	survey := createSurvey(t, svc, store, members, communityID, creatorID)

	require.NoError(t, svc.Close(context.Background(), survey.ID, creatorID))
	require.NoError(t, svc.Close(context.Background(), survey.ID, creatorID))

	assert.Len(t, publisher.named("close"), 1)

	stored, err := store.GetByID(context.Background(), survey.ID)
	require.NoError(t, err)
	assert.False(t, stored.Open)
}

func TestCloseRequiresCreator(t *testing.T) {
	svc, store, members, _ := surveyServiceFixture(t)
	communityID, creatorID := uuid.New(), uuid.New()
	survey := createSurvey(t, svc, store, members, communityID, creatorID)

	member := uuid.New()
	members.addMember(communityID, member, false)
	err := svc.Close(context.Background(), survey.ID, member)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	admin := uuid.New()
	members.addMember(communityID, admin, true)
	err = svc.Close(context.Background(), survey.ID, admin)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	assert.NoError(t, svc.Close(context.Background(), survey.ID, creatorID))
}

func TestGetReturnsDistribution(t *testing.T) {
	svc, store, members, _ := surveyServiceFixture(t)
	communityID, creatorID := uuid.New(), uuid.New()
	survey := createSurvey(t, svc, store, members, communityID, creatorID)

	voters := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, v := range voters {
		members.addMember(communityID, v, false)
		choice := survey.Choices[0].ID
		if i == 2 {
			choice = survey.Choices[1].ID
		}
		require.NoError(t, svc.Answer(context.Background(), survey.ID, v, &dto.AnswerRequest{ChoiceID: choice}))
	}

	resp, err := svc.Get(context.Background(), survey.ID, voters[0])
	require.NoError(t, err)

	assert.Equal(t, 3, resp.AnswerCount)
	require.Len(t, resp.Choices, 2)
	assert.Equal(t, 2, resp.Choices[0].Count)
	assert.InDelta(t, 2.0/3.0, resp.Choices[0].Share, 1e-9)
	assert.Equal(t, 1, resp.Choices[1].Count)
	require.NotNil(t, resp.UserChoiceID)
	assert.Equal(t, survey.Choices[0].ID, *resp.UserChoiceID)
}

func TestGetWithNoAnswersHasZeroShares(t *testing.T) {
	svc, store, members, _ := surveyServiceFixture(t)
	communityID, creatorID := uuid.New(), uuid.New()
	survey := createSurvey(t, svc, store, members, communityID, creatorID)

	resp, err := svc.Get(context.Background(), survey.ID, creatorID)
	require.NoError(t, err)

	assert.Zero(t, resp.AnswerCount)
	for _, choice := range resp.Choices {
		assert.Zero(t, choice.Count)
		assert.Zero(t, choice.Share)
	}
	assert.Nil(t, resp.UserChoiceID)
}
