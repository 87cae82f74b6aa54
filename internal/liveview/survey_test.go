package liveview

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/realtime"
)

type fakeSurveyGateway struct {
	survey  *models.Survey
	answers []*models.SurveyAnswer
}

func (g *fakeSurveyGateway) GetSurvey(ctx context.Context, surveyID uuid.UUID) (*models.Survey, error) {
	return g.survey, nil
}

func (g *fakeSurveyGateway) ListAnswers(ctx context.Context, surveyID uuid.UUID) ([]*models.SurveyAnswer, error) {
	return g.answers, nil
}

func testSurvey() (*models.Survey, uuid.UUID, uuid.UUID) {
	surveyID := uuid.New()
	choiceA := uuid.New()
	choiceB := uuid.New()
	return &models.Survey{
		ID:   surveyID,
		Open: true,
		Choices: []*models.SurveyChoice{
			{ID: choiceA, SurveyID: surveyID, Text: "Yes"},
			{ID: choiceB, SurveyID: surveyID, Text: "No"},
		},
	}, choiceA, choiceB
}

func TestSurveyStateAppliesAnswerEvents(t *testing.T) {
	survey, choiceA, choiceB := testSurvey()
	ch := newFakeChannel()

	state, err := LoadSurveyState(context.Background(), &fakeSurveyGateway{survey: survey}, survey.ID)
	require.NoError(t, err)
	state.Attach(ch)
	defer state.Detach()

	alice := uuid.New()
	bob := uuid.New()

	ch.Publish(realtime.SurveyTopic(survey.ID), "answer", AnswerEvent{SurveyID: survey.ID, UserID: alice, ChoiceID: choiceA})
	ch.Publish(realtime.SurveyTopic(survey.ID), "answer", AnswerEvent{SurveyID: survey.ID, UserID: bob, ChoiceID: choiceB})

	assert.Equal(t, 2, state.AnswerCount())

	got, ok := state.UserAnswer(alice)
	require.True(t, ok)
	assert.Equal(t, choiceA, got)
}

func TestSurveyStateAnswerEventsAreIdempotent(t *testing.T) {
	survey, choiceA, _ := testSurvey()
	ch := newFakeChannel()

	state := NewSurveyState(survey, nil)
	state.Attach(ch)
	defer state.Detach()

	alice := uuid.New()
	evt := AnswerEvent{SurveyID: survey.ID, UserID: alice, ChoiceID: choiceA}

	ch.Publish(realtime.SurveyTopic(survey.ID), "answer", evt)
	ch.Publish(realtime.SurveyTopic(survey.ID), "answer", evt)
	ch.Publish(realtime.SurveyTopic(survey.ID), "answer", evt)

	assert.Equal(t, 1, state.AnswerCount())
}

func TestSurveyStateUpdateBeforeAnswerStillConverges(t *testing.T) {
	// A delayed "answer" arriving after its "update-answer" must not
	// resurrect the old choice.
	survey, choiceA, choiceB := testSurvey()
	ch := newFakeChannel()

	state := NewSurveyState(survey, nil)
	state.Attach(ch)
	defer state.Detach()

	alice := uuid.New()

	ch.Publish(realtime.SurveyTopic(survey.ID), "update-answer", AnswerEvent{SurveyID: survey.ID, UserID: alice, ChoiceID: choiceB})

	got, ok := state.UserAnswer(alice)
	require.True(t, ok)
	assert.Equal(t, choiceB, got)
	assert.Equal(t, 1, state.AnswerCount())

	ch.Publish(realtime.SurveyTopic(survey.ID), "answer", AnswerEvent{SurveyID: survey.ID, UserID: alice, ChoiceID: choiceA})
	assert.Equal(t, 1, state.AnswerCount())
}

func TestSurveyStateIgnoresOtherSurveys(t *testing.T) {
	survey, choiceA, _ := testSurvey()
	ch := newFakeChannel()

	state := NewSurveyState(survey, nil)
	state.Attach(ch)
	defer state.Detach()

	ch.Publish(realtime.SurveyTopic(survey.ID), "answer", AnswerEvent{SurveyID: uuid.New(), UserID: uuid.New(), ChoiceID: choiceA})
	ch.Publish(realtime.SurveyTopic(survey.ID), "close", CloseEvent{SurveyID: uuid.New()})

	assert.Zero(t, state.AnswerCount())
	assert.True(t, state.Open())
}

func TestSurveyStateCloseEvent(t *testing.T) {
	survey, _, _ := testSurvey()
	ch := newFakeChannel()

	state := NewSurveyState(survey, nil)
	state.Attach(ch)
	defer state.Detach()

	require.True(t, state.Open())
	ch.Publish(realtime.SurveyTopic(survey.ID), "close", CloseEvent{SurveyID: survey.ID})
	assert.False(t, state.Open())

	// Replaying close is harmless
	ch.Publish(realtime.SurveyTopic(survey.ID), "close", CloseEvent{SurveyID: survey.ID})
	assert.False(t, state.Open())
}

func TestSurveyDistributionEmptyIsZeroNotNaN(t *testing.T) {
	survey, choiceA, choiceB := testSurvey()

	state := NewSurveyState(survey, nil)
	dist := state.Distribution()

	require.Len(t, dist, 2)
	assert.Zero(t, dist[choiceA])
	assert.Zero(t, dist[choiceB])
	for _, share := range dist {
		assert.False(t, share != share, "share must not be NaN")
	}
}

func TestSurveyDistributionSharesSumToOne(t *testing.T) {
	survey, choiceA, choiceB := testSurvey()

	answers := []*models.SurveyAnswer{
		{SurveyID: survey.ID, UserID: uuid.New(), ChoiceID: choiceA},
		{SurveyID: survey.ID, UserID: uuid.New(), ChoiceID: choiceA},
		{SurveyID: survey.ID, UserID: uuid.New(), ChoiceID: choiceA},
		{SurveyID: survey.ID, UserID: uuid.New(), ChoiceID: choiceB},
	}
	state := NewSurveyState(survey, answers)

	dist := state.Distribution()
	assert.InDelta(t, 0.75, dist[choiceA], 1e-9)
	assert.InDelta(t, 0.25, dist[choiceB], 1e-9)

	counts := state.Counts()
	assert.Equal(t, 3, counts[choiceA])
	assert.Equal(t, 1, counts[choiceB])
}

func TestSurveyStateDetachStopsEvents(t *testing.T) {
	survey, choiceA, _ := testSurvey()
	ch := newFakeChannel()

	state := NewSurveyState(survey, nil)
	state.Attach(ch)
	state.Detach()

	ch.Publish(realtime.SurveyTopic(survey.ID), "answer", AnswerEvent{SurveyID: survey.ID, UserID: uuid.New(), ChoiceID: choiceA})

	assert.Zero(t, state.AnswerCount())
}
