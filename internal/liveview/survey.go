package liveview

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/realtime"
)

// SurveyGateway loads the persisted snapshot a SurveyState starts from.
type SurveyGateway interface {
	GetSurvey(ctx context.Context, surveyID uuid.UUID) (*models.Survey, error)
	ListAnswers(ctx context.Context, surveyID uuid.UUID) ([]*models.SurveyAnswer, error)
}

// AnswerEvent is the payload of "answer" and "update-answer" events.
type AnswerEvent struct {
	SurveyID uuid.UUID `json:"survey_id"`
	UserID   uuid.UUID `json:"user_id"`
	ChoiceID uuid.UUID `json:"choice_id"`
}

// CloseEvent is the payload of "close" events.
type CloseEvent struct {
	SurveyID uuid.UUID `json:"survey_id"`
}

// SurveyState is the live view of a single survey: its open flag and the
// current answer of every user. Answer events upsert, so it does not
// matter whether "answer" or "update-answer" arrives first for a user,
// and replaying an event leaves the state unchanged.
type SurveyState struct {
	mu sync.Mutex

	surveyID uuid.UUID
	open     bool
	choices  []*models.SurveyChoice

	// userID -> chosen choiceID
	answers map[uuid.UUID]uuid.UUID

	detach func()
}

// LoadSurveyState fetches the survey and its answers and builds the view.
func LoadSurveyState(ctx context.Context, gw SurveyGateway, surveyID uuid.UUID) (*SurveyState, error) {
	survey, err := gw.GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	answers, err := gw.ListAnswers(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	s := &SurveyState{
		surveyID: survey.ID,
		open:     survey.Open,
		choices:  survey.Choices,
		answers:  make(map[uuid.UUID]uuid.UUID, len(answers)),
	}
	for _, a := range answers {
		s.answers[a.UserID] = a.ChoiceID
	}
	return s, nil
}

// NewSurveyState builds a view from an already loaded survey. Used on the
// server side where the repository has just fetched everything.
func NewSurveyState(survey *models.Survey, answers []*models.SurveyAnswer) *SurveyState {
	s := &SurveyState{
		surveyID: survey.ID,
		open:     survey.Open,
		choices:  survey.Choices,
		answers:  make(map[uuid.UUID]uuid.UUID, len(answers)),
	}
	for _, a := range answers {
		s.answers[a.UserID] = a.ChoiceID
	}
	return s
}

// Attach subscribes the view to its survey topic. Detach must be called
// before discarding the view.
func (s *SurveyState) Attach(ch Channel) {
	s.detach = ch.Subscribe(realtime.SurveyTopic(s.surveyID), s.handleEvent)
}

// Detach unsubscribes from the channel. Safe to call when not attached.
func (s *SurveyState) Detach() {
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
}

func (s *SurveyState) handleEvent(name string, data []byte) {
	switch name {
	case "answer", "update-answer":
		var evt AnswerEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			return
		}
		s.applyAnswer(evt)

	case "close":
		var evt CloseEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			return
		}
		if evt.SurveyID != s.surveyID {
			return
		}
		s.mu.Lock()
		s.open = false
		s.mu.Unlock()
	}
}

// applyAnswer upserts a user's answer. Events carrying a different
// survey id are ignored.
func (s *SurveyState) applyAnswer(evt AnswerEvent) {
	if evt.SurveyID != s.surveyID {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[evt.UserID] = evt.ChoiceID
}

// Open reports whether the survey still accepts answers.
func (s *SurveyState) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// UserAnswer returns the choice a user picked, if any.
func (s *SurveyState) UserAnswer(userID uuid.UUID) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	choiceID, ok := s.answers[userID]
	return choiceID, ok
}

// AnswerCount returns the number of users that answered.
func (s *SurveyState) AnswerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Counts returns the number of answers per choice. Choices nobody picked
// are present with a zero count.
func (s *SurveyState) Counts() map[uuid.UUID]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[uuid.UUID]int, len(s.choices))
	for _, c := range s.choices {
		counts[c.ID] = 0
	}
	for _, choiceID := range s.answers {
		counts[choiceID]++
	}
	return counts
}

// Distribution returns the share of answers per choice in [0, 1]. With
// no answers every share is 0, never NaN.
func (s *SurveyState) Distribution() map[uuid.UUID]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	dist := make(map[uuid.UUID]float64, len(s.choices))
	for _, c := range s.choices {
		dist[c.ID] = 0
	}

	total := len(s.answers)
	if total == 0 {
		return dist
	}

	for _, choiceID := range s.answers {
		dist[choiceID] += 1
	}
	for id, n := range dist {
		dist[id] = n / float64(total)
	}
	return dist
}
