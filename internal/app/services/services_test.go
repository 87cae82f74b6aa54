package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/deniz/commverse/internal/app/models"
)

// fakePublisher records published events in order
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	topic   string
	name    string
	payload any
}

func (p *fakePublisher) Publish(topic, name string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, name: name, payload: payload})
}

func (p *fakePublisher) named(name string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []publishedEvent
	for _, evt := range p.events {
		if evt.name == name {
			out = append(out, evt)
		}
	}
	return out
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// fakeMemberStore answers membership queries from in-memory sets
type fakeMemberStore struct {
	mu      sync.Mutex
	members map[uuid.UUID]map[uuid.UUID]bool
	admins  map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeMemberStore() *fakeMemberStore {
	return &fakeMemberStore{
		members: make(map[uuid.UUID]map[uuid.UUID]bool),
		admins:  make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (s *fakeMemberStore) addMember(communityID, userID uuid.UUID, isAdmin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.members[communityID] == nil {
		s.members[communityID] = make(map[uuid.UUID]bool)
		s.admins[communityID] = make(map[uuid.UUID]bool)
	}
	s.members[communityID][userID] = true
	if isAdmin {
		s.admins[communityID][userID] = true
	}
}

func (s *fakeMemberStore) Add(ctx context.Context, member *models.Member) error {
	s.addMember(member.CommunityID, member.UserID, member.IsAdmin)
	return nil
}

func (s *fakeMemberStore) Remove(ctx context.Context, communityID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members[communityID], userID)
	delete(s.admins[communityID], userID)
	return nil
}

func (s *fakeMemberStore) IsMember(ctx context.Context, communityID, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[communityID][userID], nil
}

func (s *fakeMemberStore) IsAdmin(ctx context.Context, communityID, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admins[communityID][userID], nil
}

func (s *fakeMemberStore) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Member
	for userID := range s.members[communityID] {
		out = append(out, &models.Member{
			CommunityID: communityID,
			UserID:      userID,
			IsAdmin:     s.admins[communityID][userID],
		})
	}
	return out, nil
}

func (s *fakeMemberStore) ListUserIDs(ctx context.Context, communityID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []uuid.UUID
	for userID := range s.members[communityID] {
		out = append(out, userID)
	}
	return out, nil
}

// noopCounter satisfies UnreadCounter for tests that do not assert on it
type noopCounter struct{}

func (noopCounter) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) { return 0, nil }
func (noopCounter) Increment(ctx context.Context, userID uuid.UUID, delta int64)     {}
func (noopCounter) Decrement(ctx context.Context, userID uuid.UUID, delta int64)     {}
