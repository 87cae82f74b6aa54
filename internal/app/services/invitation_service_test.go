package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/commverse/internal/app/models"
	"github.com/deniz/commverse/internal/app/models/dto"
	"github.com/deniz/commverse/internal/pkg/apperrors"
)

type fakeInvitationStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.CommunityInvitation
}

func newFakeInvitationStore() *fakeInvitationStore {
	return &fakeInvitationStore{rows: make(map[uuid.UUID]*models.CommunityInvitation)}
}

func (s *fakeInvitationStore) Create(ctx context.Context, invitation *models.CommunityInvitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inv := range s.rows {
		if inv.CommunityID == invitation.CommunityID && inv.UserID == invitation.UserID {
			return apperrors.ErrAlreadyInvited
		}
	}
	invitation.ID = uuid.New()
	s.rows[invitation.ID] = invitation
	return nil
}

func (s *fakeInvitationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.CommunityInvitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invitation, ok := s.rows[id]
	if !ok {
		return nil, apperrors.ErrInvitationNotFound
	}
	return invitation, nil
}

func (s *fakeInvitationStore) Decide(ctx context.Context, id uuid.UUID, accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	invitation, ok := s.rows[id]
	if !ok {
		return apperrors.ErrInvitationNotFound
	}
	if invitation.Accepted != nil {
		return apperrors.ErrInvitationDecided
	}
	invitation.Accepted = &accepted
	return nil
}

func (s *fakeInvitationStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return apperrors.ErrInvitationNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeInvitationStore) ListPendingByUser(ctx context.Context, userID uuid.UUID) ([]*models.CommunityInvitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.CommunityInvitation
	for _, inv := range s.rows {
		if inv.UserID == userID && inv.Accepted == nil {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *fakeInvitationStore) ListByCommunity(ctx context.Context, communityID uuid.UUID) ([]*models.CommunityInvitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.CommunityInvitation
	for _, inv := range s.rows {
		if inv.CommunityID == communityID {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeCommunityStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Community
}

func newFakeCommunityStore() *fakeCommunityStore {
	return &fakeCommunityStore{rows: make(map[uuid.UUID]*models.Community)}
}

func (s *fakeCommunityStore) Create(ctx context.Context, community *models.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	community.ID = uuid.New()
	s.rows[community.ID] = community
	return nil
}

func (s *fakeCommunityStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	community, ok := s.rows[id]
	if !ok {
		return nil, apperrors.ErrCommunityNotFound
	}
	return community, nil
}

func (s *fakeCommunityStore) List(ctx context.Context, search string, limit, offset int) ([]*models.Community, error) {
	return nil, nil
}

func (s *fakeCommunityStore) ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.Community, error) {
	return nil, nil
}

func (s *fakeCommunityStore) Update(ctx context.Context, community *models.Community) error { return nil }
func (s *fakeCommunityStore) Delete(ctx context.Context, id uuid.UUID) error               { return nil }

type invitationFixture struct {
	svc         InvitationService
	invitations *fakeInvitationStore
	communities *fakeCommunityStore
	members     *fakeMemberStore
	profiles    *fakeProfileStore
	publisher   *fakePublisher

	communityID uuid.UUID
	adminID     uuid.UUID
}

func newInvitationFixture(t *testing.T) *invitationFixture {
	t.Helper()

	f := &invitationFixture{
		invitations: newFakeInvitationStore(),
		communities: newFakeCommunityStore(),
		members:     newFakeMemberStore(),
		profiles:    newFakeProfileStore(),
		publisher:   &fakePublisher{},
	}

	f.adminID = f.profiles.add("admin")
	community := &models.Community{Name: "Gophers", OwnerID: f.adminID}
	require.NoError(t, f.communities.Create(context.Background(), community))
	f.communityID = community.ID
	f.members.addMember(f.communityID, f.adminID, true)

	notifications := NewNotificationService(&fakeNotificationStore{}, f.members, noopCounter{}, f.publisher, zerolog.Nop())
	f.svc = NewInvitationService(
		f.invitations,
		f.communities,
		f.members,
		f.profiles,
		notifications,
		nil,
		f.publisher,
		zerolog.Nop(),
	)
	return f
}

func (f *invitationFixture) invite(t *testing.T, username string) (*dto.InvitationResponse, uuid.UUID) {
	t.Helper()

	inviteeID := f.profiles.add(username)
	resp, err := f.svc.Invite(context.Background(), f.communityID, f.adminID, &dto.InviteRequest{Username: username})
	require.NoError(t, err)
	return resp, inviteeID
}

func TestInviteNotifiesInviteeAndCommunity(t *testing.T) {
	f := newInvitationFixture(t)

	resp, inviteeID := f.invite(t, "newcomer")
	assert.Equal(t, inviteeID, resp.UserID)
	assert.Nil(t, resp.Accepted)

	// Invitee gets a notification push, the community topic an
	// invitation event
	assert.Len(t, f.publisher.named("add"), 1)
	assert.Len(t, f.publisher.named("invitation"), 1)
}

func TestInviteRequiresAdmin(t *testing.T) {
	f := newInvitationFixture(t)

	plain := f.profiles.add("plain")
	f.members.addMember(f.communityID, plain, false)
	target := f.profiles.add("target")
	_ = target

	_, err := f.svc.Invite(context.Background(), f.communityID, plain, &dto.InviteRequest{Username: "target"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestInviteExistingMemberRejected(t *testing.T) {
	f := newInvitationFixture(t)

	memberID := f.profiles.add("existing")
	f.members.addMember(f.communityID, memberID, false)

	_, err := f.svc.Invite(context.Background(), f.communityID, f.adminID, &dto.InviteRequest{Username: "existing"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)
}

func TestAcceptEnrollsAndPublishesNewMember(t *testing.T) {
	f := newInvitationFixture(t)
	resp, inviteeID := f.invite(t, "newcomer")

	require.NoError(t, f.svc.Accept(context.Background(), resp.ID, inviteeID))

	isMember, err := f.members.IsMember(context.Background(), f.communityID, inviteeID)
	require.NoError(t, err)
	assert.True(t, isMember)
	assert.Len(t, f.publisher.named("new_member"), 1)
}

func TestInvitationDecidedOnlyOnce(t *testing.T) {
	f := newInvitationFixture(t)
	resp, inviteeID := f.invite(t, "newcomer")

	require.NoError(t, f.svc.Accept(context.Background(), resp.ID, inviteeID))

	// A second decision, either way, fails
	assert.ErrorIs(t, f.svc.Accept(context.Background(), resp.ID, inviteeID), apperrors.ErrInvitationDecided)
	assert.ErrorIs(t, f.svc.Decline(context.Background(), resp.ID, inviteeID), apperrors.ErrInvitationDecided)
}

func TestDeclineDoesNotEnroll(t *testing.T) {
	f := newInvitationFixture(t)
	resp, inviteeID := f.invite(t, "newcomer")

	require.NoError(t, f.svc.Decline(context.Background(), resp.ID, inviteeID))

	isMember, err := f.members.IsMember(context.Background(), f.communityID, inviteeID)
	require.NoError(t, err)
	assert.False(t, isMember)
	assert.Empty(t, f.publisher.named("new_member"))
}

func TestAcceptForeignInvitationRejected(t *testing.T) {
	f := newInvitationFixture(t)
	resp, _ := f.invite(t, "newcomer")

	stranger := f.profiles.add("stranger")
	assert.ErrorIs(t, f.svc.Accept(context.Background(), resp.ID, stranger), apperrors.ErrPermissionDenied)
}

func TestRevokePublishesInvitationRemove(t *testing.T) {
	f := newInvitationFixture(t)
	resp, _ := f.invite(t, "newcomer")

	require.NoError(t, f.svc.Revoke(context.Background(), resp.ID, f.adminID))

	assert.Len(t, f.publisher.named("invitation_remove"), 1)
	_, err := f.invitations.GetByID(context.Background(), resp.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvitationNotFound)
}
