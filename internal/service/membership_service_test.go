package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMembershipTestService(st *fakeStore) MembershipService {
	return NewMembershipService(
		&fakeCircleRepo{st: st},
		&fakeMembershipRepo{st: st},
		&fakeInvitationRepo{st: st},
		&fakeUserRepo{st: st},
	)
}

func TestJoinCircleWithInvitation(t *testing.T) {
	st := newFakeStore()
	issuer := st.seedUser("pablo")
	joiner := st.seedUser("maria")
	circle := st.seedCircle("grupo-salida", false, 0)
	issuerMembership := st.seedMembership(issuer, circle, true, 10)
	st.seedInvitation("WELCOME123", issuer, circle)

	svc := newMembershipTestService(st)

	m, err := svc.Join(context.Background(), "grupo-salida", joiner.ID, "WELCOME123")
	require.NoError(t, err)
	assert.Equal(t, joiner.ID, m.UserID)
	assert.True(t, m.IsActive)
	assert.False(t, m.IsAdmin)
	require.NotNil(t, m.InvitedByID)
	assert.Equal(t, issuer.ID, *m.InvitedByID)

	inv := st.invitation("WELCOME123")
	assert.True(t, inv.Used)
	require.NotNil(t, inv.UsedByID)
	assert.Equal(t, joiner.ID, *inv.UsedByID)

	// Issuer bookkeeping moved one invitation from remaining to used.
	updated := st.membership(issuerMembership.ID)
	assert.Equal(t, uint(1), updated.UsedInvitations)
	assert.Equal(t, uint(9), updated.RemainingInvitations)
}

func TestJoinCircleInvalidCode(t *testing.T) {
	st := newFakeStore()
	joiner := st.seedUser("maria")
	st.seedCircle("grupo-salida", false, 0)

	svc := newMembershipTestService(st)

	_, err := svc.Join(context.Background(), "grupo-salida", joiner.ID, "NOSUCHCODE")
	assert.ErrorIs(t, err, ErrInvitationInvalid)
}

func TestJoinCircleUsedCodeRejected(t *testing.T) {
	st := newFakeStore()
	issuer := st.seedUser("pablo")
	first := st.seedUser("maria")
	second := st.seedUser("luisa")
	circle := st.seedCircle("grupo-salida", false, 0)
	st.seedMembership(issuer, circle, true, 10)
	st.seedInvitation("ONESHOT123", issuer, circle)

	svc := newMembershipTestService(st)

	_, err := svc.Join(context.Background(), "grupo-salida", first.ID, "ONESHOT123")
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), "grupo-salida", second.ID, "ONESHOT123")
	assert.ErrorIs(t, err, ErrInvitationInvalid)
}

func TestJoinCircleCodeFromOtherCircleRejected(t *testing.T) {
	st := newFakeStore()
	issuer := st.seedUser("pablo")
	joiner := st.seedUser("maria")
	circle := st.seedCircle("grupo-salida", false, 0)
	other := st.seedCircle("otro-grupo", false, 0)
	st.seedMembership(issuer, circle, true, 10)
	st.seedMembership(issuer, other, true, 10)
	st.seedInvitation("OTHERCIRCL", issuer, other)

	svc := newMembershipTestService(st)

	_, err := svc.Join(context.Background(), "grupo-salida", joiner.ID, "OTHERCIRCL")
	assert.ErrorIs(t, err, ErrInvitationInvalid)
}

func TestJoinCircleFull(t *testing.T) {
	st := newFakeStore()
	issuer := st.seedUser("pablo")
	latecomer := st.seedUser("luisa")
	circle := st.seedCircle("grupo-chico", true, 10)
	st.seedMembership(issuer, circle, true, 10)
	// Fill the circle to its limit.
	for i := 0; i < 9; i++ {
		filler := st.seedUser("filler" + string(rune('a'+i)))
		st.seedMembership(filler, circle, false, 0)
	}
	st.seedInvitation("FULLHOUSE1", issuer, circle)

	svc := newMembershipTestService(st)

	_, err := svc.Join(context.Background(), "grupo-chico", latecomer.ID, "FULLHOUSE1")
	assert.ErrorIs(t, err, ErrCircleFull)

	// The code survives the failed join.
	assert.False(t, st.invitation("FULLHOUSE1").Used)
}

func TestJoinCircleConcurrentJoinsRespectLimit(t *testing.T) {
	st := newFakeStore()
	issuer := st.seedUser("pablo")
	circle := st.seedCircle("grupo-chico", true, 10)
	st.seedMembership(issuer, circle, true, 10)
	// Nine active members leave exactly one free slot.
	for i := 0; i < 8; i++ {
		filler := st.seedUser("filler" + string(rune('a'+i)))
		st.seedMembership(filler, circle, false, 0)
	}

	const racers = 5
	codes := [racers]string{"RACEAAAAAA", "RACEBBBBBB", "RACECCCCCC", "RACEDDDDDD", "RACEEEEEEE"}
	var candidates [racers]uuid.UUID
	for i := 0; i < racers; i++ {
		st.seedInvitation(codes[i], issuer, circle)
		candidates[i] = st.seedUser("candidate" + string(rune('a'+i))).ID
	}

	svc := newMembershipTestService(st)

	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Join(context.Background(), "grupo-chico", candidates[i], codes[i])
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, rejected int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrCircleFull):
			rejected++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, rejected)

	st.mu.Lock()
	active := st.activeMembersLocked(circle.ID)
	st.mu.Unlock()
	assert.Equal(t, uint(10), active)
}

func TestJoinCircleAlreadyMember(t *testing.T) {
	st := newFakeStore()
	issuer := st.seedUser("pablo")
	circle := st.seedCircle("grupo-salida", false, 0)
	st.seedMembership(issuer, circle, true, 10)
	st.seedInvitation("SELFJOIN12", issuer, circle)

	svc := newMembershipTestService(st)

	_, err := svc.Join(context.Background(), "grupo-salida", issuer.ID, "SELFJOIN12")
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestListMembersRequiresMembership(t *testing.T) {
	st := newFakeStore()
	member := st.seedUser("pablo")
	outsider := st.seedUser("maria")
	circle := st.seedCircle("grupo-salida", false, 0)
	st.seedMembership(member, circle, true, 10)

	svc := newMembershipTestService(st)

	members, err := svc.List(context.Background(), "grupo-salida", member.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	_, err = svc.List(context.Background(), "grupo-salida", outsider.ID)
	assert.ErrorIs(t, err, ErrNotCircleMember)
}

func TestDeactivateMembershipSelf(t *testing.T) {
	st := newFakeStore()
	admin := st.seedUser("pablo")
	member := st.seedUser("maria")
	circle := st.seedCircle("grupo-salida", false, 0)
	st.seedMembership(admin, circle, true, 10)
	m := st.seedMembership(member, circle, false, 0)

	svc := newMembershipTestService(st)

	require.NoError(t, svc.Deactivate(context.Background(), "grupo-salida", "maria", member.ID))
	assert.False(t, st.membership(m.ID).IsActive)

	// The member is gone now, so a second deactivation resolves to not-found.
	err := svc.Deactivate(context.Background(), "grupo-salida", "maria", admin.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestDeactivateMembershipByAdmin(t *testing.T) {
	st := newFakeStore()
	admin := st.seedUser("pablo")
	member := st.seedUser("maria")
	circle := st.seedCircle("grupo-salida", false, 0)
	st.seedMembership(admin, circle, true, 10)
	m := st.seedMembership(member, circle, false, 0)

	svc := newMembershipTestService(st)

	require.NoError(t, svc.Deactivate(context.Background(), "grupo-salida", "maria", admin.ID))
	assert.False(t, st.membership(m.ID).IsActive)
}

func TestDeactivateMembershipRequiresSelfOrAdmin(t *testing.T) {
	st := newFakeStore()
	admin := st.seedUser("pablo")
	member := st.seedUser("maria")
	bystander := st.seedUser("luisa")
	circle := st.seedCircle("grupo-salida", false, 0)
	st.seedMembership(admin, circle, true, 10)
	st.seedMembership(member, circle, false, 0)
	st.seedMembership(bystander, circle, false, 0)

	svc := newMembershipTestService(st)

	err := svc.Deactivate(context.Background(), "grupo-salida", "maria", bystander.ID)
	assert.ErrorIs(t, err, ErrNotCircleAdmin)
}

func TestInvitationBreakdownTopsUpToQuota(t *testing.T) {
	st := newFakeStore()
	member := st.seedUser("pablo")
	circle := st.seedCircle("grupo-salida", false, 0)
	st.seedMembership(member, circle, true, 10)

	svc := newMembershipTestService(st)

	breakdown, err := svc.Invitations(context.Background(), "grupo-salida", "pablo", member.ID)
	require.NoError(t, err)
	assert.Len(t, breakdown.Invitations, 10)
	assert.Empty(t, breakdown.UsedInvitations)

	// Reading again must not mint beyond the quota.
	again, err := svc.Invitations(context.Background(), "grupo-salida", "pablo", member.ID)
	require.NoError(t, err)
	assert.Len(t, again.Invitations, 10)
	assert.ElementsMatch(t, breakdown.Invitations, again.Invitations)
}

func TestInvitationBreakdownConcurrentReadsNeverOvershoot(t *testing.T) {
	st := newFakeStore()
	member := st.seedUser("pablo")
	circle := st.seedCircle("grupo-salida", false, 0)
	m := st.seedMembership(member, circle, true, 10)

	svc := newMembershipTestService(st)

	const readers = 8
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Invitations(context.Background(), "grupo-salida", "pablo", member.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st.mu.Lock()
	unused := st.unusedCodesLocked(circle.ID, m.UserID)
	st.mu.Unlock()
	assert.Len(t, unused, 10)
}

func TestInvitationBreakdownCountsInvitedMembers(t *testing.T) {
	st := newFakeStore()
	issuer := st.seedUser("pablo")
	joiner := st.seedUser("maria")
	circle := st.seedCircle("grupo-salida", false, 0)
	st.seedMembership(issuer, circle, true, 10)
	st.seedInvitation("BRINGONE12", issuer, circle)

	svc := newMembershipTestService(st)

	_, err := svc.Join(context.Background(), "grupo-salida", joiner.ID, "BRINGONE12")
	require.NoError(t, err)

	breakdown, err := svc.Invitations(context.Background(), "grupo-salida", "pablo", issuer.ID)
	require.NoError(t, err)
	require.Len(t, breakdown.UsedInvitations, 1)
	assert.Equal(t, joiner.ID, breakdown.UsedInvitations[0].UserID)
	// Remaining quota dropped to 9 after the successful join.
	assert.Len(t, breakdown.Invitations, 9)
}

func TestInvitationBreakdownOnlyForOwner(t *testing.T) {
	st := newFakeStore()
	owner := st.seedUser("pablo")
	peeker := st.seedUser("maria")
	circle := st.seedCircle("grupo-salida", false, 0)
	st.seedMembership(owner, circle, true, 10)
	st.seedMembership(peeker, circle, false, 0)

	svc := newMembershipTestService(st)

	_, err := svc.Invitations(context.Background(), "grupo-salida", "pablo", peeker.ID)
	assert.ErrorIs(t, err, ErrNotMembershipOwner)
}

func TestGetMemberReturnsMembership(t *testing.T) {
	st := newFakeStore()
	member := st.seedUser("pablo")
	circle := st.seedCircle("grupo-salida", false, 0)
	seeded := st.seedMembership(member, circle, true, 10)

	svc := newMembershipTestService(st)

	got, err := svc.Get(context.Background(), "grupo-salida", "pablo", member.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)

	_, err = svc.Get(context.Background(), "grupo-salida", "nobody", member.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
