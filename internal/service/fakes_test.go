package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"comparteride/api/internal/model"
	"comparteride/api/internal/repository"
	"comparteride/api/pkg/crypto"
)

// fakeStore is a mutex-guarded in-memory stand-in for Postgres. The fake
// repositories below share one store so cross-repository transactions
// (join-with-invitation, ride stats) stay atomic the way the real ones are.
type fakeStore struct {
	mu sync.Mutex

	users       map[uuid.UUID]*model.User
	profiles    map[uuid.UUID]*model.Profile
	circles     map[uuid.UUID]*model.Circle
	memberships map[uuid.UUID]*model.Membership
	invitations map[string]*model.Invitation
	rides       map[uuid.UUID]*model.Ride
	ratings     map[uuid.UUID][]*model.Rating
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[uuid.UUID]*model.User),
		profiles:    make(map[uuid.UUID]*model.Profile),
		circles:     make(map[uuid.UUID]*model.Circle),
		memberships: make(map[uuid.UUID]*model.Membership),
		invitations: make(map[string]*model.Invitation),
		rides:       make(map[uuid.UUID]*model.Ride),
		ratings:     make(map[uuid.UUID][]*model.Rating),
	}
}

// Seed helpers. They bypass the repository contracts on purpose so tests can
// set up arbitrary starting states.

func (st *fakeStore) seedUser(username string) *model.User {
	st.mu.Lock()
	defer st.mu.Unlock()
	profile := &model.Profile{ID: uuid.New(), Reputation: 5.0}
	user := &model.User{
		ID:         uuid.New(),
		Username:   username,
		Email:      username + "@example.com",
		IsClient:   true,
		IsVerified: true,
		Profile:    profile,
	}
	profile.UserID = user.ID
	st.users[user.ID] = user
	st.profiles[profile.ID] = profile
	return user
}

func (st *fakeStore) seedCircle(slug string, limited bool, limit uint) *model.Circle {
	st.mu.Lock()
	defer st.mu.Unlock()
	circle := &model.Circle{
		ID:           uuid.New(),
		Name:         slug,
		SlugName:     slug,
		IsPublic:     true,
		IsLimited:    limited,
		MembersLimit: limit,
	}
	st.circles[circle.ID] = circle
	return circle
}

func (st *fakeStore) seedMembership(user *model.User, circle *model.Circle, isAdmin bool, quota uint) *model.Membership {
	st.mu.Lock()
	defer st.mu.Unlock()
	m := &model.Membership{
		ID:                   uuid.New(),
		UserID:               user.ID,
		ProfileID:            user.Profile.ID,
		CircleID:             circle.ID,
		IsAdmin:              isAdmin,
		IsActive:             true,
		RemainingInvitations: quota,
		JoinedAt:             time.Now(),
	}
	st.memberships[m.ID] = m
	return m
}

func (st *fakeStore) seedInvitation(code string, issuer *model.User, circle *model.Circle) *model.Invitation {
	st.mu.Lock()
	defer st.mu.Unlock()
	inv := &model.Invitation{
		ID:         uuid.New(),
		Code:       code,
		IssuedByID: issuer.ID,
		CircleID:   circle.ID,
	}
	st.invitations[code] = inv
	return inv
}

func (st *fakeStore) seedRide(offeredBy *model.User, circle *model.Circle, departure, arrival time.Time, seats uint) *model.Ride {
	st.mu.Lock()
	defer st.mu.Unlock()
	ride := &model.Ride{
		ID:                uuid.New(),
		OfferedByID:       offeredBy.ID,
		OfferedInID:       circle.ID,
		DepartureLocation: "A",
		ArrivalLocation:   "B",
		DepartureDate:     departure,
		ArrivalDate:       arrival,
		AvailableSeats:    seats,
		IsActive:          true,
	}
	st.rides[ride.ID] = ride
	return ride
}

func (st *fakeStore) membership(id uuid.UUID) *model.Membership {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.memberships[id]
}

func (st *fakeStore) invitation(code string) *model.Invitation {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.invitations[code]
}

// activeMemberLocked counts active members of a circle. Caller holds st.mu.
func (st *fakeStore) activeMembersLocked(circleID uuid.UUID) uint {
	var n uint
	for _, m := range st.memberships {
		if m.CircleID == circleID && m.IsActive {
			n++
		}
	}
	return n
}

// fakeUserRepo

type fakeUserRepo struct{ st *fakeStore }

func (r *fakeUserRepo) CreateWithProfile(ctx context.Context, user *model.User, profile *model.Profile) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateUser
		}
	}
	user.ID = uuid.New()
	profile.ID = uuid.New()
	profile.UserID = user.ID
	r.st.users[user.ID] = user
	r.st.profiles[profile.ID] = profile
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	user, ok := r.st.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.st.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.profiles[profile.ID]; !ok {
		return repository.ErrNotFound
	}
	r.st.profiles[profile.ID] = profile
	return nil
}

func (r *fakeUserRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	user, ok := r.st.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsVerified = true
	return nil
}

func (r *fakeUserRepo) ListCircles(ctx context.Context, userID uuid.UUID) ([]model.Circle, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var circles []model.Circle
	for _, m := range r.st.memberships {
		if m.UserID == userID && m.IsActive {
			if c, ok := r.st.circles[m.CircleID]; ok {
				circles = append(circles, *c)
			}
		}
	}
	return circles, nil
}

// fakeCircleRepo

type fakeCircleRepo struct{ st *fakeStore }

func (r *fakeCircleRepo) CreateWithAdmin(ctx context.Context, circle *model.Circle, admin *model.Membership) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, c := range r.st.circles {
		if c.SlugName == circle.SlugName {
			return repository.ErrDuplicateSlug
		}
	}
	circle.ID = uuid.New()
	admin.ID = uuid.New()
	admin.CircleID = circle.ID
	admin.JoinedAt = time.Now()
	r.st.circles[circle.ID] = circle
	r.st.memberships[admin.ID] = admin
	return nil
}

func (r *fakeCircleRepo) GetBySlug(ctx context.Context, slug string) (*model.Circle, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, c := range r.st.circles {
		if c.SlugName == slug {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCircleRepo) ListPublic(ctx context.Context) ([]model.Circle, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []model.Circle
	for _, c := range r.st.circles {
		if c.IsPublic {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCircleRepo) Update(ctx context.Context, circle *model.Circle) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.circles[circle.ID]; !ok {
		return repository.ErrNotFound
	}
	r.st.circles[circle.ID] = circle
	return nil
}

// fakeMembershipRepo

type fakeMembershipRepo struct{ st *fakeStore }

func (r *fakeMembershipRepo) GetActive(ctx context.Context, circleID, userID uuid.UUID) (*model.Membership, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, m := range r.st.memberships {
		if m.CircleID == circleID && m.UserID == userID && m.IsActive {
			return m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMembershipRepo) GetActiveByUsername(ctx context.Context, circleID uuid.UUID, username string) (*model.Membership, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, m := range r.st.memberships {
		if m.CircleID != circleID || !m.IsActive {
			continue
		}
		if u, ok := r.st.users[m.UserID]; ok && strings.EqualFold(u.Username, username) {
			return m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMembershipRepo) ListActive(ctx context.Context, circleID uuid.UUID) ([]model.Membership, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []model.Membership
	for _, m := range r.st.memberships {
		if m.CircleID == circleID && m.IsActive {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) ListActiveInvitedBy(ctx context.Context, circleID, inviterID uuid.UUID) ([]model.Membership, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []model.Membership
	for _, m := range r.st.memberships {
		if m.CircleID == circleID && m.IsActive && m.InvitedByID != nil && *m.InvitedByID == inviterID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) Deactivate(ctx context.Context, membershipID uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	m, ok := r.st.memberships[membershipID]
	if !ok {
		return repository.ErrNotFound
	}
	m.IsActive = false
	return nil
}

func (r *fakeMembershipRepo) JoinWithInvitation(ctx context.Context, m *model.Membership, code string, membersLimit uint) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	inv, ok := r.st.invitations[code]
	if !ok || inv.Used || inv.CircleID != m.CircleID {
		return repository.ErrInvitationInvalid
	}
	if membersLimit > 0 && r.st.activeMembersLocked(m.CircleID) >= membersLimit {
		return repository.ErrCircleFull
	}
	for _, existing := range r.st.memberships {
		if existing.CircleID == m.CircleID && existing.UserID == m.UserID && existing.IsActive {
			return repository.ErrAlreadyMember
		}
	}

	now := time.Now()
	inv.Used = true
	inv.UsedByID = &m.UserID
	inv.UsedAt = &now

	m.ID = uuid.New()
	m.InvitedByID = &inv.IssuedByID
	m.JoinedAt = now
	r.st.memberships[m.ID] = m

	for _, issuer := range r.st.memberships {
		if issuer.CircleID == m.CircleID && issuer.UserID == inv.IssuedByID && issuer.IsActive {
			issuer.UsedInvitations++
			if issuer.RemainingInvitations > 0 {
				issuer.RemainingInvitations--
			}
			break
		}
	}
	return nil
}

// fakeInvitationRepo

type fakeInvitationRepo struct{ st *fakeStore }

func (r *fakeInvitationRepo) Create(ctx context.Context, invitation *model.Invitation) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, exists := r.st.invitations[invitation.Code]; exists {
		return repository.ErrDuplicateCode
	}
	invitation.ID = uuid.New()
	r.st.invitations[invitation.Code] = invitation
	return nil
}

func (r *fakeInvitationRepo) GetByCode(ctx context.Context, code string) (*model.Invitation, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	inv, ok := r.st.invitations[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return inv, nil
}

func (r *fakeInvitationRepo) Redeem(ctx context.Context, code string, usedBy uuid.UUID) (*model.Invitation, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	inv, ok := r.st.invitations[code]
	if !ok || inv.Used {
		return nil, repository.ErrInvitationInvalid
	}
	now := time.Now()
	inv.Used = true
	inv.UsedByID = &usedBy
	inv.UsedAt = &now
	out := *inv
	return &out, nil
}

func (r *fakeInvitationRepo) ListUnusedCodes(ctx context.Context, circleID, issuerID uuid.UUID) ([]string, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.st.unusedCodesLocked(circleID, issuerID), nil
}

func (r *fakeInvitationRepo) TopUpUnused(ctx context.Context, membershipID uuid.UUID) ([]string, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	m, ok := r.st.memberships[membershipID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	codes := r.st.unusedCodesLocked(m.CircleID, m.UserID)
	for uint(len(codes)) < m.RemainingInvitations {
		code, err := crypto.GenerateInviteCode()
		if err != nil {
			return nil, err
		}
		if _, exists := r.st.invitations[code]; exists {
			continue
		}
		r.st.invitations[code] = &model.Invitation{
			ID:         uuid.New(),
			Code:       code,
			IssuedByID: m.UserID,
			CircleID:   m.CircleID,
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func (st *fakeStore) unusedCodesLocked(circleID, issuerID uuid.UUID) []string {
	var codes []string
	for _, inv := range st.invitations {
		if inv.CircleID == circleID && inv.IssuedByID == issuerID && !inv.Used {
			codes = append(codes, inv.Code)
		}
	}
	return codes
}

// fakeRideRepo

type fakeRideRepo struct{ st *fakeStore }

func (r *fakeRideRepo) CreateWithStats(ctx context.Context, ride *model.Ride, membershipID uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	ride.ID = uuid.New()
	r.st.rides[ride.ID] = ride
	r.st.bumpStatsLocked(ride.OfferedInID, membershipID, func(c *model.Circle, m *model.Membership, p *model.Profile) {
		c.RidesOffered++
		m.RidesOffered++
		p.RidesOffered++
	})
	return nil
}

func (r *fakeRideRepo) GetByID(ctx context.Context, circleID, rideID uuid.UUID) (*model.Ride, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	ride, ok := r.st.rides[rideID]
	if !ok || ride.OfferedInID != circleID {
		return nil, repository.ErrNotFound
	}
	out := *ride
	return &out, nil
}

func (r *fakeRideRepo) Update(ctx context.Context, ride *model.Ride) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	stored, ok := r.st.rides[ride.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if !stored.IsActive {
		return repository.ErrRideInactive
	}
	stored.Comments = ride.Comments
	stored.DepartureLocation = ride.DepartureLocation
	stored.ArrivalLocation = ride.ArrivalLocation
	stored.DepartureDate = ride.DepartureDate
	stored.ArrivalDate = ride.ArrivalDate
	stored.AvailableSeats = ride.AvailableSeats
	return nil
}

func (r *fakeRideRepo) List(ctx context.Context, circleID uuid.UUID, filter repository.RideFilter) ([]model.Ride, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []model.Ride
	for _, ride := range r.st.rides {
		if ride.OfferedInID != circleID || !ride.IsActive || ride.AvailableSeats < 1 {
			continue
		}
		if ride.DepartureDate.Before(filter.MinDeparture) {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(ride.DepartureLocation), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(ride.ArrivalLocation), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *ride)
	}
	return out, nil
}

func (r *fakeRideRepo) AddPassenger(ctx context.Context, rideID uuid.UUID, user *model.User, membershipID uuid.UUID) (*model.Ride, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	ride, ok := r.st.rides[rideID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !ride.IsActive {
		return nil, repository.ErrRideInactive
	}
	if ride.AvailableSeats < 1 {
		return nil, repository.ErrRideFull
	}
	for _, p := range ride.Passengers {
		if p.ID == user.ID {
			return nil, repository.ErrAlreadyPassenger
		}
	}

	ride.Passengers = append(ride.Passengers, *user)
	ride.AvailableSeats--
	r.st.bumpStatsLocked(ride.OfferedInID, membershipID, func(c *model.Circle, m *model.Membership, p *model.Profile) {
		c.RidesTaken++
		m.RidesTaken++
		p.RidesTaken++
	})
	out := *ride
	return &out, nil
}

func (r *fakeRideRepo) IsPassenger(ctx context.Context, rideID, userID uuid.UUID) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	ride, ok := r.st.rides[rideID]
	if !ok {
		return false, repository.ErrNotFound
	}
	for _, p := range ride.Passengers {
		if p.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRideRepo) CreateRating(ctx context.Context, rating *model.Rating) (float64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.ratings[rating.RideID] {
		if existing.RatingUser == rating.RatingUser {
			return 0, repository.ErrAlreadyRated
		}
	}
	rating.ID = uuid.New()
	r.st.ratings[rating.RideID] = append(r.st.ratings[rating.RideID], rating)

	var sum float64
	for _, rt := range r.st.ratings[rating.RideID] {
		sum += float64(rt.Score)
	}
	mean := sum / float64(len(r.st.ratings[rating.RideID]))
	if ride, ok := r.st.rides[rating.RideID]; ok {
		ride.Rating = &mean
	}
	return mean, nil
}

func (r *fakeRideRepo) DeactivateArrived(ctx context.Context, before time.Time) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var n int64
	for _, ride := range r.st.rides {
		if ride.IsActive && ride.ArrivalDate.Before(before) {
			ride.IsActive = false
			n++
		}
	}
	return n, nil
}

func (st *fakeStore) bumpStatsLocked(circleID, membershipID uuid.UUID, bump func(*model.Circle, *model.Membership, *model.Profile)) {
	c := st.circles[circleID]
	m := st.memberships[membershipID]
	if c == nil || m == nil {
		return
	}
	p := st.profiles[m.ProfileID]
	if p == nil {
		return
	}
	bump(c, m, p)
}
