package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tourops/internal/domain"
	"tourops/internal/domain/models"
	"tourops/internal/notify"
)

// The fakes mirror the repository contracts: revision-guarded writes fail
// with ConflictError on a stale revision, and per-(booking, op) claims fail
// with AlreadyProcessedError on replay.

type fakeDepartureStore struct {
	mu     sync.Mutex
	deps   map[int64]models.Departure
	claims map[string]bool
}

func newFakeDepartureStore(deps ...models.Departure) *fakeDepartureStore {
	s := &fakeDepartureStore{deps: map[int64]models.Departure{}, claims: map[string]bool{}}
	for _, d := range deps {
		if d.Revision == 0 {
			d.Revision = 1
		}
		s.deps[d.ID] = d
	}
	return s
}

func (s *fakeDepartureStore) GetByID(_ context.Context, id int64) (models.Departure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deps[id]
	if !ok {
		return models.Departure{}, domain.NotFoundError{Resource: "departure"}
	}
	return d, nil
}

func (s *fakeDepartureStore) ListScheduledBefore(_ context.Context, cutoff time.Time) ([]models.Departure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Departure
	for _, d := range s.deps {
		if d.Status == models.DepartureScheduled && d.DepartureDate.Before(cutoff) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeDepartureStore) SaveSeats(_ context.Context, id int64, bookedSeats int, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deps[id]
	if !ok {
		return domain.NotFoundError{Resource: "departure"}
	}
	if d.Revision != expectedRevision {
		return domain.ConflictError{Resource: "departure"}
	}
	d.BookedSeats = bookedSeats
	d.Revision++
	s.deps[id] = d
	return nil
}

func (s *fakeDepartureStore) ReleaseSeats(_ context.Context, bookingID, departureID int64, bookedSeats int, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("release:%d", bookingID)
	if s.claims[key] {
		return domain.AlreadyProcessedError{BookingID: bookingID, Op: string(models.OpCapacityRelease)}
	}
	d, ok := s.deps[departureID]
	if !ok {
		return domain.NotFoundError{Resource: "departure"}
	}
	if d.Revision != expectedRevision {
		return domain.ConflictError{Resource: "departure"}
	}
	s.claims[key] = true
	d.BookedSeats = bookedSeats
	d.Revision++
	s.deps[departureID] = d
	return nil
}

func (s *fakeDepartureStore) MarkCancelled(_ context.Context, id int64, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deps[id]
	if !ok {
		return domain.NotFoundError{Resource: "departure"}
	}
	if d.Revision != expectedRevision {
		return domain.ConflictError{Resource: "departure"}
	}
	d.Status = models.DepartureCancelled
	d.Revision++
	s.deps[id] = d
	return nil
}

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[int64]models.Booking
	nextID   int64

	// completion maps booking id to its tour completion date; the real store
	// reads this off the departures join.
	completion map[int64]time.Time

	// failConfirm injects a one-shot error for a booking's next Confirm.
	failConfirm map[int64]error
}

func newFakeBookingStore(bookings ...models.Booking) *fakeBookingStore {
	s := &fakeBookingStore{
		bookings:    map[int64]models.Booking{},
		nextID:      1,
		completion:  map[int64]time.Time{},
		failConfirm: map[int64]error{},
	}
	for _, b := range bookings {
		if b.Revision == 0 {
			b.Revision = 1
		}
		s.bookings[b.ID] = b
		if b.ID >= s.nextID {
			s.nextID = b.ID + 1
		}
	}
	return s
}

func (s *fakeBookingStore) GetByID(_ context.Context, id int64) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (s *fakeBookingStore) Create(_ context.Context, b models.Booking) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID
	s.nextID++
	b.Revision = 1
	b.BookedAt = time.Now()
	s.bookings[b.ID] = b
	return b.ID, nil
}

func (s *fakeBookingStore) ListByDeparture(_ context.Context, departureID int64) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.DepartureID == departureID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListCancellable(_ context.Context, departureID int64) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.DepartureID != departureID {
			continue
		}
		if b.Status == models.BookingConfirmed || b.Status == models.BookingCancelling {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListSettleable(_ context.Context, maturedBefore time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		settleable := b.Status == models.BookingConfirmed ||
			(b.Status.Terminal() && b.AmountCharged > b.NetPayable)
		if !settleable {
			continue
		}
		done, ok := s.completion[b.ID]
		if !ok || done.After(maturedBefore) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *fakeBookingStore) Confirm(_ context.Context, id, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failConfirm[id]; ok {
		delete(s.failConfirm, id)
		return err
	}
	b, ok := s.bookings[id]
	if !ok {
		return domain.NotFoundError{Resource: "booking"}
	}
	if b.Revision != expectedRevision || b.Status != models.BookingPending {
		return domain.ConflictError{Resource: "booking", Msg: "not pending or stale revision"}
	}
	b.Status = models.BookingConfirmed
	b.Revision++
	s.bookings[id] = b
	return nil
}

func (s *fakeBookingStore) SaveCancelState(_ context.Context, b models.Booking, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bookings[b.ID]
	if !ok {
		return domain.NotFoundError{Resource: "booking"}
	}
	if cur.Revision != expectedRevision {
		return domain.ConflictError{Resource: "booking"}
	}
	b.Revision = cur.Revision + 1
	s.bookings[b.ID] = b
	return nil
}

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[int64]models.OperatorAccount
	claims   map[string]bool

	// failOn injects a one-shot error for a booking's next ApplyEntry.
	failOn map[int64]error
}

func newFakeAccountStore(accounts ...models.OperatorAccount) *fakeAccountStore {
	s := &fakeAccountStore{accounts: map[int64]models.OperatorAccount{}, claims: map[string]bool{}, failOn: map[int64]error{}}
	for _, a := range accounts {
		if a.Revision == 0 {
			a.Revision = 1
		}
		s.accounts[a.ID] = a
	}
	return s
}

func (s *fakeAccountStore) GetByID(_ context.Context, id int64) (models.OperatorAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.OperatorAccount{}, domain.NotFoundError{Resource: "operator account"}
	}
	return a, nil
}

func (s *fakeAccountStore) ApplyEntry(_ context.Context, bookingID int64, kind models.OpKind, accountID int64, held, withdrawable int64, expectedRevision int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failOn[bookingID]; ok {
		delete(s.failOn, bookingID)
		return err
	}
	key := fmt.Sprintf("%d:%s", bookingID, kind)
	if s.claims[key] {
		return domain.AlreadyProcessedError{BookingID: bookingID, Op: string(kind)}
	}
	a, ok := s.accounts[accountID]
	if !ok {
		return domain.NotFoundError{Resource: "operator account"}
	}
	if a.Revision != expectedRevision {
		return domain.ConflictError{Resource: "operator account"}
	}
	s.claims[key] = true
	a.HeldBalance = held
	a.WithdrawableBalance = withdrawable
	a.Revision++
	s.accounts[accountID] = a
	return nil
}

type fakePolicyStore struct {
	mu       sync.Mutex
	policies []models.RefundPolicy
	nextID   int64
}

func newFakePolicyStore(policies ...models.RefundPolicy) *fakePolicyStore {
	s := &fakePolicyStore{nextID: 1}
	for _, p := range policies {
		if p.ID == 0 {
			p.ID = s.nextID
		}
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
		s.policies = append(s.policies, p)
	}
	return s
}

func (s *fakePolicyStore) GetByID(_ context.Context, id int64) (models.RefundPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.policies {
		if p.ID == id {
			return p, nil
		}
	}
	return models.RefundPolicy{}, domain.NotFoundError{Resource: "refund policy"}
}

func (s *fakePolicyStore) ListActive(_ context.Context, category models.CancellationCategory) ([]models.RefundPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RefundPolicy
	for _, p := range s.policies {
		if p.Active && p.Category == category {
			out = append(out, p)
		}
	}
	// priority ascending, matching the repository ordering
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Priority < out[i].Priority {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *fakePolicyStore) Create(_ context.Context, p models.RefundPolicy) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	s.policies = append(s.policies, p)
	return p.ID, nil
}

func (s *fakePolicyStore) Expire(_ context.Context, id int64, effectiveTo time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.policies {
		if p.ID == id && p.Active {
			s.policies[i].Active = false
			s.policies[i].EffectiveTo = &effectiveTo
			return nil
		}
	}
	return domain.NotFoundError{Resource: "active refund policy"}
}

type fakeRefundStore struct {
	mu       sync.Mutex
	requests map[int64]models.RefundRequest
	nextID   int64
}

func newFakeRefundStore() *fakeRefundStore {
	return &fakeRefundStore{requests: map[int64]models.RefundRequest{}, nextID: 1}
}

func (s *fakeRefundStore) Create(_ context.Context, rr models.RefundRequest) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.BookingID == rr.BookingID {
			return 0, domain.AlreadyProcessedError{BookingID: rr.BookingID, Op: "refund_request"}
		}
	}
	rr.ID = s.nextID
	s.nextID++
	rr.Status = models.RefundPending
	rr.CreatedAt = time.Now()
	s.requests[rr.ID] = rr
	return rr.ID, nil
}

func (s *fakeRefundStore) GetByBookingID(_ context.Context, bookingID int64) (models.RefundRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rr := range s.requests {
		if rr.BookingID == bookingID {
			return rr, nil
		}
	}
	return models.RefundRequest{}, domain.NotFoundError{Resource: "refund request"}
}

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []notify.BookingConfirmedEvent
	cancelled []notify.BookingCancelledEvent
	refunds   []notify.RefundComputedEvent
	settled   []notify.RevenueSettledEvent
}

func (n *fakeNotifier) BookingConfirmed(e notify.BookingConfirmedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, e)
}

func (n *fakeNotifier) BookingCancelled(e notify.BookingCancelledEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, e)
}

func (n *fakeNotifier) RefundComputed(e notify.RefundComputedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refunds = append(n.refunds, e)
}

func (n *fakeNotifier) RevenueSettled(e notify.RevenueSettledEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settled = append(n.settled, e)
}
