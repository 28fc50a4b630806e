package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// memStore is an in-memory ReservationStore used to test the engine
// without a database.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Reservation
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[uint64]*model.Reservation)}
}

func (s *memStore) Create(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	cp := *r
	s.rows[r.ID] = &cp
	return nil
}

func (s *memStore) Fetch(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) UpdateStatus(_ context.Context, id uint64, status model.ReservationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil
	}
	r.Status = status
	return nil
}

func (s *memStore) UpdatePaymentStatus(_ context.Context, id uint64, status model.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil
	}
	r.PaymentStatus = status
	return nil
}

func (s *memStore) ListActive(_ context.Context) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range s.rows {
		if r.Status.Active() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *memStore) ListPendingCreatedBefore(_ context.Context, cutoff time.Time) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range s.rows {
		if r.Status == model.ReservationPending && !r.CreatedAt.After(cutoff) {
			out = append(out, *r)
		}
	}
	return out, nil
}

type memDirectory struct {
	mu         sync.Mutex
	facilities map[uint64]*model.Facility
}

func newMemDirectory(facilities ...*model.Facility) *memDirectory {
	d := &memDirectory{facilities: make(map[uint64]*model.Facility)}
	for _, f := range facilities {
		d.facilities[f.ID] = f
	}
	return d
}

func (d *memDirectory) GetFacility(_ context.Context, id uint64) (*model.Facility, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.facilities[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

var testNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, facilities ...*model.Facility) (*Engine, *memStore) {
	t.Helper()
	if len(facilities) == 0 {
		facilities = []*model.Facility{{
			ID:               1,
			Name:             "Central Garage",
			TotalSpots:       2,
			RateCentsPerHour: 1000,
			Status:           model.FacilityActive,
		}}
	}
	store := newMemStore()
	eng := New(newMemDirectory(facilities...), store, WithClock(func() time.Time { return testNow }))
	return eng, store
}

func admission(start, end time.Duration) AdmissionRequest {
	return AdmissionRequest{
		UserID:       7,
		FacilityID:   1,
		Window:       Window{Start: testNow.Add(start), End: testNow.Add(end)},
		VehicleType:  model.VehicleCar,
		LicensePlate: "ab-123",
	}
}

func TestAdmitSuccess(t *testing.T) {
	eng, _ := newTestEngine(t)

	res, err := eng.Admit(context.Background(), admission(time.Hour, 3*time.Hour+15*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, model.ReservationPending, res.Status)
	assert.Equal(t, model.PaymentPending, res.PaymentStatus)
	assert.Equal(t, uint32(3000), res.AmountCents, "2h15m bills three hours at 1000c")
	assert.Equal(t, "AB-123", res.LicensePlate)
	assert.NotEmpty(t, res.SpotLabel)

	avail, err := eng.Available(context.Background(), 1, NewWindow(testNow.Add(time.Hour), testNow.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 1, avail)
}

func TestAdmitValidation(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	req := admission(2*time.Hour, time.Hour)
	_, err := eng.Admit(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidWindow, "inverted window")

	req = admission(-time.Hour, time.Hour)
	_, err = eng.Admit(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidWindow, "start in the past")

	req = admission(time.Hour, 2*time.Hour)
	req.VehicleType = "spaceship"
	_, err = eng.Admit(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidVehicle)

	req = admission(time.Hour, 2*time.Hour)
	req.LicensePlate = "   "
	_, err = eng.Admit(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidVehicle)

	req = admission(time.Hour, 2*time.Hour)
	req.FacilityID = 42
	_, err = eng.Admit(ctx, req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdmitFacilityNotActive(t *testing.T) {
	for _, status := range []model.FacilityStatus{model.FacilityInactive, model.FacilityMaintenance} {
		eng, _ := newTestEngine(t, &model.Facility{
			ID: 1, Name: "Closed Lot", TotalSpots: 5, RateCentsPerHour: 500, Status: status,
		})
		_, err := eng.Admit(context.Background(), admission(time.Hour, 2*time.Hour))
		assert.ErrorIs(t, err, ErrFacilityUnavailable, "status %s", status)
	}
}

func TestAdmitCapacityExceeded(t *testing.T) {
	eng, _ := newTestEngine(t, &model.Facility{
		ID: 1, Name: "Tiny Lot", TotalSpots: 1, RateCentsPerHour: 1000, Status: model.FacilityActive,
	})
	ctx := context.Background()

	_, err := eng.Admit(ctx, admission(time.Hour, 3*time.Hour))
	require.NoError(t, err)

	_, err = eng.Admit(ctx, admission(2*time.Hour, 4*time.Hour))
	assert.ErrorIs(t, err, ErrCapacityExceeded, "overlapping window must be rejected")

	// A back-to-back window shares only the boundary instant and fits.
	res, err := eng.Admit(ctx, admission(3*time.Hour, 4*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, res.Status)
}

func TestCancelRestoresCapacity(t *testing.T) {
	eng, _ := newTestEngine(t, &model.Facility{
		ID: 1, Name: "Tiny Lot", TotalSpots: 1, RateCentsPerHour: 1000, Status: model.FacilityActive,
	})
	ctx := context.Background()

	first, err := eng.Admit(ctx, admission(time.Hour, 3*time.Hour))
	require.NoError(t, err)

	_, err = eng.Admit(ctx, admission(time.Hour, 3*time.Hour))
	require.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = eng.Cancel(ctx, first.ID)
	require.NoError(t, err)

	second, err := eng.Admit(ctx, admission(time.Hour, 3*time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestConcurrentAdmissionSingleSpot(t *testing.T) {
	eng, _ := newTestEngine(t, &model.Facility{
		ID: 1, Name: "Tiny Lot", TotalSpots: 1, RateCentsPerHour: 1000, Status: model.FacilityActive,
	})
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	rejected := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := admission(time.Hour, 3*time.Hour)
			req.UserID = uint64(100 + n)
			_, err := eng.Admit(ctx, req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case assert.ErrorIs(t, err, ErrCapacityExceeded):
				rejected++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, admitted, "exactly one request wins the single spot")
	assert.Equal(t, workers-1, rejected)
}

func TestConcurrentAdmissionNeverOversubscribes(t *testing.T) {
	const spots = 4
	eng, store := newTestEngine(t, &model.Facility{
		ID: 1, Name: "Mid Lot", TotalSpots: spots, RateCentsPerHour: 1000, Status: model.FacilityActive,
	})
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := admission(time.Hour, 2*time.Hour)
			req.UserID = uint64(n)
			_, _ = eng.Admit(ctx, req)
		}(i)
	}
	wg.Wait()

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, spots)
}

func TestLifecycleTransitions(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := eng.Admit(ctx, admission(time.Hour, 2*time.Hour))
	require.NoError(t, err)

	confirmed, err := eng.Confirm(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, confirmed.Status)
	assert.Equal(t, model.PaymentPaid, confirmed.PaymentStatus)

	// Confirming twice is an illegal transition.
	_, err = eng.Confirm(ctx, res.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	cancelled, err := eng.Cancel(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, cancelled.Status)

	// Double cancellation must be rejected.
	_, err = eng.Cancel(ctx, res.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Completing a cancelled reservation must be rejected.
	_, err = eng.Complete(ctx, res.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompletedCannotBeCancelled(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := eng.Admit(ctx, admission(time.Hour, 2*time.Hour))
	require.NoError(t, err)
	_, err = eng.Confirm(ctx, res.ID)
	require.NoError(t, err)

	done, err := eng.Complete(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCompleted, done.Status)

	_, err = eng.Cancel(ctx, res.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionsOnUnknownReservation(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Confirm(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = eng.Cancel(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = eng.Complete(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = eng.Refund(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentFailureKeepsHold(t *testing.T) {
	eng, _ := newTestEngine(t, &model.Facility{
		ID: 1, Name: "Tiny Lot", TotalSpots: 1, RateCentsPerHour: 1000, Status: model.FacilityActive,
	})
	ctx := context.Background()

	res, err := eng.Admit(ctx, admission(time.Hour, 3*time.Hour))
	require.NoError(t, err)

	failed, err := eng.RecordPaymentFailure(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, failed.Status, "lifecycle unchanged on payment failure")
	assert.Equal(t, model.PaymentFailed, failed.PaymentStatus)

	// The spot is still held.
	_, err = eng.Admit(ctx, admission(time.Hour, 3*time.Hour))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestRefundRules(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := eng.Admit(ctx, admission(time.Hour, 2*time.Hour))
	require.NoError(t, err)

	// Refund before capture or cancellation is illegal.
	_, err = eng.Refund(ctx, res.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = eng.Confirm(ctx, res.ID)
	require.NoError(t, err)

	// Still confirmed, not cancelled.
	_, err = eng.Refund(ctx, res.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = eng.Cancel(ctx, res.ID)
	require.NoError(t, err)

	refunded, err := eng.Refund(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, refunded.PaymentStatus)
	assert.Equal(t, model.ReservationCancelled, refunded.Status)
}

func TestAvailableFloorsAtZero(t *testing.T) {
	fac := &model.Facility{ID: 1, Name: "Shrunk Lot", TotalSpots: 1, RateCentsPerHour: 1000, Status: model.FacilityActive}
	eng, _ := newTestEngine(t, fac)
	ctx := context.Background()

	_, err := eng.Admit(ctx, admission(time.Hour, 3*time.Hour))
	require.NoError(t, err)

	// An operator shrinking the lot can make overlap exceed the total.
	shrunk := &model.Facility{ID: 1, Name: "Shrunk Lot", TotalSpots: 0, RateCentsPerHour: 1000, Status: model.FacilityActive}
	got := eng.AvailableFor(shrunk, NewWindow(testNow.Add(time.Hour), testNow.Add(2*time.Hour)))
	assert.Equal(t, 0, got, "never report negative availability")
}

func TestRebuild(t *testing.T) {
	store := newMemStore()
	dir := newMemDirectory(&model.Facility{
		ID: 1, Name: "Central Garage", TotalSpots: 2, RateCentsPerHour: 1000, Status: model.FacilityActive,
	})
	ctx := context.Background()

	seed := []model.Reservation{
		{UserID: 1, FacilityID: 1, StartsAt: testNow.Add(time.Hour), EndsAt: testNow.Add(3 * time.Hour), Status: model.ReservationConfirmed, PaymentStatus: model.PaymentPaid},
		{UserID: 2, FacilityID: 1, StartsAt: testNow.Add(time.Hour), EndsAt: testNow.Add(2 * time.Hour), Status: model.ReservationPending, PaymentStatus: model.PaymentPending},
		{UserID: 3, FacilityID: 1, StartsAt: testNow.Add(time.Hour), EndsAt: testNow.Add(2 * time.Hour), Status: model.ReservationCancelled, PaymentStatus: model.PaymentRefunded},
	}
	for i := range seed {
		require.NoError(t, store.Create(ctx, &seed[i]))
	}

	eng := New(dir, store, WithClock(func() time.Time { return testNow }))
	n, err := eng.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "cancelled reservations are not replayed")

	// Both spots are taken between hour 1 and 2.
	_, err = eng.Admit(ctx, admission(time.Hour, 2*time.Hour))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestExpireStalePending(t *testing.T) {
	eng, store := newTestEngine(t, &model.Facility{
		ID: 1, Name: "Tiny Lot", TotalSpots: 1, RateCentsPerHour: 1000, Status: model.FacilityActive,
	})
	ctx := context.Background()

	res, err := eng.Admit(ctx, admission(time.Hour, 3*time.Hour))
	require.NoError(t, err)

	// Backdate the creation so the reservation falls behind the cutoff.
	store.mu.Lock()
	store.rows[res.ID].CreatedAt = testNow.Add(-time.Hour)
	store.mu.Unlock()

	eng.expireStalePending(ctx, 15*time.Minute)

	got, err := store.Fetch(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCancelled, got.Status)

	// The spot is free again.
	_, err = eng.Admit(ctx, admission(time.Hour, 3*time.Hour))
	assert.NoError(t, err)
}

func TestExpireLeavesPaidPending(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	res, err := eng.Admit(ctx, admission(time.Hour, 3*time.Hour))
	require.NoError(t, err)

	store.mu.Lock()
	store.rows[res.ID].CreatedAt = testNow.Add(-time.Hour)
	store.rows[res.ID].PaymentStatus = model.PaymentPaid
	store.mu.Unlock()

	eng.expireStalePending(ctx, 15*time.Minute)

	got, err := store.Fetch(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, got.Status, "paid pending reservations are left for the operator")
}
