package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// ReservationStore is the persistence boundary the engine writes
// reservations through.  Fetch returns (nil, nil) when the id is
// unknown; the engine maps that to ErrNotFound.
type ReservationStore interface {
	Create(ctx context.Context, r *model.Reservation) error
	Fetch(ctx context.Context, id uint64) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus) error
	UpdatePaymentStatus(ctx context.Context, id uint64, status model.PaymentStatus) error
	ListActive(ctx context.Context) ([]model.Reservation, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.Reservation, error)
}

// FacilityDirectory resolves facility records for admission checks.
// GetFacility returns (nil, nil) when the id is unknown.
type FacilityDirectory interface {
	GetFacility(ctx context.Context, id uint64) (*model.Facility, error)
}

// Engine serialises admissions per facility and lifecycle transitions
// per reservation.  Distinct facilities never contend with each other.
// Lock order is reservation then facility; admission takes only the
// facility lock, so no cycle is possible.
type Engine struct {
	facilities    FacilityDirectory
	store         ReservationStore
	index         *IntervalIndex
	facilityMu    *keyedMutex
	reservationMu *keyedMutex
	now           func() time.Time
}

// Option customises an Engine at construction time.
type Option func(*Engine)

// WithClock overrides the engine's time source.  Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds an Engine over the given directory and store.  Call
// Rebuild before serving traffic so the index reflects persisted
// reservations.
func New(facilities FacilityDirectory, store ReservationStore, opts ...Option) *Engine {
	e := &Engine{
		facilities:    facilities,
		store:         store,
		index:         NewIntervalIndex(),
		facilityMu:    newKeyedMutex(),
		reservationMu: newKeyedMutex(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AdmissionRequest carries everything needed to admit a reservation.
// It is validated as a whole before any shared state is consulted, so
// malformed requests never reach the admission critical section.
type AdmissionRequest struct {
	UserID       uint64
	FacilityID   uint64
	Window       Window
	VehicleType  model.VehicleType
	LicensePlate string
}

// Validate checks the request shape against the clock instant now.
func (r AdmissionRequest) Validate(now time.Time) error {
	if err := r.Window.Validate(now); err != nil {
		return err
	}
	if !r.VehicleType.Valid() || strings.TrimSpace(r.LicensePlate) == "" {
		return ErrInvalidVehicle
	}
	return nil
}

// Admit runs admission control for a new reservation: it validates the
// request, checks the facility is active, and atomically verifies
// capacity and claims a spot under the facility's lock.  On success the
// reservation is persisted as pending with its price fixed; the caller
// owes a payment capture to confirm it.
func (e *Engine) Admit(ctx context.Context, req AdmissionRequest) (*model.Reservation, error) {
	now := e.now().UTC()
	if err := req.Validate(now); err != nil {
		return nil, err
	}

	fac, err := e.facilities.GetFacility(ctx, req.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("facility lookup: %w", err)
	}
	if fac == nil {
		return nil, ErrNotFound
	}
	if fac.Status != model.FacilityActive {
		return nil, ErrFacilityUnavailable
	}

	mu := e.facilityMu.get(req.FacilityID)
	mu.Lock()
	defer mu.Unlock()

	overlap := e.index.CountOverlapping(req.FacilityID, req.Window)
	if fac.TotalSpots-overlap <= 0 {
		return nil, ErrCapacityExceeded
	}

	res := &model.Reservation{
		UserID:        req.UserID,
		FacilityID:    req.FacilityID,
		StartsAt:      req.Window.Start,
		EndsAt:        req.Window.End,
		Status:        model.ReservationPending,
		PaymentStatus: model.PaymentPending,
		SpotLabel:     spotLabel(fac.Name, now),
		AmountCents:   PriceCents(req.Window, fac.RateCentsPerHour),
		VehicleType:   req.VehicleType,
		LicensePlate:  strings.ToUpper(strings.TrimSpace(req.LicensePlate)),
	}
	if err := e.store.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("persist reservation: %w", err)
	}
	if err := e.index.Insert(req.FacilityID, res.ID, req.Window); err != nil {
		// A fresh id colliding means the store handed out a duplicate;
		// void the row so index and store stay consistent.
		_ = e.store.UpdateStatus(ctx, res.ID, model.ReservationCancelled)
		return nil, err
	}
	log.Printf("engine: admitted reservation %d facility=%d window=[%s, %s) amount=%d",
		res.ID, res.FacilityID, res.StartsAt.Format(time.RFC3339), res.EndsAt.Format(time.RFC3339), res.AmountCents)
	return res, nil
}

// Confirm transitions a pending reservation to confirmed after a
// successful payment capture and marks it paid.  Capacity is unchanged;
// the reservation has counted against the facility since admission.
func (e *Engine) Confirm(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	mu := e.reservationMu.get(reservationID)
	mu.Lock()
	defer mu.Unlock()

	res, err := e.fetch(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.Status != model.ReservationPending {
		return nil, ErrInvalidTransition
	}
	if err := e.store.UpdateStatus(ctx, reservationID, model.ReservationConfirmed); err != nil {
		return nil, fmt.Errorf("persist transition: %w", err)
	}
	if err := e.store.UpdatePaymentStatus(ctx, reservationID, model.PaymentPaid); err != nil {
		return nil, fmt.Errorf("persist payment status: %w", err)
	}
	res.Status = model.ReservationConfirmed
	res.PaymentStatus = model.PaymentPaid
	log.Printf("engine: reservation %d pending -> confirmed", reservationID)
	return res, nil
}

// Cancel releases the reservation's capacity.  Pending and confirmed
// reservations may be cancelled; cancelling twice or cancelling a
// completed reservation fails with ErrInvalidTransition.
func (e *Engine) Cancel(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	return e.release(ctx, reservationID, model.ReservationCancelled)
}

// Complete marks a reservation's parking session finished, releasing
// its capacity.  Only active reservations can complete.
func (e *Engine) Complete(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	return e.release(ctx, reservationID, model.ReservationCompleted)
}

// release performs the capacity-freeing transitions shared by Cancel
// and Complete.  The reservation lock serialises transitions for the
// same reservation; the facility lock covers the store write and the
// index removal so concurrent admissions never observe them out of
// sync.
func (e *Engine) release(ctx context.Context, reservationID uint64, to model.ReservationStatus) (*model.Reservation, error) {
	rmu := e.reservationMu.get(reservationID)
	rmu.Lock()
	defer rmu.Unlock()

	res, err := e.fetch(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !res.Status.Active() {
		return nil, ErrInvalidTransition
	}

	fmu := e.facilityMu.get(res.FacilityID)
	fmu.Lock()
	defer fmu.Unlock()

	if err := e.store.UpdateStatus(ctx, reservationID, to); err != nil {
		return nil, fmt.Errorf("persist transition: %w", err)
	}
	e.index.Remove(res.FacilityID, reservationID)
	log.Printf("engine: reservation %d %s -> %s", reservationID, res.Status, to)
	res.Status = to
	return res, nil
}

// RecordPaymentFailure marks the reservation's payment failed without
// touching its lifecycle status: the spot stays held until the
// reservation is cancelled or reclaimed by the pending-hold expiry.
func (e *Engine) RecordPaymentFailure(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	mu := e.reservationMu.get(reservationID)
	mu.Lock()
	defer mu.Unlock()

	res, err := e.fetch(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := e.store.UpdatePaymentStatus(ctx, reservationID, model.PaymentFailed); err != nil {
		return nil, fmt.Errorf("persist payment status: %w", err)
	}
	res.PaymentStatus = model.PaymentFailed
	log.Printf("engine: reservation %d payment failed", reservationID)
	return res, nil
}

// Refund marks a cancelled, paid reservation's payment refunded.
// Refunding a reservation that is not cancelled, or whose payment was
// never captured, is rejected with ErrInvalidTransition.
func (e *Engine) Refund(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	mu := e.reservationMu.get(reservationID)
	mu.Lock()
	defer mu.Unlock()

	res, err := e.fetch(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.Status != model.ReservationCancelled || res.PaymentStatus != model.PaymentPaid {
		return nil, ErrInvalidTransition
	}
	if err := e.store.UpdatePaymentStatus(ctx, reservationID, model.PaymentRefunded); err != nil {
		return nil, fmt.Errorf("persist payment status: %w", err)
	}
	res.PaymentStatus = model.PaymentRefunded
	log.Printf("engine: reservation %d payment refunded", reservationID)
	return res, nil
}

// Available returns the facility's free spot count for the given
// window.  A negative difference indicates index corruption; it is
// logged and floored to zero rather than propagated.
func (e *Engine) Available(ctx context.Context, facilityID uint64, w Window) (int, error) {
	fac, err := e.facilities.GetFacility(ctx, facilityID)
	if err != nil {
		return 0, fmt.Errorf("facility lookup: %w", err)
	}
	if fac == nil {
		return 0, ErrNotFound
	}
	return e.AvailableFor(fac, w), nil
}

// AvailableNow returns the facility's free spot count at this instant.
func (e *Engine) AvailableNow(ctx context.Context, facilityID uint64) (int, error) {
	now := e.now().UTC()
	return e.Available(ctx, facilityID, Window{Start: now, End: now.Add(time.Nanosecond)})
}

// AvailableFor computes availability for an already loaded facility
// record, flooring at zero.  Listing handlers use this to annotate
// search results without a second facility lookup.
func (e *Engine) AvailableFor(fac *model.Facility, w Window) int {
	overlap := e.index.CountOverlapping(fac.ID, w)
	avail := fac.TotalSpots - overlap
	if avail < 0 {
		log.Printf("engine: ERROR facility %d availability underflow (total=%d overlap=%d)", fac.ID, fac.TotalSpots, overlap)
		avail = 0
	}
	return avail
}

// Rebuild repopulates the interval index from the persisted set of
// pending and confirmed reservations.  Must run once at startup, before
// the engine serves requests.
func (e *Engine) Rebuild(ctx context.Context) (int, error) {
	active, err := e.store.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active reservations: %w", err)
	}
	for _, r := range active {
		if err := e.index.Insert(r.FacilityID, r.ID, NewWindow(r.StartsAt, r.EndsAt)); err != nil {
			return 0, err
		}
	}
	return len(active), nil
}

// StartExpiryWorker reclaims capacity held by stale pending
// reservations: anything still pending and unpaid ttl after creation is
// cancelled.  A ttl of zero or less disables the worker.  The goroutine
// exits when ctx is done.
func (e *Engine) StartExpiryWorker(ctx context.Context, interval, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.expireStalePending(ctx, ttl)
			}
		}
	}()
}

func (e *Engine) expireStalePending(ctx context.Context, ttl time.Duration) {
	cutoff := e.now().UTC().Add(-ttl)
	stale, err := e.store.ListPendingCreatedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("engine: expiry sweep failed: %v", err)
		return
	}
	for _, r := range stale {
		if r.PaymentStatus == model.PaymentPaid {
			// Paid but never confirmed; leave it for the operator.
			continue
		}
		if _, err := e.Cancel(ctx, r.ID); err != nil && !errors.Is(err, ErrInvalidTransition) {
			log.Printf("engine: expire reservation %d: %v", r.ID, err)
		}
	}
}

func (e *Engine) fetch(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := e.store.Fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load reservation: %w", err)
	}
	if res == nil {
		return nil, ErrNotFound
	}
	return res, nil
}

// spotLabel derives the cosmetic spot identifier shown to customers.
// It carries no capacity meaning.
func spotLabel(facilityName string, now time.Time) string {
	return fmt.Sprintf("%s-%03d", facilityName, now.UnixMilli()%1000)
}
