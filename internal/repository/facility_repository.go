package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// FacilityRepo encapsulates all database queries related to parking
// facilities. It depends on a sql.DB connection which should be
// configured elsewhere.
type FacilityRepo struct {
	db *sql.DB
}

// NewFacilityRepo returns a new FacilityRepo bound to the given database.
func NewFacilityRepo(db *sql.DB) *FacilityRepo {
	return &FacilityRepo{db: db}
}

const facilityColumns = `id, location_id, name, total_spots, rate_cents_per_hour, status, created_at, updated_at`

func scanFacility(row interface{ Scan(...any) error }, f *model.Facility) error {
	return row.Scan(&f.ID, &f.LocationID, &f.Name, &f.TotalSpots,
		&f.RateCentsPerHour, &f.Status, &f.CreatedAt, &f.UpdatedAt)
}

// Create inserts a new facility. On success the ID field is populated
// and a follow-up SELECT fills the timestamp fields.
func (r *FacilityRepo) Create(ctx context.Context, f *model.Facility) error {
	const qInsert = `INSERT INTO facilities (location_id, name, total_spots, rate_cents_per_hour, status)
	                 VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, f.LocationID, f.Name, f.TotalSpots, f.RateCentsPerHour, f.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)

	const qSelect = `SELECT ` + facilityColumns + ` FROM facilities WHERE id = ?`
	return scanFacility(r.db.QueryRowContext(ctx, qSelect, f.ID), f)
}

// GetByID fetches a facility by its ID. It returns ErrFacilityNotFound
// if no row is found.
func (r *FacilityRepo) GetByID(ctx context.Context, id uint64) (*model.Facility, error) {
	const q = `SELECT ` + facilityColumns + ` FROM facilities WHERE id = ?`
	var f model.Facility
	if err := scanFacility(r.db.QueryRowContext(ctx, q, id), &f); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}
	return &f, nil
}

// GetFacility resolves a facility for admission checks. Unlike GetByID
// it reports an unknown id as (nil, nil), the contract the engine's
// FacilityDirectory expects.
func (r *FacilityRepo) GetFacility(ctx context.Context, id uint64) (*model.Facility, error) {
	f, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrFacilityNotFound) {
		return nil, nil
	}
	return f, err
}

// ListByLocation returns all facilities under a location ordered by id.
func (r *FacilityRepo) ListByLocation(ctx context.Context, locationID uint64) ([]*model.Facility, error) {
	const q = `SELECT ` + facilityColumns + ` FROM facilities WHERE location_id = ? ORDER BY id`
	return r.list(ctx, q, locationID)
}

// ListAll returns every facility ordered by id. Used by admin listings.
func (r *FacilityRepo) ListAll(ctx context.Context) ([]*model.Facility, error) {
	const q = `SELECT ` + facilityColumns + ` FROM facilities ORDER BY id`
	return r.list(ctx, q)
}

func (r *FacilityRepo) list(ctx context.Context, q string, args ...any) ([]*model.Facility, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Facility, 0)
	for rows.Next() {
		f := new(model.Facility)
		if err := scanFacility(rows, f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a facility's mutable fields. Rate changes only affect
// future admissions; amounts already priced on reservations are
// immutable. Returns ErrFacilityNotFound when no row is affected.
func (r *FacilityRepo) Update(ctx context.Context, f *model.Facility) error {
	const q = `UPDATE facilities
	           SET name = ?, total_spots = ?, rate_cents_per_hour = ?, status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, f.Name, f.TotalSpots, f.RateCentsPerHour, f.Status, f.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFacilityNotFound
	}
	return nil
}

// UpdateStatus changes only the operating status, used to take a
// facility in and out of maintenance without touching its other fields.
func (r *FacilityRepo) UpdateStatus(ctx context.Context, id uint64, status model.FacilityStatus) error {
	const q = `UPDATE facilities SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFacilityNotFound
	}
	return nil
}

// Delete removes a facility provided it has no pending or confirmed
// reservations. Historical (cancelled/completed) reservations are kept
// and block nothing. Returns ErrConflict when active reservations
// exist and ErrFacilityNotFound for an unknown id.
func (r *FacilityRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var exists uint64
	if err = tx.QueryRowContext(ctx, `SELECT id FROM facilities WHERE id = ?`, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrFacilityNotFound
		}
		return err
	}
	var active int64
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE facility_id = ? AND status IN ('pending','confirmed')`,
		id).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		err = ErrConflict
		return err
	}
	// Historical reservations stay; only the facility row goes.
	_, err = tx.ExecContext(ctx, `DELETE FROM facilities WHERE id = ?`, id)
	return err
}
