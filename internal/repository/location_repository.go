package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// LocationRepo encapsulates all database queries related to locations.
// It depends on a sql.DB connection which should be configured
// elsewhere.
type LocationRepo struct {
	db *sql.DB
}

// NewLocationRepo constructs a LocationRepo with the provided DB
// handle. This function allows dependency injection of the database in
// tests and at startup.
func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

const locationColumns = `id, name, street, city, state, zip_code, country, latitude, longitude, created_at, updated_at`

func scanLocation(row interface{ Scan(...any) error }, l *model.Location) error {
	return row.Scan(&l.ID, &l.Name, &l.Street, &l.City, &l.State, &l.ZipCode,
		&l.Country, &l.Latitude, &l.Longitude, &l.CreatedAt, &l.UpdatedAt)
}

// Create inserts a new location. On success the ID field is populated
// with the auto-generated value and a follow-up SELECT fills the
// timestamp fields so callers receive a fully populated record.
func (r *LocationRepo) Create(ctx context.Context, l *model.Location) error {
	const qInsert = `INSERT INTO locations (name, street, city, state, zip_code, country, latitude, longitude)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, l.Name, l.Street, l.City, l.State, l.ZipCode, l.Country, l.Latitude, l.Longitude)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)

	const qSelect = `SELECT ` + locationColumns + ` FROM locations WHERE id = ?`
	return scanLocation(r.db.QueryRowContext(ctx, qSelect, l.ID), l)
}

// GetByID fetches a location by its ID. It returns ErrLocationNotFound
// if no row is found.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (*model.Location, error) {
	const q = `SELECT ` + locationColumns + ` FROM locations WHERE id = ?`
	var l model.Location
	if err := scanLocation(r.db.QueryRowContext(ctx, q, id), &l); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return &l, nil
}

// ListAll returns all locations ordered by id.
func (r *LocationRepo) ListAll(ctx context.Context) ([]*model.Location, error) {
	const q = `SELECT ` + locationColumns + ` FROM locations ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Location, 0)
	for rows.Next() {
		l := new(model.Location)
		if err := scanLocation(rows, l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a location's mutable fields. It returns
// ErrLocationNotFound when no row is affected.
func (r *LocationRepo) Update(ctx context.Context, l *model.Location) error {
	const q = `UPDATE locations
	           SET name = ?, street = ?, city = ?, state = ?, zip_code = ?, country = ?,
	               latitude = ?, longitude = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, l.Name, l.Street, l.City, l.State, l.ZipCode, l.Country, l.Latitude, l.Longitude, l.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLocationNotFound
	}
	return nil
}

// Delete removes a location provided no facilities reference it.
// Deleting a location that still has facilities returns ErrConflict;
// an unknown id returns ErrLocationNotFound. The check and the delete
// run in one transaction.
func (r *LocationRepo) Delete(ctx context.Context, id uint64) error {
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
	if err = tx.QueryRowContext(ctx, `SELECT id FROM locations WHERE id = ?`, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrLocationNotFound
		}
		return err
	}
	var facilities int64
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM facilities WHERE location_id = ?`, id).Scan(&facilities); err != nil {
		return err
	}
	if facilities > 0 {
		err = ErrConflict
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	return err
}
