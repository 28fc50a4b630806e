package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// FacilitySearchQuery defines filters & pagination for searching
// facilities available for booking.
type FacilitySearchQuery struct {
	City     string
	Name     string
	Page     int
	PageSize int
}

// FacilityRow is one search result: an active facility joined with its
// location. Availability is not computed here; handlers annotate it
// from the capacity engine so the count reflects the in-memory index.
type FacilityRow struct {
	ID               uint64  `json:"id"`
	Name             string  `json:"name"`
	LocationID       uint64  `json:"location_id"`
	LocationName     string  `json:"location_name"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	TotalSpots       int     `json:"total_spots"`
	RateCentsPerHour uint32  `json:"rate_cents_per_hour"`
	RatePerHour      float64 `json:"rate_per_hour"`
	AvailableSpots   int     `json:"available_spots"`
	// EstimatedCostCents is filled by the handler when the search carries
	// a full booking window; zero otherwise.
	EstimatedCostCents uint32 `json:"estimated_cost_cents,omitempty"`
}

// SearchActive returns active facilities matching the query, cheapest
// first, along with the total match count for pagination.
func (r *FacilityRepo) SearchActive(ctx context.Context, q FacilitySearchQuery) ([]FacilityRow, int64, error) {
	where := []string{"f.status = ?"}
	args := []any{model.FacilityActive}

	if q.City != "" {
		where = append(where, "LOWER(l.city) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.City)+"%")
	}
	if q.Name != "" {
		where = append(where, "LOWER(f.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM facilities f
		JOIN locations l ON l.id = f.location_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			f.id,
			f.name,
			l.id   AS location_id,
			l.name AS location_name,
			l.city,
			l.state,
			f.total_spots,
			f.rate_cents_per_hour
		FROM facilities f
		JOIN locations l ON l.id = f.location_id
		WHERE ` + cond + `
		ORDER BY f.rate_cents_per_hour ASC, f.id ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]FacilityRow, 0, limit)
	for rows.Next() {
		var d FacilityRow
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.LocationID,
			&d.LocationName,
			&d.City,
			&d.State,
			&d.TotalSpots,
			&d.RateCentsPerHour,
		); err != nil {
			return nil, 0, err
		}
		d.RatePerHour = float64(d.RateCentsPerHour) / 100.0
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
