// Package mysql mirrors the daily statistics into MySQL so hotels can be
// queried across run dates. The CSV tables remain the canonical output.
package mysql

import (
	"context"
	"database/sql"

	"tvilstat/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// EnsureSchema creates the statistics table when missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createStatisticsSQL)
	return err
}

// SaveStatistics upserts one row per (hotel, date). Rerunning a day replaces
// that day's rows, matching the CSV overwrite semantics.
func (r *Repo) SaveStatistics(ctx context.Context, date string, stats []domain.DailyStatistic) error {
	for _, st := range stats {
		var minPrice any
		if st.MinPrice != nil {
			minPrice = *st.MinPrice
		}
		if _, err := r.db.ExecContext(ctx, upsertStatisticSQL,
			st.HotelID,
			date,
			st.Name,
			st.RoomsTotal,
			st.FreeRooms,
			st.MaxCapacity,
			st.Percent,
			minPrice,
		); err != nil {
			return err
		}
	}
	return nil
}

// ListByDate returns the mirrored rows for one run date, ordered by hotel id.
func (r *Repo) ListByDate(ctx context.Context, date string) ([]domain.DailyStatistic, error) {
	rows, err := r.db.QueryContext(ctx, listStatisticsSQL, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DailyStatistic
	for rows.Next() {
		st := domain.DailyStatistic{Date: date}
		var minPrice sql.NullFloat64
		if err := rows.Scan(
			&st.HotelID,
			&st.Name,
			&st.RoomsTotal,
			&st.FreeRooms,
			&st.MaxCapacity,
			&st.Percent,
			&minPrice,
		); err != nil {
			return nil, err
		}
		if minPrice.Valid {
			p := minPrice.Float64
			st.MinPrice = &p
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
