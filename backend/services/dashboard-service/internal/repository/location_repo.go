package repository

import (
	"context"
	"database/sql"
	"fmt"

	"evdash/backend/services/dashboard-service/internal/models"
)

// LocationRepository exports the proposed-location catalog for planning tools.
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository returns repository.
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// EnsureSchema creates the export table if missing.
func (r *LocationRepository) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS proposed_locations (
			name TEXT PRIMARY KEY,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			area_type TEXT NOT NULL,
			priority TEXT NOT NULL,
			daily_traffic INTEGER NOT NULL,
			recommended_chargers INTEGER NOT NULL,
			investment_lakhs NUMERIC(12, 2) NOT NULL,
			roi_months INTEGER NOT NULL,
			landmarks TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure proposed_locations: %w", err)
	}
	return nil
}

// UpsertAll writes every location in a single transaction.
func (r *LocationRepository) UpsertAll(ctx context.Context, locations []models.Location) (err error) {
	const query = `
		INSERT INTO proposed_locations (
			name, latitude, longitude, area_type, priority, daily_traffic,
			recommended_chargers, investment_lakhs, roi_months, landmarks, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (name) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			area_type = EXCLUDED.area_type,
			priority = EXCLUDED.priority,
			daily_traffic = EXCLUDED.daily_traffic,
			recommended_chargers = EXCLUDED.recommended_chargers,
			investment_lakhs = EXCLUDED.investment_lakhs,
			roi_months = EXCLUDED.roi_months,
			landmarks = EXCLUDED.landmarks,
			updated_at = NOW()
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, l := range locations {
		if _, err = stmt.ExecContext(ctx,
			l.Name, l.Latitude, l.Longitude, l.AreaType, l.Priority.String(), l.DailyTraffic,
			l.RecommendedChargers, l.Investment, l.ROIMonths, l.Landmarks,
		); err != nil {
			return fmt.Errorf("upsert %q: %w", l.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

// Count returns the number of exported rows.
func (r *LocationRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM proposed_locations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count proposed_locations: %w", err)
	}
	return n, nil
}
