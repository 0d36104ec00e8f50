// Package storage persists properties, showing times, bookings, and
// search history in Postgres.
package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/use-agent/bookbay/config"
	"github.com/use-agent/bookbay/models"
	"github.com/use-agent/bookbay/parser"
)

const schema = `
CREATE TABLE IF NOT EXISTS properties (
	property_id   TEXT PRIMARY KEY,
	address       TEXT NOT NULL,
	street        TEXT,
	city          TEXT,
	province      TEXT,
	postal_code   TEXT,
	price         TEXT,
	bedrooms      TEXT,
	bathrooms     TEXT,
	square_feet   TEXT,
	property_type TEXT,
	description   TEXT,
	url           TEXT,
	scraped_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS showing_times (
	id          BIGSERIAL PRIMARY KEY,
	property_id TEXT NOT NULL REFERENCES properties(property_id) ON DELETE CASCADE,
	date        TEXT NOT NULL,
	day_name    TEXT,
	time_value  TEXT NOT NULL,
	display     TEXT,
	available   BOOLEAN NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS bookings (
	booking_id    TEXT PRIMARY KEY,
	property_id   TEXT NOT NULL,
	date          TEXT NOT NULL,
	time_value    TEXT NOT NULL,
	contact_name  TEXT NOT NULL,
	contact_email TEXT NOT NULL,
	contact_phone TEXT,
	message       TEXT,
	status        TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS search_history (
	id           BIGSERIAL PRIMARY KEY,
	query        TEXT NOT NULL,
	result_count INTEGER NOT NULL DEFAULT 0,
	success      BOOLEAN NOT NULL DEFAULT false,
	searched_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store is a pgx-backed repository. Safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and ensures the schema exists.
func Open(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, models.NewOpError(models.ErrCodeStorage, "failed to create connection pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, models.NewOpError(models.ErrCodeStorage, "database unreachable", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, models.NewOpError(models.ErrCodeStorage, "schema setup failed", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// SaveProperty upserts one listing. The address is re-parsed so its
// components stay queryable alongside the raw text.
func (s *Store) SaveProperty(ctx context.Context, p *models.PropertyRecord) error {
	addr := parser.ParseAddress(p.Address)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO properties
			(property_id, address, street, city, province, postal_code,
			 price, bedrooms, bathrooms, square_feet, property_type, description, url, scraped_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (property_id) DO UPDATE SET
			address = EXCLUDED.address,
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			province = EXCLUDED.province,
			postal_code = EXCLUDED.postal_code,
			price = EXCLUDED.price,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			square_feet = EXCLUDED.square_feet,
			property_type = EXCLUDED.property_type,
			description = EXCLUDED.description,
			url = EXCLUDED.url,
			scraped_at = EXCLUDED.scraped_at`,
		p.PropertyID, p.Address, addr.Street, addr.City, addr.Province, addr.PostalCode,
		p.Price, p.Bedrooms, p.Bathrooms, p.SquareFeet, p.PropertyType, p.Description,
		p.URL, time.Now())
	if err != nil {
		return models.NewOpError(models.ErrCodeStorage, "failed to save property", err)
	}
	slog.Debug("property saved", "property_id", p.PropertyID)
	return nil
}

// SaveShowingTimes replaces the stored schedule for a property.
func (s *Store) SaveShowingTimes(ctx context.Context, propertyID string, schedule []models.DaySchedule) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.NewOpError(models.ErrCodeStorage, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM showing_times WHERE property_id = $1`, propertyID); err != nil {
		return models.NewOpError(models.ErrCodeStorage, "failed to clear old showing times", err)
	}
	for _, day := range schedule {
		for _, slot := range day.TimeSlots {
			if _, err := tx.Exec(ctx, `
				INSERT INTO showing_times (property_id, date, day_name, time_value, display, available)
				VALUES ($1,$2,$3,$4,$5,$6)`,
				propertyID, day.Date, day.DayName, slot.Time, slot.Display, slot.Available); err != nil {
				return models.NewOpError(models.ErrCodeStorage, "failed to save showing time", err)
			}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return models.NewOpError(models.ErrCodeStorage, "failed to commit showing times", err)
	}
	return nil
}

// SaveBooking upserts one booking attempt; re-saves update the status.
func (s *Store) SaveBooking(ctx context.Context, b *models.BookingRequest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bookings
			(booking_id, property_id, date, time_value,
			 contact_name, contact_email, contact_phone, message, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (booking_id) DO UPDATE SET status = EXCLUDED.status`,
		b.ID, b.PropertyID, b.Date, b.Time,
		b.ContactName, b.ContactEmail, b.ContactPhone, b.Message, b.Status, time.Now())
	if err != nil {
		return models.NewOpError(models.ErrCodeStorage, "failed to save booking", err)
	}
	slog.Debug("booking saved", "booking_id", b.ID, "status", b.Status)
	return nil
}

// SaveSearchHistory records one search, successful or not.
func (s *Store) SaveSearchHistory(ctx context.Context, query string, resultCount int, success bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO search_history (query, result_count, success) VALUES ($1,$2,$3)`,
		query, resultCount, success)
	if err != nil {
		return models.NewOpError(models.ErrCodeStorage, "failed to record search", err)
	}
	return nil
}

// GetProperty loads one property with its showing times.
func (s *Store) GetProperty(ctx context.Context, propertyID string) (*models.PropertyRecord, error) {
	var p models.PropertyRecord
	err := s.pool.QueryRow(ctx, `
		SELECT property_id, address, price, bedrooms, bathrooms,
		       square_feet, property_type, description, url
		FROM properties WHERE property_id = $1`, propertyID).
		Scan(&p.PropertyID, &p.Address, &p.Price, &p.Bedrooms, &p.Bathrooms,
			&p.SquareFeet, &p.PropertyType, &p.Description, &p.URL)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewOpError(models.ErrCodeStorage, "failed to load property", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT time_value, display, available FROM showing_times
		WHERE property_id = $1 ORDER BY date, time_value`, propertyID)
	if err != nil {
		return nil, models.NewOpError(models.ErrCodeStorage, "failed to load showing times", err)
	}
	defer rows.Close()
	for rows.Next() {
		var slot models.TimeSlot
		if err := rows.Scan(&slot.Time, &slot.Display, &slot.Available); err != nil {
			return nil, models.NewOpError(models.ErrCodeStorage, "failed to scan showing time", err)
		}
		p.ShowingTimes = append(p.ShowingTimes, slot)
	}
	return &p, rows.Err()
}

// ListProperties returns stored listings, newest scrape first.
func (s *Store) ListProperties(ctx context.Context) ([]models.PropertyRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT property_id, address, price, bedrooms, bathrooms,
		       square_feet, property_type, url
		FROM properties ORDER BY scraped_at DESC`)
	if err != nil {
		return nil, models.NewOpError(models.ErrCodeStorage, "failed to list properties", err)
	}
	defer rows.Close()

	var out []models.PropertyRecord
	for rows.Next() {
		var p models.PropertyRecord
		if err := rows.Scan(&p.PropertyID, &p.Address, &p.Price, &p.Bedrooms,
			&p.Bathrooms, &p.SquareFeet, &p.PropertyType, &p.URL); err != nil {
			return nil, models.NewOpError(models.ErrCodeStorage, "failed to scan property", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListBookings returns booking attempts, newest first.
func (s *Store) ListBookings(ctx context.Context) ([]models.BookingRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT booking_id, property_id, date, time_value,
		       contact_name, contact_email, contact_phone, message, status
		FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, models.NewOpError(models.ErrCodeStorage, "failed to list bookings", err)
	}
	defer rows.Close()

	var out []models.BookingRequest
	for rows.Next() {
		var b models.BookingRequest
		if err := rows.Scan(&b.ID, &b.PropertyID, &b.Date, &b.Time,
			&b.ContactName, &b.ContactEmail, &b.ContactPhone, &b.Message, &b.Status); err != nil {
			return nil, models.NewOpError(models.ErrCodeStorage, "failed to scan booking", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
