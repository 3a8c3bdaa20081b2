package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"zameencrawler/internal/domain"
)

// PostgresStore is the append-only listing sink. Uniqueness is already
// guaranteed upstream by the ledger, so conflicting inserts are simply
// ignored rather than updated.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// SaveListing appends one emitted record.
func (s *PostgresStore) SaveListing(ctx context.Context, l *domain.Listing) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO listings (
		   identity_key, external_id, url, source, title, price, currency,
		   bedrooms, bathrooms, area, area_unit, location, city,
		   property_type, purpose, description
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		 ON CONFLICT (identity_key) DO NOTHING`,
		l.IdentityKey(), l.ExternalID, l.URL, l.Source, l.Title, l.Price, l.Currency,
		l.Bedrooms, l.Bathrooms, l.Area, l.AreaUnit, l.Location, l.City,
		l.PropertyType, l.Purpose, l.Description,
	)
	if err != nil {
		return fmt.Errorf("save listing: %w", err)
	}
	return nil
}

// CountListings reports how many records the sink holds, for the API's
// status endpoint.
func (s *PostgresStore) CountListings(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM listings`).Scan(&n)
	return n, err
}
