package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bahayscout/backend/internal/location/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a location repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const locationColumns = `id, region, province, city_municipality, barangay, postal_code`

func scanLocation(row interface{ Scan(...any) error }) (*domain.Location, error) {
	var (
		l                  domain.Location
		barangay, postcode sql.NullString
	)
	if err := row.Scan(&l.ID, &l.Region, &l.Province, &l.CityMunicipality, &barangay, &postcode); err != nil {
		return nil, err
	}
	if barangay.Valid {
		l.Barangay = &barangay.String
	}
	if postcode.Valid {
		l.PostalCode = &postcode.String
	}
	return &l, nil
}

// GetByID returns the location, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	l, err := scanLocation(r.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

// List returns locations ordered by region, province, city and barangay.
func (r *PostgresRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Location, error) {
	var (
		where []string
		args  []any
	)
	add := func(col, v string) {
		if v = strings.TrimSpace(v); v != "" {
			args = append(args, v)
			where = append(where, fmt.Sprintf("lower(%s) = lower($%d)", col, len(args)))
		}
	}
	add("region", f.Region)
	add("province", f.Province)
	add("city_municipality", f.City)

	q := `SELECT ` + locationColumns + ` FROM locations`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY region, province, city_municipality, barangay NULLS FIRST`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Upsert inserts l unless a row with the same region/province/city/barangay exists.
func (r *PostgresRepository) Upsert(ctx context.Context, l *domain.Location) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`WITH ins AS (
		     INSERT INTO locations (region, province, city_municipality, barangay, postal_code)
		     VALUES ($1, $2, $3, $4, $5)
		     ON CONFLICT DO NOTHING
		     RETURNING id
		 )
		 SELECT id FROM ins
		 UNION ALL
		 SELECT id FROM locations
		  WHERE region = $1 AND province = $2 AND city_municipality = $3 AND COALESCE(barangay, '') = COALESCE($4, '')
		 LIMIT 1`,
		l.Region, l.Province, l.CityMunicipality, l.Barangay, l.PostalCode,
	).Scan(&id)
	return id, err
}
