package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/listing/query"
	locationdomain "bahayscout/backend/internal/location/domain"
	profiledomain "bahayscout/backend/internal/profile/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a listing repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanListing reads query.SelectColumns, optionally followed by distance_km.
func scanListing(row rowScanner, withDistance bool) (*domain.Listing, error) {
	var (
		l                                domain.Listing
		pricePeriod, addressLine, reason sql.NullString
		bedrooms, bathrooms              sql.NullInt32
		floorArea, lotArea, lat, lng     sql.NullFloat64
		locationID                       sql.NullInt64
		publishedAt                      sql.NullTime
		owner                            profiledomain.Summary
		ownerPhone                       sql.NullString
		locID                            sql.NullInt64
		locRegion, locProvince, locCity  sql.NullString
		locBarangay, locPostal           sql.NullString
		photos                           []byte
		distance                         sql.NullFloat64
	)
	dest := []any{
		&l.ID, &l.OwnerID, &l.Status, &l.Category, &l.PropertyType, &l.Title, &l.Description,
		&l.PricePHP, &pricePeriod, &bedrooms, &bathrooms, &floorArea, &lotArea,
		&locationID, &addressLine, &l.Slug, &lat, &lng,
		&reason, &publishedAt, &l.CreatedAt, &l.UpdatedAt,
		&owner.ID, &owner.DisplayName, &owner.IsVerified, &ownerPhone,
		&locID, &locRegion, &locProvince, &locCity, &locBarangay, &locPostal,
		&photos,
	}
	if withDistance {
		dest = append(dest, &distance)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	l.PricePeriod = strPtr(pricePeriod)
	l.AddressLine = strPtr(addressLine)
	l.RejectionReason = strPtr(reason)
	l.Bedrooms = intPtr(bedrooms)
	l.Bathrooms = intPtr(bathrooms)
	l.FloorAreaSqm = floatPtr(floorArea)
	l.LotAreaSqm = floatPtr(lotArea)
	if locationID.Valid {
		l.LocationID = &locationID.Int64
	}
	if lat.Valid && lng.Valid {
		l.Point = &domain.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	if publishedAt.Valid {
		l.PublishedAt = &publishedAt.Time
	}
	owner.Phone = strPtr(ownerPhone)
	l.Owner = &owner
	if locID.Valid {
		l.Location = &locationdomain.Location{
			ID:               locID.Int64,
			Region:           locRegion.String,
			Province:         locProvince.String,
			CityMunicipality: locCity.String,
			Barangay:         strPtr(locBarangay),
			PostalCode:       strPtr(locPostal),
		}
	}
	l.Photos = []domain.Photo{}
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &l.Photos); err != nil {
			return nil, fmt.Errorf("listing photos: %w", err)
		}
	}
	if withDistance {
		l.DistanceKm = floatPtr(distance)
	}
	return &l, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*domain.Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx,
		`SELECT `+query.SelectColumns+` FROM `+query.FromClause+` WHERE `+where, arg), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

// GetByID returns the listing with owner, location and photos, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	return r.getOne(ctx, `l.id = $1`, id)
}

// GetBySlug returns the listing with the given slug, or nil if not found.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	return r.getOne(ctx, `l.slug = $1`, slug)
}

// Create inserts l. ID, Slug, Status and timestamps must be set by the caller.
func (r *PostgresRepository) Create(ctx context.Context, l *domain.Listing) error {
	lat, lng := pointArgs(l.Point)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO listings (
		     id, owner_id, status, category, property_type, title, description, price_php, price_period,
		     bedrooms, bathrooms, floor_area_sqm, lot_area_sqm, location_id, address_line, slug,
		     geom, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		     ST_SetSRID(ST_MakePoint($17::float8, $18::float8), 4326)::geography, $19, $20)`,
		l.ID, l.OwnerID, string(l.Status), string(l.Category), string(l.PropertyType), l.Title, l.Description,
		l.PricePHP, l.PricePeriod, l.Bedrooms, l.Bathrooms, l.FloorAreaSqm, l.LotAreaSqm, l.LocationID,
		l.AddressLine, l.Slug, lng, lat, l.CreatedAt, l.UpdatedAt)
	return err
}

// Update writes the editable columns of l and bumps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, l *domain.Listing) error {
	lat, lng := pointArgs(l.Point)
	_, err := r.db.ExecContext(ctx,
		`UPDATE listings SET
		     category = $2, property_type = $3, title = $4, description = $5, price_php = $6,
		     price_period = $7, bedrooms = $8, bathrooms = $9, floor_area_sqm = $10, lot_area_sqm = $11,
		     location_id = $12, address_line = $13,
		     geom = ST_SetSRID(ST_MakePoint($14::float8, $15::float8), 4326)::geography,
		     updated_at = now()
		  WHERE id = $1`,
		l.ID, string(l.Category), string(l.PropertyType), l.Title, l.Description, l.PricePHP,
		l.PricePeriod, l.Bedrooms, l.Bathrooms, l.FloorAreaSqm, l.LotAreaSqm, l.LocationID, l.AddressLine,
		lng, lat)
	return err
}

// UpdateStatus is a compare-and-set on status. Publishing stamps published_at; rejecting records
// the reason; any other move clears it.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status, reason *string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE listings SET
		     status = $3,
		     published_at = CASE WHEN $3 = 'published' THEN now() ELSE published_at END,
		     rejection_reason = CASE WHEN $3 = 'rejected' THEN $4 ELSE NULL END,
		     updated_at = now()
		  WHERE id = $1 AND status = $2`,
		id, string(from), string(to), reason)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Search runs the public search and its count.
func (r *PostgresRepository) Search(ctx context.Context, f domain.Filters, p domain.Page) ([]*domain.Listing, int, error) {
	return r.page(ctx, query.Search(f, p), f.Near != nil)
}

// ListScoped lists listings for the dashboard and moderation views.
func (r *PostgresRepository) ListScoped(ctx context.Context, scope query.Scope, p domain.Page) ([]*domain.Listing, int, error) {
	return r.page(ctx, query.Scoped(scope, p), false)
}

func (r *PostgresRepository) page(ctx context.Context, q query.Query, withDistance bool) ([]*domain.Listing, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, q.Count.SQL, q.Count.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}
	out := []*domain.Listing{}
	if total == 0 {
		return out, 0, nil
	}
	rows, err := r.db.QueryContext(ctx, q.Data.SQL, q.Data.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanListing(rows, withDistance)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// AddPhoto appends a photo. A zero SortOrder places it after the existing photos.
func (r *PostgresRepository) AddPhoto(ctx context.Context, ph *domain.Photo) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO listing_photos (id, listing_id, storage_path, sort_order)
		 VALUES ($1, $2, $3,
		     CASE WHEN $4::int > 0 THEN $4::int
		          ELSE (SELECT COALESCE(max(sort_order), 0) + 1 FROM listing_photos WHERE listing_id = $2) END)
		 RETURNING sort_order`,
		ph.ID, ph.ListingID, ph.StoragePath, ph.SortOrder,
	).Scan(&ph.SortOrder)
}

// DeletePhoto removes the photo if it belongs to the listing.
func (r *PostgresRepository) DeletePhoto(ctx context.Context, listingID, photoID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM listing_photos WHERE id = $1 AND listing_id = $2`, photoID, listingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func pointArgs(p *domain.Point) (lat, lng sql.NullFloat64) {
	if p == nil {
		return
	}
	return sql.NullFloat64{Float64: p.Lat, Valid: true}, sql.NullFloat64{Float64: p.Lng, Valid: true}
}

func strPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func intPtr(n sql.NullInt32) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int32)
	return &v
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
