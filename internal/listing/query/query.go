// Package query builds the SQL for listing reads. It is pure: no database access, every value is a
// bound parameter, and the same filters always produce the same statement.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"bahayscout/backend/internal/listing/domain"
)

// Statement is SQL text with positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Query is a page query and the count query with identical filtering.
type Query struct {
	Data  Statement
	Count Statement
}

// Columns selected for each listing row, in scan order (see repository.scanListing).
const (
	ListingColumns = `l.id, l.owner_id, l.status, l.category, l.property_type, l.title, l.description,
       l.price_php, l.price_period, l.bedrooms, l.bathrooms, l.floor_area_sqm, l.lot_area_sqm,
       l.location_id, l.address_line, l.slug, ST_Y(l.geom::geometry), ST_X(l.geom::geometry),
       l.rejection_reason, l.published_at, l.created_at, l.updated_at`
	OwnerColumns    = `p.id, p.display_name, p.is_verified, p.phone`
	LocationColumns = `loc.id, loc.region, loc.province, loc.city_municipality, loc.barangay, loc.postal_code`
	PhotosColumn    = `COALESCE((SELECT json_agg(json_build_object(
           'id', ph.id, 'listingId', ph.listing_id, 'storagePath', ph.storage_path, 'sortOrder', ph.sort_order)
           ORDER BY ph.sort_order, ph.created_at)
         FROM listing_photos ph WHERE ph.listing_id = l.id), '[]'::json)`
	FromClause = `listings l
  JOIN profiles p ON p.id = l.owner_id
  LEFT JOIN locations loc ON loc.id = l.location_id`

	// SelectColumns is every column of a full listing row, without distance.
	SelectColumns = ListingColumns + `,
       ` + OwnerColumns + `,
       ` + LocationColumns + `,
       ` + PhotosColumn
)

// Scope selects which listings a non-search read may see.
type Scope struct {
	OwnerID string        // empty: any owner
	Status  domain.Status // empty: any status
}

type builder struct {
	args  []any
	where []string
	point string
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *builder) cond(format string, v ...any) {
	b.where = append(b.where, fmt.Sprintf(format, v...))
}

// pointExpr returns the geography expression for p, binding its coordinates on first use.
func (b *builder) pointExpr(p *domain.Point) string {
	if b.point == "" {
		b.point = fmt.Sprintf("ST_SetSRID(ST_MakePoint(%s, %s), 4326)::geography", b.arg(p.Lng), b.arg(p.Lat))
	}
	return b.point
}

func (b *builder) whereClause() string {
	if len(b.where) == 0 {
		return ""
	}
	return "\n WHERE " + strings.Join(b.where, "\n   AND ")
}

// Search builds the public search: only published listings, narrowed by f, ordered by f.Sort.
func Search(f domain.Filters, page domain.Page) Query {
	b := &builder{}
	b.cond("l.status = %s", b.arg(string(domain.StatusPublished)))

	if f.OwnerID != "" {
		b.cond("l.owner_id = %s", b.arg(f.OwnerID))
	}
	if f.Category != "" {
		b.cond("l.category = %s", b.arg(string(f.Category)))
	}
	if f.PropertyType != "" {
		b.cond("l.property_type = %s", b.arg(string(f.PropertyType)))
	}
	if f.MinPrice != nil {
		b.cond("l.price_php >= %s", b.arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		b.cond("l.price_php <= %s", b.arg(*f.MaxPrice))
	}
	if f.Bedrooms != nil {
		b.cond("l.bedrooms >= %s", b.arg(*f.Bedrooms))
	}
	if f.Bathrooms != nil {
		b.cond("l.bathrooms >= %s", b.arg(*f.Bathrooms))
	}
	if f.MinFloorArea != nil {
		b.cond("l.floor_area_sqm >= %s", b.arg(*f.MinFloorArea))
	}
	if f.MaxFloorArea != nil {
		b.cond("l.floor_area_sqm <= %s", b.arg(*f.MaxFloorArea))
	}
	if f.MinLotArea != nil {
		b.cond("l.lot_area_sqm >= %s", b.arg(*f.MinLotArea))
	}
	if f.MaxLotArea != nil {
		b.cond("l.lot_area_sqm <= %s", b.arg(*f.MaxLotArea))
	}
	if f.LocationID != nil {
		b.cond("l.location_id = %s", b.arg(*f.LocationID))
	}
	if f.Region != "" {
		b.cond("loc.region = %s", b.arg(f.Region))
	}
	if f.Province != "" {
		b.cond("loc.province = %s", b.arg(f.Province))
	}
	if f.City != "" {
		b.cond("loc.city_municipality = %s", b.arg(f.City))
	}
	if f.Barangay != "" {
		b.cond("loc.barangay = %s", b.arg(f.Barangay))
	}
	if f.Search != "" {
		b.cond("l.search_tsv @@ websearch_to_tsquery('simple', %s)", b.arg(f.Search))
	}
	if bb := f.Bounds; bb != nil {
		b.cond("l.geom::geometry && ST_MakeEnvelope(%s, %s, %s, %s, 4326)",
			b.arg(bb.West), b.arg(bb.South), b.arg(bb.East), b.arg(bb.North))
	}
	if f.HasRadius() {
		b.cond("ST_DWithin(l.geom, %s, %s)", b.pointExpr(f.Near), b.arg(f.RadiusKm*1000))
	}

	where := b.whereClause()
	count := Statement{
		SQL:  "SELECT count(*)\n  FROM " + FromClause + where,
		Args: append([]any(nil), b.args...),
	}

	cols := SelectColumns
	if f.Near != nil {
		cols += ",\n       ST_Distance(l.geom, " + b.pointExpr(f.Near) + ") / 1000 AS distance_km"
	}

	var order string
	switch f.Sort {
	case domain.SortPriceAsc:
		order = "l.price_php ASC, l.created_at DESC"
	case domain.SortPriceDesc:
		order = "l.price_php DESC, l.created_at DESC"
	case domain.SortDistance:
		if f.Near != nil {
			order = "distance_km ASC NULLS LAST, l.created_at DESC"
			break
		}
		fallthrough
	default:
		order = "l.created_at DESC, l.id"
	}

	data := Statement{
		SQL: "SELECT " + cols + "\n  FROM " + FromClause + where +
			"\n ORDER BY " + order +
			"\n LIMIT " + b.arg(page.Limit) + " OFFSET " + b.arg(page.Offset()),
	}
	data.Args = b.args
	return Query{Data: data, Count: count}
}

// Scoped builds the dashboard and moderation lists: any status unless scope narrows it, newest first.
func Scoped(scope Scope, page domain.Page) Query {
	b := &builder{}
	if scope.OwnerID != "" {
		b.cond("l.owner_id = %s", b.arg(scope.OwnerID))
	}
	if scope.Status != "" {
		b.cond("l.status = %s", b.arg(string(scope.Status)))
	}
	where := b.whereClause()
	count := Statement{
		SQL:  "SELECT count(*)\n  FROM " + FromClause + where,
		Args: append([]any(nil), b.args...),
	}
	order := "l.created_at DESC, l.id"
	if scope.Status == domain.StatusPending {
		// Moderation queue is first come, first served.
		order = "l.updated_at ASC, l.id"
	}
	data := Statement{
		SQL: "SELECT " + SelectColumns + "\n  FROM " + FromClause + where +
			"\n ORDER BY " + order +
			"\n LIMIT " + b.arg(page.Limit) + " OFFSET " + b.arg(page.Offset()),
	}
	data.Args = b.args
	return Query{Data: data, Count: count}
}
