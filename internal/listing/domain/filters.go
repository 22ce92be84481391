package domain

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Sort orders search results.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortDistance  Sort = "distance"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxRadiusKm     = 200
)

// Bounds is a map viewport. All four edges are required.
type Bounds struct {
	North, South, East, West float64
}

// Filters are the search criteria accepted by GET /api/listings. Unset fields do not filter.
// Status is not a filter: search only ever returns published listings.
type Filters struct {
	Search       string
	Category     Category
	PropertyType PropertyType
	MinPrice     *int64
	MaxPrice     *int64
	Bedrooms     *int // minimum
	Bathrooms    *int // minimum
	MinFloorArea *float64
	MaxFloorArea *float64
	MinLotArea   *float64
	MaxLotArea   *float64
	LocationID   *int64
	Region       string
	Province     string
	City         string
	Barangay     string
	// OwnerID restricts results to one lister; used by the public agent page.
	OwnerID  string
	Bounds   *Bounds
	Near     *Point
	RadiusKm float64
	Sort     Sort
}

// HasRadius reports whether a radius search is requested.
func (f Filters) HasRadius() bool { return f.Near != nil && f.RadiusKm > 0 }

// Page is 1-based pagination.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// Pagination is the metadata returned alongside a page of results.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes TotalPages for total rows.
func NewPagination(p Page, total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// ParsePage reads page and limit. Missing or invalid values fall back to page 1 and
// DefaultPageSize; limit is capped at MaxPageSize.
func ParsePage(q url.Values) Page {
	p := Page{Page: 1, Limit: DefaultPageSize}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		p.Limit = min(n, MaxPageSize)
	}
	return p
}

// ParseFilters reads search criteria from a query string. Values that do not parse, or enums
// outside their set, are ignored rather than rejected.
func ParseFilters(q url.Values) Filters {
	f := Filters{
		Search:   strings.TrimSpace(q.Get("search")),
		Region:   strings.TrimSpace(q.Get("region")),
		Province: strings.TrimSpace(q.Get("province")),
		City:     strings.TrimSpace(q.Get("city")),
		Barangay: strings.TrimSpace(q.Get("barangay")),
		Sort:     SortNewest,
	}
	if c := Category(q.Get("category")); c.Valid() {
		f.Category = c
	}
	if t := PropertyType(q.Get("propertyType")); t.Valid() {
		f.PropertyType = t
	}
	f.MinPrice = parseInt64(q.Get("minPrice"))
	f.MaxPrice = parseInt64(q.Get("maxPrice"))
	f.Bedrooms = parseInt(q.Get("bedrooms"))
	f.Bathrooms = parseInt(q.Get("bathrooms"))
	f.MinFloorArea = parseFloat(q.Get("minFloorArea"))
	f.MaxFloorArea = parseFloat(q.Get("maxFloorArea"))
	f.MinLotArea = parseFloat(q.Get("minLotArea"))
	f.MaxLotArea = parseFloat(q.Get("maxLotArea"))
	if id := parseInt64(q.Get("locationId")); id != nil && *id > 0 {
		f.LocationID = id
	}

	n, s, e, w := parseFloat(q.Get("north")), parseFloat(q.Get("south")), parseFloat(q.Get("east")), parseFloat(q.Get("west"))
	if n != nil && s != nil && e != nil && w != nil && validLat(*n) && validLat(*s) && *n >= *s && validLng(*e) && validLng(*w) {
		f.Bounds = &Bounds{North: *n, South: *s, East: *e, West: *w}
	}

	lat, lng := parseFloat(q.Get("lat")), parseFloat(q.Get("lng"))
	if lat != nil && lng != nil && validLat(*lat) && validLng(*lng) {
		f.Near = &Point{Lat: *lat, Lng: *lng}
		if r := parseFloat(q.Get("radiusKm")); r != nil && *r > 0 {
			f.RadiusKm = math.Min(*r, MaxRadiusKm)
		}
	}

	switch s := Sort(q.Get("sort")); s {
	case SortPriceAsc, SortPriceDesc:
		f.Sort = s
	case SortDistance:
		if f.Near != nil {
			f.Sort = s
		}
	}
	return f
}

func validLat(v float64) bool { return v >= -90 && v <= 90 }
func validLng(v float64) bool { return v >= -180 && v <= 180 }

func parseInt64(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func parseInt(s string) *int {
	n := parseInt64(s)
	if n == nil || *n > math.MaxInt32 || *n < math.MinInt32 {
		return nil
	}
	v := int(*n)
	return &v
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
