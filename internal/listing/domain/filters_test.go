package domain

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Filters
	}{
		{
			name:  "empty",
			query: "",
			want:  Filters{Sort: SortNewest},
		},
		{
			name:  "basic",
			query: "search=condo&category=rent&minPrice=1000000&maxPrice=5000000&bedrooms=2",
			want: Filters{
				Search: "condo", Category: CategoryRent,
				MinPrice: ptr(int64(1000000)), MaxPrice: ptr(int64(5000000)), Bedrooms: ptr(2),
				Sort: SortNewest,
			},
		},
		{
			name:  "location",
			query: "region=NCR&province=Metro+Manila&city=Makati&barangay=Poblacion&locationId=7",
			want: Filters{
				Region: "NCR", Province: "Metro Manila", City: "Makati", Barangay: "Poblacion",
				LocationID: ptr(int64(7)), Sort: SortNewest,
			},
		},
		{
			name:  "property type and areas",
			query: "propertyType=condo&minFloorArea=50&maxFloorArea=100&minLotArea=100&maxLotArea=500.5",
			want: Filters{
				PropertyType: PropertyCondo,
				MinFloorArea: ptr(50.0), MaxFloorArea: ptr(100.0), MinLotArea: ptr(100.0), MaxLotArea: ptr(500.5),
				Sort: SortNewest,
			},
		},
		{
			name:  "invalid values ignored",
			query: "category=lease&propertyType=castle&minPrice=cheap&bedrooms=2.5&locationId=-3&minFloorArea=NaN",
			want:  Filters{Sort: SortNewest},
		},
		{
			name:  "bounds",
			query: "north=14.7&south=14.5&east=121.1&west=120.9",
			want:  Filters{Bounds: &Bounds{North: 14.7, South: 14.5, East: 121.1, West: 120.9}, Sort: SortNewest},
		},
		{
			name:  "incomplete bounds",
			query: "north=14.7&south=14.5&east=121.1",
			want:  Filters{Sort: SortNewest},
		},
		{
			name:  "inverted bounds",
			query: "north=14.5&south=14.7&east=121.1&west=120.9",
			want:  Filters{Sort: SortNewest},
		},
		{
			name:  "radius and distance sort",
			query: "lat=14.55&lng=121.02&radiusKm=5&sort=distance",
			want:  Filters{Near: &Point{Lat: 14.55, Lng: 121.02}, RadiusKm: 5, Sort: SortDistance},
		},
		{
			name:  "radius capped",
			query: "lat=14.55&lng=121.02&radiusKm=9000",
			want:  Filters{Near: &Point{Lat: 14.55, Lng: 121.02}, RadiusKm: MaxRadiusKm, Sort: SortNewest},
		},
		{
			name:  "distance sort without point falls back",
			query: "sort=distance",
			want:  Filters{Sort: SortNewest},
		},
		{
			name:  "price sort",
			query: "sort=price_desc",
			want:  Filters{Sort: SortPriceDesc},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, ParseFilters(q)); diff != "" {
				t.Errorf("ParseFilters mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  Page
	}{
		{"", Page{Page: 1, Limit: 20}},
		{"page=3&limit=10", Page{Page: 3, Limit: 10}},
		{"page=0&limit=-5", Page{Page: 1, Limit: 20}},
		{"limit=1000", Page{Page: 1, Limit: MaxPageSize}},
		{"page=x", Page{Page: 1, Limit: 20}},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		if got := ParsePage(q); got != tt.want {
			t.Errorf("ParsePage(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
	if off := (Page{Page: 3, Limit: 20}).Offset(); off != 40 {
		t.Errorf("Offset = %d", off)
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
	}
	for _, tt := range tests {
		got := NewPagination(Page{Page: 1, Limit: tt.limit}, tt.total)
		if got.TotalPages != tt.want || got.Total != tt.total {
			t.Errorf("NewPagination(total=%d) = %+v", tt.total, got)
		}
	}
}
