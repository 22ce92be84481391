package query

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bahayscout/backend/internal/listing/domain"
)

func ptr[T any](v T) *T { return &v }

var firstPage = domain.Page{Page: 1, Limit: 20}

func TestSearch_DefaultsToPublishedNewest(t *testing.T) {
	q := Search(domain.Filters{Sort: domain.SortNewest}, firstPage)

	if diff := cmp.Diff([]any{"published"}, q.Count.Args); diff != "" {
		t.Errorf("count args (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"published", 20, 0}, q.Data.Args); diff != "" {
		t.Errorf("data args (-want +got):\n%s", diff)
	}
	mustContain(t, q.Data.SQL,
		"WHERE l.status = $1",
		"ORDER BY l.created_at DESC, l.id",
		"LIMIT $2 OFFSET $3",
	)
	mustContain(t, q.Count.SQL, "SELECT count(*)", "WHERE l.status = $1")
	if strings.Contains(q.Count.SQL, "LIMIT") || strings.Contains(q.Count.SQL, "ORDER BY") {
		t.Errorf("count query must not page or sort:\n%s", q.Count.SQL)
	}
}

func TestSearch_AllScalarFilters(t *testing.T) {
	f := domain.Filters{
		Category:     domain.CategoryRent,
		PropertyType: domain.PropertyCondo,
		MinPrice:     ptr(int64(10000)),
		MaxPrice:     ptr(int64(50000)),
		Bedrooms:     ptr(2),
		Bathrooms:    ptr(1),
		MinFloorArea: ptr(30.0),
		MaxFloorArea: ptr(90.0),
		MinLotArea:   ptr(100.0),
		MaxLotArea:   ptr(300.0),
		LocationID:   ptr(int64(4)),
		Region:       "NCR",
		Province:     "Metro Manila",
		City:         "Taguig",
		Barangay:     "Fort Bonifacio",
		Search:       "pet friendly",
		Sort:         domain.SortPriceAsc,
	}
	q := Search(f, domain.Page{Page: 2, Limit: 10})

	wantWhere := []any{
		"published", "rent", "condo", int64(10000), int64(50000), 2, 1, 30.0, 90.0, 100.0, 300.0,
		int64(4), "NCR", "Metro Manila", "Taguig", "Fort Bonifacio", "pet friendly",
	}
	if diff := cmp.Diff(wantWhere, q.Count.Args); diff != "" {
		t.Errorf("count args (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(append(wantWhere, 10, 10), q.Data.Args); diff != "" {
		t.Errorf("data args (-want +got):\n%s", diff)
	}
	mustContain(t, q.Data.SQL,
		"l.category = $2",
		"l.property_type = $3",
		"l.price_php >= $4",
		"l.price_php <= $5",
		"l.bedrooms >= $6",
		"l.bathrooms >= $7",
		"l.floor_area_sqm >= $8",
		"l.floor_area_sqm <= $9",
		"l.lot_area_sqm >= $10",
		"l.lot_area_sqm <= $11",
		"l.location_id = $12",
		"loc.region = $13",
		"loc.province = $14",
		"loc.city_municipality = $15",
		"loc.barangay = $16",
		"l.search_tsv @@ websearch_to_tsquery('simple', $17)",
		"ORDER BY l.price_php ASC",
		"LIMIT $18 OFFSET $19",
	)
}

func TestSearch_ValuesAreNeverInlined(t *testing.T) {
	evil := "'; DROP TABLE listings; --"
	q := Search(domain.Filters{Search: evil, Region: evil, Sort: domain.SortNewest}, firstPage)
	for _, s := range []string{q.Data.SQL, q.Count.SQL} {
		if strings.Contains(s, "DROP TABLE") {
			t.Fatalf("user input leaked into SQL:\n%s", s)
		}
	}
}

func TestSearch_Bounds(t *testing.T) {
	f := domain.Filters{
		Bounds: &domain.Bounds{North: 14.7, South: 14.5, East: 121.1, West: 120.9},
		Sort:   domain.SortNewest,
	}
	q := Search(f, firstPage)
	mustContain(t, q.Count.SQL, "l.geom::geometry && ST_MakeEnvelope($2, $3, $4, $5, 4326)")
	if diff := cmp.Diff([]any{"published", 120.9, 14.5, 121.1, 14.7}, q.Count.Args); diff != "" {
		t.Errorf("args (-want +got):\n%s", diff)
	}
}

func TestSearch_RadiusWithDistanceSort(t *testing.T) {
	f := domain.Filters{
		Near:     &domain.Point{Lat: 14.55, Lng: 121.02},
		RadiusKm: 3,
		Sort:     domain.SortDistance,
	}
	q := Search(f, firstPage)

	point := "ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography"
	mustContain(t, q.Count.SQL, "ST_DWithin(l.geom, "+point+", $4)")
	mustContain(t, q.Data.SQL,
		"ST_Distance(l.geom, "+point+") / 1000 AS distance_km",
		"ORDER BY distance_km ASC NULLS LAST",
		"LIMIT $5 OFFSET $6",
	)
	if diff := cmp.Diff([]any{"published", 121.02, 14.55, 3000.0}, q.Count.Args); diff != "" {
		t.Errorf("count args (-want +got):\n%s", diff)
	}
}

func TestSearch_DistanceWithoutRadiusKeepsCountArgsMinimal(t *testing.T) {
	f := domain.Filters{Near: &domain.Point{Lat: 10.3, Lng: 123.9}, Sort: domain.SortDistance}
	q := Search(f, firstPage)

	// The point is only referenced by the data query; the count query must not bind it.
	if diff := cmp.Diff([]any{"published"}, q.Count.Args); diff != "" {
		t.Errorf("count args (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"published", 123.9, 10.3, 20, 0}, q.Data.Args); diff != "" {
		t.Errorf("data args (-want +got):\n%s", diff)
	}
	if strings.Contains(q.Count.SQL, "ST_") {
		t.Errorf("count query should not reference geometry:\n%s", q.Count.SQL)
	}
}

func TestSearch_DistanceSortWithoutPointFallsBack(t *testing.T) {
	q := Search(domain.Filters{Sort: domain.SortDistance}, firstPage)
	mustContain(t, q.Data.SQL, "ORDER BY l.created_at DESC, l.id")
	if strings.Contains(q.Data.SQL, "distance_km") {
		t.Error("distance column without a point")
	}
}

func TestSearch_OwnerFilter(t *testing.T) {
	q := Search(domain.Filters{OwnerID: "p-1", Sort: domain.SortNewest}, firstPage)
	mustContain(t, q.Count.SQL, "l.status = $1", "l.owner_id = $2")
}

func TestScoped(t *testing.T) {
	q := Scoped(Scope{OwnerID: "p-1"}, firstPage)
	mustContain(t, q.Data.SQL, "WHERE l.owner_id = $1", "ORDER BY l.created_at DESC", "LIMIT $2 OFFSET $3")
	if strings.Contains(q.Data.SQL, "l.status = ") || strings.Contains(q.Count.SQL, "l.status = ") {
		t.Error("owner scope must include every status")
	}

	q = Scoped(Scope{Status: domain.StatusPending}, domain.Page{Page: 3, Limit: 5})
	mustContain(t, q.Data.SQL, "WHERE l.status = $1", "ORDER BY l.updated_at ASC")
	if diff := cmp.Diff([]any{"pending", 5, 10}, q.Data.Args); diff != "" {
		t.Errorf("args (-want +got):\n%s", diff)
	}

	q = Scoped(Scope{}, firstPage)
	if strings.Contains(q.Count.SQL, "WHERE") {
		t.Errorf("empty scope has no WHERE:\n%s", q.Count.SQL)
	}
}

func mustContain(t *testing.T, sql string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(sql, p) {
			t.Errorf("SQL missing %q:\n%s", p, sql)
		}
	}
}
