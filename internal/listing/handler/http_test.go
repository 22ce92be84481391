package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/listing/service"
	profiledomain "bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/server/middleware"
)

type memProfiles map[string]*profiledomain.Profile

func (m memProfiles) GetByUserID(_ context.Context, userID string) (*profiledomain.Profile, error) {
	return m[userID], nil
}

// fakeService records the arguments of the last call and returns canned results.
type fakeService struct {
	err     error
	listing *domain.Listing

	filters domain.Filters
	page    domain.Page
	actor   *profiledomain.Profile
	id      string
	reason  *string
	status  domain.Status
	create  domain.CreateInput
}

func (f *fakeService) result() (*domain.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listing, nil
}

func (f *fakeService) Search(_ context.Context, fl domain.Filters, p domain.Page) (*service.SearchResult, error) {
	f.filters, f.page = fl, p
	return &service.SearchResult{Listings: []*domain.Listing{f.listing}, Pagination: domain.NewPagination(p, 1)}, f.err
}

func (f *fakeService) Get(_ context.Context, actor *profiledomain.Profile, id string) (*domain.Listing, error) {
	f.actor, f.id = actor, id
	return f.result()
}

func (f *fakeService) GetBySlug(_ context.Context, actor *profiledomain.Profile, slug string) (*domain.Listing, error) {
	f.actor, f.id = actor, slug
	return f.result()
}

func (f *fakeService) Create(_ context.Context, actor *profiledomain.Profile, in domain.CreateInput) (*domain.Listing, error) {
	f.actor, f.create = actor, in
	return f.result()
}

func (f *fakeService) Update(_ context.Context, actor *profiledomain.Profile, id string, _ domain.UpdateInput) (*domain.Listing, error) {
	f.actor, f.id = actor, id
	return f.result()
}

func (f *fakeService) Submit(_ context.Context, actor *profiledomain.Profile, id string) (*domain.Listing, error) {
	f.actor, f.id = actor, id
	return f.result()
}

func (f *fakeService) Approve(_ context.Context, actor *profiledomain.Profile, id string) (*domain.Listing, error) {
	f.actor, f.id = actor, id
	return f.result()
}

func (f *fakeService) Reject(_ context.Context, actor *profiledomain.Profile, id string, reason *string) (*domain.Listing, error) {
	f.actor, f.id, f.reason = actor, id, reason
	return f.result()
}

func (f *fakeService) AddPhoto(_ context.Context, actor *profiledomain.Profile, id string, in domain.PhotoInput) (*domain.Photo, error) {
	f.actor, f.id = actor, id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Photo{ID: "ph1", ListingID: id, StoragePath: in.StoragePath, SortOrder: 1}, nil
}

func (f *fakeService) DeletePhoto(_ context.Context, actor *profiledomain.Profile, id, _ string) error {
	f.actor, f.id = actor, id
	return f.err
}

func (f *fakeService) ListMine(_ context.Context, actor *profiledomain.Profile, status domain.Status, p domain.Page) (*service.SearchResult, error) {
	f.actor, f.status, f.page = actor, status, p
	return &service.SearchResult{Listings: []*domain.Listing{}, Pagination: domain.NewPagination(p, 0)}, f.err
}

func (f *fakeService) ListForModeration(_ context.Context, actor *profiledomain.Profile, status domain.Status, p domain.Page) (*service.SearchResult, error) {
	f.actor, f.status, f.page = actor, status, p
	return &service.SearchResult{Listings: []*domain.Listing{}, Pagination: domain.NewPagination(p, 0)}, f.err
}

var profiles = memProfiles{
	"u-lister": {ID: "p-lister", UserID: "u-lister", Role: profiledomain.RoleLister},
	"u-buyer":  {ID: "p-buyer", UserID: "u-buyer", Role: profiledomain.RoleBuyer},
	"u-admin":  {ID: "p-admin", UserID: "u-admin", Role: profiledomain.RoleAdmin},
}

func newRouter(svc *fakeService) *mux.Router {
	r := mux.NewRouter()
	NewHandler(svc, profiles, nil).Register(r)
	return r
}

func do(r http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		req = req.WithContext(middleware.WithIdentity(req.Context(), userID, "s1"))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestSearch_ParsesQuery(t *testing.T) {
	svc := &fakeService{listing: &domain.Listing{ID: "l1", Status: domain.StatusPublished}}
	rec := do(newRouter(svc), http.MethodGet, "/api/listings?category=rent&minPrice=10000&city=Makati&page=2&limit=500&sort=bogus", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.CategoryRent, svc.filters.Category)
	require.NotNil(t, svc.filters.MinPrice)
	assert.Equal(t, int64(10000), *svc.filters.MinPrice)
	assert.Equal(t, "Makati", svc.filters.City)
	assert.Equal(t, domain.SortNewest, svc.filters.Sort)
	assert.Equal(t, domain.Page{Page: 2, Limit: domain.MaxPageSize}, svc.page)

	var body struct {
		Listings   []domain.Listing  `json:"listings"`
		Pagination domain.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Listings, 1)
	assert.Equal(t, 1, body.Pagination.Total)
}

func TestGet(t *testing.T) {
	svc := &fakeService{listing: &domain.Listing{ID: "l1", Slug: "nice-condo-abc123"}}
	r := newRouter(svc)

	rec := do(r, http.MethodGet, "/api/listings/l1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.actor)
	assert.Contains(t, rec.Body.String(), `"id":"l1"`)

	rec = do(r, http.MethodGet, "/api/listings/slug/nice-condo-abc123", "u-lister", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nice-condo-abc123", svc.id)
	require.NotNil(t, svc.actor)
	assert.Equal(t, "p-lister", svc.actor.ID)

	svc.err = service.ErrNotFound
	rec = do(r, http.MethodGet, "/api/listings/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Listing not found", errorOf(t, rec))
}

func TestCreate(t *testing.T) {
	svc := &fakeService{listing: &domain.Listing{ID: "l1", Status: domain.StatusDraft}}
	r := newRouter(svc)
	body := `{"category":"sale","propertyType":"condo","title":"Two bedroom condo","pricePhp":5500000,"locationId":3}`

	rec := do(r, http.MethodPost, "/api/listings", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", errorOf(t, rec))

	rec = do(r, http.MethodPost, "/api/listings", "u-lister", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `"draft"`, mustField(t, rec, "listing", "status"))
	assert.Equal(t, int64(5500000), svc.create.PricePHP)

	svc.err = service.ErrListerRequired
	rec = do(r, http.MethodPost, "/api/listings", "u-buyer", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden: Lister role required", errorOf(t, rec))

	rec = do(r, http.MethodPost, "/api/listings", "u-no-profile", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Profile not found", errorOf(t, rec))

	rec = do(r, http.MethodPost, "/api/listings", "u-lister", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransitions(t *testing.T) {
	svc := &fakeService{listing: &domain.Listing{ID: "l1", Status: domain.StatusPending}}
	r := newRouter(svc)

	rec := do(r, http.MethodPost, "/api/listings/l1/submit", "u-lister", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "l1", svc.id)

	rec = do(r, http.MethodPost, "/api/admin/listings/l1/approve", "u-lister", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden: Admin role required", errorOf(t, rec))

	rec = do(r, http.MethodPost, "/api/admin/listings/l1/reject", "u-admin", `{"reason":"Blurry photos"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.reason)
	assert.Equal(t, "Blurry photos", *svc.reason)

	svc.reason = nil
	rec = do(r, http.MethodPost, "/api/admin/listings/l1/reject", "u-admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.reason)

	// chunked request with no body
	req := httptest.NewRequest(http.MethodPost, "/api/admin/listings/l1/reject", strings.NewReader(""))
	req.ContentLength = -1
	req = req.WithContext(middleware.WithIdentity(req.Context(), "u-admin", "s1"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, svc.reason)

	svc.err = &domain.TransitionError{Action: domain.ActionApprove, From: domain.StatusDraft}
	rec = do(r, http.MethodPost, "/api/admin/listings/l1/approve", "u-admin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot approve listing with status: draft", errorOf(t, rec))

	svc.err = service.ErrForbidden
	rec = do(r, http.MethodPost, "/api/listings/l1/submit", "u-admin", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden", errorOf(t, rec))
}

func TestPhotos(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	rec := do(r, http.MethodPost, "/api/listings/l1/photos", "u-lister", `{"storagePath":"listings/l1/a.jpg"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `"listings/l1/a.jpg"`, mustField(t, rec, "photo", "storagePath"))

	rec = do(r, http.MethodDelete, "/api/listings/l1/photos/ph1", "u-lister", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	svc.err = service.ErrPhotoNotFound
	rec = do(r, http.MethodDelete, "/api/listings/l1/photos/ph9", "u-lister", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Photo not found", errorOf(t, rec))
}

func TestDashboardAndModerationLists(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	rec := do(r, http.MethodGet, "/api/dashboard/listings?status=rejected", "u-lister", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusRejected, svc.status)
	assert.Equal(t, "p-lister", svc.actor.ID)

	rec = do(r, http.MethodGet, "/api/dashboard/listings?status=archived", "u-lister", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet, "/api/admin/listings", "u-buyer", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(r, http.MethodGet, "/api/admin/listings?page=3", "u-admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Status(""), svc.status)
	assert.Equal(t, 3, svc.page.Page)
}

// mustField returns the raw JSON of body[outer][inner].
func mustField(t *testing.T, rec *httptest.ResponseRecorder, outer, inner string) string {
	t.Helper()
	var body map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	raw, ok := body[outer][inner]
	require.True(t, ok, "missing %s.%s in %s", outer, inner, rec.Body.String())
	return string(raw)
}
