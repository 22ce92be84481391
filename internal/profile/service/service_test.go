package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	listingdomain "bahayscout/backend/internal/listing/domain"
	listingservice "bahayscout/backend/internal/listing/service"
	"bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/profile/repository"
	userdomain "bahayscout/backend/internal/user/domain"
)

const (
	adminID  = "5b0c9a52-3f1e-4f0a-9d0e-2a6c1b7e0a01"
	listerID = "5b0c9a52-3f1e-4f0a-9d0e-2a6c1b7e0a02"
	buyerID  = "5b0c9a52-3f1e-4f0a-9d0e-2a6c1b7e0a03"
	// well-formed but unknown
	missingID = "5b0c9a52-3f1e-4f0a-9d0e-2a6c1b7e0aff"
)

type memProfileRepo struct {
	mu sync.Mutex
	m  map[string]*domain.Profile
}

func (r *memProfileRepo) get(id string) (*domain.Profile, error) {
	if p, ok := r.m[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (r *memProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *memProfileRepo) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.m {
		if p.UserID == userID {
			return r.get(p.ID)
		}
	}
	return nil, nil
}

func (r *memProfileRepo) UpdateContact(_ context.Context, id, name string, phone *string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.m[id]; ok {
		p.DisplayName, p.Phone = name, phone
	}
	return r.get(id)
}

func (r *memProfileRepo) SetRole(_ context.Context, id string, role domain.Role) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.m[id]; ok {
		p.Role = role
	}
	return r.get(id)
}

func (r *memProfileRepo) SetVerified(_ context.Context, id string, verified bool) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.m[id]; ok {
		p.IsVerified = verified
	}
	return r.get(id)
}

func (r *memProfileRepo) List(_ context.Context, f repository.ListFilter) ([]*domain.UserListItem, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.UserListItem
	for _, p := range r.m {
		if f.Role != "" && p.Role != f.Role {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.DisplayName), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, &domain.UserListItem{Profile: *p})
	}
	return out, len(out), nil
}

type memUsers map[string]*userdomain.User

func (m memUsers) GetByID(_ context.Context, id string) (*userdomain.User, error) { return m[id], nil }

type fakeAgentListings struct{ ownerID string }

func (f *fakeAgentListings) ListPublishedByOwner(_ context.Context, ownerID string, p listingdomain.Page) (*listingservice.SearchResult, error) {
	f.ownerID = ownerID
	return &listingservice.SearchResult{
		Listings:   []*listingdomain.Listing{{ID: "l1", OwnerID: ownerID, Status: listingdomain.StatusPublished}},
		Pagination: listingdomain.NewPagination(p, 1),
	}, nil
}

func newService() (*ProfileService, *memProfileRepo, *fakeAgentListings) {
	repo := &memProfileRepo{m: map[string]*domain.Profile{
		adminID:  {ID: adminID, UserID: "u-admin", Role: domain.RoleAdmin, DisplayName: "Admin"},
		listerID: {ID: listerID, UserID: "u-lister", Role: domain.RoleLister, DisplayName: "Jose Rizal Realty"},
		buyerID:  {ID: buyerID, UserID: "u-buyer", Role: domain.RoleBuyer, DisplayName: "Ana"},
	}}
	listings := &fakeAgentListings{}
	users := memUsers{"u-lister": {ID: "u-lister", Email: "jose@example.ph"}}
	return NewProfileService(repo, users, listings, nil), repo, listings
}

func TestMe(t *testing.T) {
	svc, repo, _ := newService()
	me, err := svc.Me(context.Background(), repo.m[listerID])
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.User.Email != "jose@example.ph" || me.Profile.ID != listerID {
		t.Errorf("me = %+v", me)
	}
	if _, err := svc.Me(context.Background(), repo.m[buyerID]); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v", err)
	}
}

func TestUpdateOwn(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()
	actor, _ := repo.GetByID(ctx, buyerID)

	name, phone := "  Ana Reyes ", "+63 917 555 0100"
	p, err := svc.UpdateOwn(ctx, actor, UpdateInput{DisplayName: &name, Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateOwn: %v", err)
	}
	if p.DisplayName != "Ana Reyes" || p.Phone == nil || *p.Phone != phone {
		t.Errorf("profile = %+v", p)
	}

	empty := ""
	p, err = svc.UpdateOwn(ctx, p, UpdateInput{Phone: &empty})
	if err != nil || p.Phone != nil || p.DisplayName != "Ana Reyes" {
		t.Errorf("clearing phone: %+v, %v", p, err)
	}

	short := "A"
	if _, err := svc.UpdateOwn(ctx, p, UpdateInput{DisplayName: &short}); err == nil {
		t.Error("one-character display name should fail validation")
	}
}

func TestAgent(t *testing.T) {
	svc, _, listings := newService()
	ctx := context.Background()
	page := listingdomain.Page{Page: 1, Limit: 20}

	a, err := svc.Agent(ctx, listerID, page)
	if err != nil {
		t.Fatalf("Agent: %v", err)
	}
	if a.Profile.DisplayName != "Jose Rizal Realty" || len(a.Listings) != 1 || listings.ownerID != listerID {
		t.Errorf("agent = %+v", a)
	}
	if _, err := svc.Agent(ctx, buyerID, page); !errors.Is(err, ErrNotFound) {
		t.Errorf("buyer agent page: got %v", err)
	}
	for _, id := range []string{missingID, "nope", "1 OR 1=1"} {
		if _, err := svc.Agent(ctx, id, page); !errors.Is(err, ErrNotFound) {
			t.Errorf("Agent(%q): got %v, want ErrNotFound", id, err)
		}
	}
}

func TestAdminOperations(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()
	admin, buyer := repo.m[adminID], repo.m[buyerID]

	if _, err := svc.ListUsers(ctx, buyer, repository.ListFilter{}); !errors.Is(err, ErrAdminRequired) {
		t.Errorf("buyer ListUsers: got %v", err)
	}
	list, err := svc.ListUsers(ctx, admin, repository.ListFilter{Role: domain.RoleLister})
	if err != nil || list.Total != 1 {
		t.Errorf("ListUsers = %+v, %v", list, err)
	}

	p, err := svc.SetRole(ctx, admin, buyerID, "Lister")
	if err != nil || p.Role != domain.RoleLister {
		t.Errorf("SetRole = %+v, %v", p, err)
	}
	if _, err := svc.SetRole(ctx, admin, adminID, "buyer"); !errors.Is(err, ErrSelfRoleChange) {
		t.Errorf("self demotion: got %v", err)
	}
	if _, err := svc.SetRole(ctx, admin, buyerID, "owner"); err == nil {
		t.Error("unknown role should fail")
	}
	for _, id := range []string{missingID, "missing"} {
		if _, err := svc.SetRole(ctx, admin, id, "buyer"); !errors.Is(err, ErrNotFound) {
			t.Errorf("SetRole(%q): got %v, want ErrNotFound", id, err)
		}
		if _, err := svc.SetVerified(ctx, admin, id, true); !errors.Is(err, ErrNotFound) {
			t.Errorf("SetVerified(%q): got %v, want ErrNotFound", id, err)
		}
	}

	p, err = svc.SetVerified(ctx, admin, listerID, true)
	if err != nil || !p.IsVerified {
		t.Errorf("SetVerified = %+v, %v", p, err)
	}
	if _, err := svc.SetVerified(ctx, buyer, listerID, false); !errors.Is(err, ErrAdminRequired) {
		t.Errorf("buyer SetVerified: got %v", err)
	}
}
