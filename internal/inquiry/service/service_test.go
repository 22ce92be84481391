package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"bahayscout/backend/internal/inquiry/domain"
	"bahayscout/backend/internal/inquiry/repository"
	listingdomain "bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/notify"
	"bahayscout/backend/internal/policy/engine"
	profiledomain "bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/realtime"
	userdomain "bahayscout/backend/internal/user/domain"
)

const (
	publishedID = "7d1f8a52-3c5e-4b8e-9d0a-1f2e3d4c5b6a"
	draftID     = "0b9c8d7e-6f5a-4e3d-8c2b-1a0f9e8d7c6b"
)

type memInquiryRepo struct {
	mu sync.Mutex
	m  map[string]*domain.Inquiry
	// listingOwner maps listing id to owner profile id for ListForOwner.
	listingOwner map[string]string
}

func (r *memInquiryRepo) Create(_ context.Context, i *domain.Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *i
	r.m[i.ID] = &c
	return nil
}

func (r *memInquiryRepo) GetByID(_ context.Context, id string) (*domain.Inquiry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New("invalid input syntax for type uuid")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.m[id]; ok {
		c := *i
		return &c, nil
	}
	return nil, nil
}

func (r *memInquiryRepo) ListForOwner(_ context.Context, f repository.OwnerFilter) ([]*domain.Inquiry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Inquiry
	for _, i := range r.m {
		if r.listingOwner[i.ListingID] == f.OwnerID && (f.Status == "" || i.Status == f.Status) {
			c := *i
			out = append(out, &c)
		}
	}
	return out, len(out), nil
}

func (r *memInquiryRepo) UpdateStatus(_ context.Context, id string, status domain.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.m[id]
	if ok {
		i.Status = status
	}
	return ok, nil
}

type memListings map[string]*listingdomain.Listing

func (m memListings) GetByID(_ context.Context, id string) (*listingdomain.Listing, error) {
	return m[id], nil
}

type memProfiles map[string]*profiledomain.Profile

func (m memProfiles) GetByID(_ context.Context, id string) (*profiledomain.Profile, error) {
	return m[id], nil
}

type memUsers map[string]*userdomain.User

func (m memUsers) GetByID(_ context.Context, id string) (*userdomain.User, error) { return m[id], nil }

type sentInquiry struct {
	ownerEmail string
	data       notify.InquiryData
}

type fakeNotifier struct{ sent []sentInquiry }

func (f *fakeNotifier) Inquiry(_ context.Context, ownerEmail string, d notify.InquiryData) {
	f.sent = append(f.sent, sentInquiry{ownerEmail, d})
}

func (f *fakeNotifier) ListingURL(slug string) string { return "https://bahayscout.ph/l/" + slug }

type fakePublisher struct {
	mu     sync.Mutex
	events map[string][]realtime.Event
}

func (f *fakePublisher) Publish(profileID string, ev realtime.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[profileID] = append(f.events[profileID], ev)
}

var (
	owner = &profiledomain.Profile{ID: "p-owner", UserID: "u-owner", Role: profiledomain.RoleLister}
	buyer = &profiledomain.Profile{ID: "p-buyer", UserID: "u-buyer", Role: profiledomain.RoleBuyer}
	admin = &profiledomain.Profile{ID: "p-admin", UserID: "u-admin", Role: profiledomain.RoleAdmin}
)

type fixture struct {
	svc      *InquiryService
	repo     *memInquiryRepo
	notifier *fakeNotifier
	pub      *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	policy, err := engine.NewOPAEvaluator(context.Background(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	listings := memListings{
		publishedID: {ID: publishedID, OwnerID: owner.ID, Status: listingdomain.StatusPublished, Title: "Bungalow in Tagaytay", Slug: "bungalow-in-tagaytay-x1"},
		draftID:     {ID: draftID, OwnerID: owner.ID, Status: listingdomain.StatusDraft, Title: "Draft", Slug: "draft-x2"},
	}
	f := &fixture{
		repo: &memInquiryRepo{
			m:            make(map[string]*domain.Inquiry),
			listingOwner: map[string]string{publishedID: owner.ID, draftID: owner.ID},
		},
		notifier: &fakeNotifier{},
		pub:      &fakePublisher{events: make(map[string][]realtime.Event)},
	}
	f.svc = NewInquiryService(f.repo, listings, policy, Deps{
		Profiles: memProfiles{owner.ID: owner},
		Users:    memUsers{"u-owner": {ID: "u-owner", Email: "owner@example.ph"}},
		Notifier: f.notifier,
		Realtime: f.pub,
	}, nil)
	return f
}

func validInput() domain.CreateInput {
	phone := " 0917 555 0100 "
	return domain.CreateInput{
		ListingID: publishedID,
		Name:      " Juan dela Cruz ",
		Email:     "juan@example.ph",
		Phone:     &phone,
		Message:   "Is the unit still available for viewing this weekend?",
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	inq, err := f.svc.Create(context.Background(), buyer, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inq.Status != domain.StatusNew || inq.Name != "Juan dela Cruz" || *inq.Phone != "0917 555 0100" {
		t.Errorf("inquiry = %+v", inq)
	}
	if inq.FromUserID == nil || *inq.FromUserID != buyer.ID {
		t.Errorf("from = %v, want buyer profile", inq.FromUserID)
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("notifications = %d", len(f.notifier.sent))
	}
	sent := f.notifier.sent[0]
	if sent.ownerEmail != "owner@example.ph" || sent.data.ListingURL != "https://bahayscout.ph/l/bungalow-in-tagaytay-x1" {
		t.Errorf("notification = %+v", sent)
	}
	if evs := f.pub.events[owner.ID]; len(evs) != 1 || evs[0].Type != realtime.EventInquiryCreated {
		t.Errorf("realtime = %+v", f.pub.events)
	}
}

func TestCreate_Anonymous(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.Phone = nil
	inq, err := f.svc.Create(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inq.FromUserID != nil {
		t.Error("anonymous inquiry should have no sender profile")
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.CreateInput)
		want   error
	}{
		{"missing message", func(in *domain.CreateInput) { in.Message = "  " }, ErrMissingFields},
		{"missing listing", func(in *domain.CreateInput) { in.ListingID = "" }, ErrMissingFields},
		{"draft listing", func(in *domain.CreateInput) { in.ListingID = draftID }, ErrListingNotFound},
		{"unknown listing", func(in *domain.CreateInput) { in.ListingID = "11111111-2222-4333-8444-555555555555" }, ErrListingNotFound},
		{"malformed listing id", func(in *domain.CreateInput) { in.ListingID = "abc" }, ErrListingNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validInput()
			tt.mutate(&in)
			if _, err := f.svc.Create(context.Background(), nil, in); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if len(f.notifier.sent) != 0 {
				t.Error("no email on failure")
			}
		})
	}

	f := newFixture(t)
	in := validInput()
	in.Email = "not-an-email"
	if _, err := f.svc.Create(context.Background(), nil, in); err == nil {
		t.Error("invalid email should fail validation")
	}
}

func TestListAndUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inq, err := f.svc.Create(ctx, nil, validInput())
	if err != nil {
		t.Fatal(err)
	}
	page := listingdomain.Page{Page: 1, Limit: 20}

	list, err := f.svc.ListForOwner(ctx, owner, "", page)
	if err != nil || len(list.Inquiries) != 1 || list.Pagination.Total != 1 {
		t.Fatalf("ListForOwner = %+v, %v", list, err)
	}
	if list, _ := f.svc.ListForOwner(ctx, buyer, "", page); len(list.Inquiries) != 0 {
		t.Error("buyer has no inquiries")
	}

	if _, err := f.svc.UpdateStatus(ctx, buyer, inq.ID, domain.StatusRead); !errors.Is(err, ErrForbidden) {
		t.Errorf("buyer update: got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, owner, inq.ID, "spam"); err == nil {
		t.Error("invalid status should fail")
	}
	for _, id := range []string{uuid.NewString(), "missing"} {
		if _, err := f.svc.UpdateStatus(ctx, owner, id, domain.StatusRead); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateStatus(%q): got %v, want ErrNotFound", id, err)
		}
	}
	got, err := f.svc.UpdateStatus(ctx, owner, inq.ID, domain.StatusReplied)
	if err != nil || got.Status != domain.StatusReplied {
		t.Errorf("owner update = %+v, %v", got, err)
	}
	if _, err := f.svc.UpdateStatus(ctx, admin, inq.ID, domain.StatusArchived); err != nil {
		t.Errorf("admin update: %v", err)
	}

	replied, _ := f.svc.ListForOwner(ctx, owner, domain.StatusReplied, page)
	if len(replied.Inquiries) != 0 {
		t.Error("inquiry was archived after being replied")
	}
}
