package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/listing/query"
	"bahayscout/backend/internal/listing/repository"
	locationdomain "bahayscout/backend/internal/location/domain"
	"bahayscout/backend/internal/notify"
	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/policy/engine"
	profiledomain "bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/realtime"
	"bahayscout/backend/internal/telemetry"
	telemetrydomain "bahayscout/backend/internal/telemetry/domain"
	userdomain "bahayscout/backend/internal/user/domain"
)

// Sentinel errors for the listing service; the handler maps them to HTTP statuses.
var (
	ErrNotFound       = errors.New("listing not found")
	ErrPhotoNotFound  = errors.New("photo not found")
	ErrForbidden      = errors.New("forbidden")
	ErrListerRequired = errors.New("lister role required")
	ErrAdminRequired  = errors.New("admin role required")
)

const eventSource = "listing"

// ProfileRepo is the minimal profile repository needed by the listing service.
type ProfileRepo interface {
	GetByID(ctx context.Context, id string) (*profiledomain.Profile, error)
}

// UserRepo resolves an owner's account for notification emails.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// LocationRepo checks that a referenced location exists.
type LocationRepo interface {
	GetByID(ctx context.Context, id int64) (*locationdomain.Location, error)
}

// ModerationNotifier emails owners about moderation results.
type ModerationNotifier interface {
	ListingApproved(ctx context.Context, ownerEmail string, data notify.ModerationData)
	ListingRejected(ctx context.Context, ownerEmail string, data notify.ModerationData)
	ListingURL(slug string) string
}

// SearchResult is one page of search results.
type SearchResult struct {
	Listings   []*domain.Listing `json:"listings"`
	Pagination domain.Pagination `json:"pagination"`
}

// Deps are the optional collaborators of the service. Nil fields disable that side effect.
type Deps struct {
	Users     UserRepo
	Locations LocationRepo
	Notifier  ModerationNotifier
	Events    telemetry.EventEmitter
	Realtime  realtime.Publisher
}

// ListingService implements listing reads, authoring and moderation.
type ListingService struct {
	repo     repository.Repository
	profiles ProfileRepo
	policy   engine.Evaluator
	deps     Deps
	log      *zap.Logger
	now      func() time.Time
}

// NewListingService returns a ListingService.
func NewListingService(repo repository.Repository, profiles ProfileRepo, policy engine.Evaluator, deps Deps, log *zap.Logger) *ListingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ListingService{
		repo:     repo,
		profiles: profiles,
		policy:   policy,
		deps:     deps,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Search returns published listings matching f.
func (s *ListingService) Search(ctx context.Context, f domain.Filters, page domain.Page) (*SearchResult, error) {
	f.OwnerID = strings.TrimSpace(f.OwnerID)
	listings, total, err := s.repo.Search(ctx, f, page)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Listings: listings, Pagination: domain.NewPagination(page, total)}, nil
}

// Get returns a listing the actor may view. actor is nil for anonymous callers.
// Listings the actor may not view are reported as ErrNotFound.
func (s *ListingService) Get(ctx context.Context, actor *profiledomain.Profile, id string) (*domain.Listing, error) {
	return s.visible(ctx, actor, s.getByID, id)
}

// GetBySlug is Get by slug.
func (s *ListingService) GetBySlug(ctx context.Context, actor *profiledomain.Profile, slug string) (*domain.Listing, error) {
	return s.visible(ctx, actor, s.repo.GetBySlug, slug)
}

func (s *ListingService) visible(ctx context.Context, actor *profiledomain.Profile, get func(context.Context, string) (*domain.Listing, error), key string) (*domain.Listing, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	l, err := get(ctx, key)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrNotFound
	}
	ok, err := s.allow(ctx, actor, engine.ActionView, l)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

// Create stores a new draft listing owned by actor.
func (s *ListingService) Create(ctx context.Context, actor *profiledomain.Profile, in domain.CreateInput) (*domain.Listing, error) {
	ok, err := s.allow(ctx, actor, engine.ActionCreate, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrListerRequired
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLocation(ctx, &in.LocationID); err != nil {
		return nil, err
	}
	slug, err := domain.NewSlug(in.Title)
	if err != nil {
		return nil, fmt.Errorf("slug: %w", err)
	}
	now := s.now()
	l := &domain.Listing{
		ID:           uuid.New().String(),
		OwnerID:      actor.ID,
		Status:       domain.StatusDraft,
		Category:     in.Category,
		PropertyType: in.PropertyType,
		Title:        in.Title,
		Description:  in.Description,
		PricePHP:     in.PricePHP,
		PricePeriod:  in.PricePeriod,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		FloorAreaSqm: in.FloorAreaSqm,
		LotAreaSqm:   in.LotAreaSqm,
		LocationID:   &in.LocationID,
		AddressLine:  in.AddressLine,
		Slug:         slug,
		Point:        in.Point(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	s.emit(ctx, actor, telemetrydomain.EventListingCreated, l)
	return s.reload(ctx, l.ID)
}

// Update applies a partial edit. Owner or admin only; the status is left unchanged.
func (s *ListingService) Update(ctx context.Context, actor *profiledomain.Profile, id string, in domain.UpdateInput) (*domain.Listing, error) {
	l, err := s.authorized(ctx, actor, id, engine.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		in.Description = &d
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Empty() {
		return l, nil
	}
	if err := s.checkLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}
	in.Apply(l)
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.reload(ctx, l.ID)
}

// Submit sends a draft or rejected listing to review. Owner only.
func (s *ListingService) Submit(ctx context.Context, actor *profiledomain.Profile, id string) (*domain.Listing, error) {
	l, err := s.authorized(ctx, actor, id, engine.ActionSubmit)
	if err != nil {
		return nil, err
	}
	l, err = s.transition(ctx, l, domain.ActionSubmit, nil)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, actor, telemetrydomain.EventListingSubmitted, l)
	return l, nil
}

// Approve publishes a pending listing. Admin only.
func (s *ListingService) Approve(ctx context.Context, actor *profiledomain.Profile, id string) (*domain.Listing, error) {
	l, err := s.moderate(ctx, actor, id, domain.ActionApprove, nil)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, actor, telemetrydomain.EventListingPublished, l)
	if n := s.deps.Notifier; n != nil {
		n.ListingApproved(ctx, s.ownerEmail(ctx, l.OwnerID), notify.ModerationData{
			ListingTitle: l.Title,
			ListingURL:   n.ListingURL(l.Slug),
			Price:        domain.FormatPrice(l),
		})
	}
	return l, nil
}

// Reject sends a pending listing back to its owner with an optional reason. Admin only.
func (s *ListingService) Reject(ctx context.Context, actor *profiledomain.Profile, id string, reason *string) (*domain.Listing, error) {
	if reason != nil {
		r := strings.TrimSpace(*reason)
		if len(r) > 1000 {
			return nil, httpx.ValidationError([]httpx.FieldError{{Field: "reason", Message: "must be at most 1000 characters"}})
		}
		reason = &r
		if r == "" {
			reason = nil
		}
	}
	l, err := s.moderate(ctx, actor, id, domain.ActionReject, reason)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, actor, telemetrydomain.EventListingRejected, l)
	if n := s.deps.Notifier; n != nil {
		data := notify.ModerationData{ListingTitle: l.Title, ListingURL: n.ListingURL(l.Slug)}
		if reason != nil {
			data.Reason = *reason
		}
		n.ListingRejected(ctx, s.ownerEmail(ctx, l.OwnerID), data)
	}
	return l, nil
}

func (s *ListingService) moderate(ctx context.Context, actor *profiledomain.Profile, id string, action domain.Action, reason *string) (*domain.Listing, error) {
	policyAction := engine.ActionApprove
	if action == domain.ActionReject {
		policyAction = engine.ActionReject
	}
	l, err := s.authorized(ctx, actor, id, policyAction)
	if errors.Is(err, ErrForbidden) {
		return nil, ErrAdminRequired
	}
	if err != nil {
		return nil, err
	}
	l, err = s.transition(ctx, l, action, reason)
	if err != nil {
		return nil, err
	}
	if s.deps.Realtime != nil {
		s.deps.Realtime.Publish(l.OwnerID, realtime.Event{
			Type: realtime.EventListingStatusChanged,
			Data: map[string]any{"listingId": l.ID, "status": l.Status, "rejectionReason": l.RejectionReason},
		})
	}
	return l, nil
}

// transition applies action with a compare-and-set on the current status. If the status changed
// concurrently the error reports the status the listing has now.
func (s *ListingService) transition(ctx context.Context, l *domain.Listing, action domain.Action, reason *string) (*domain.Listing, error) {
	to, err := domain.Transition(l.Status, action)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.UpdateStatus(ctx, l.ID, l.Status, to, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.repo.GetByID(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrNotFound
		}
		return nil, &domain.TransitionError{Action: action, From: current.Status}
	}
	return s.reload(ctx, l.ID)
}

// AddPhoto attaches a stored image to the listing. Owner or admin only.
func (s *ListingService) AddPhoto(ctx context.Context, actor *profiledomain.Profile, id string, in domain.PhotoInput) (*domain.Photo, error) {
	l, err := s.authorized(ctx, actor, id, engine.ActionManagePhotos)
	if err != nil {
		return nil, err
	}
	in.StoragePath = strings.TrimSpace(in.StoragePath)
	if err := httpx.ValidateStruct(&in); err != nil {
		return nil, err
	}
	if len(l.Photos) >= domain.MaxPhotos {
		return nil, httpx.BadRequest(fmt.Sprintf("A listing can have at most %d photos", domain.MaxPhotos))
	}
	ph := &domain.Photo{ID: uuid.New().String(), ListingID: l.ID, StoragePath: in.StoragePath, SortOrder: in.SortOrder}
	if err := s.repo.AddPhoto(ctx, ph); err != nil {
		return nil, err
	}
	return ph, nil
}

// DeletePhoto removes a photo from the listing. Owner or admin only.
func (s *ListingService) DeletePhoto(ctx context.Context, actor *profiledomain.Profile, id, photoID string) error {
	if _, err := s.authorized(ctx, actor, id, engine.ActionManagePhotos); err != nil {
		return err
	}
	if !validID(photoID) {
		return ErrPhotoNotFound
	}
	ok, err := s.repo.DeletePhoto(ctx, id, photoID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPhotoNotFound
	}
	return nil
}

// ListMine returns the actor's own listings in every status (or only status when set).
func (s *ListingService) ListMine(ctx context.Context, actor *profiledomain.Profile, status domain.Status, page domain.Page) (*SearchResult, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	return s.scoped(ctx, query.Scope{OwnerID: actor.ID, Status: status}, page)
}

// ListForModeration returns listings by status for admins; an empty status means pending.
func (s *ListingService) ListForModeration(ctx context.Context, actor *profiledomain.Profile, status domain.Status, page domain.Page) (*SearchResult, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if status == "" {
		status = domain.StatusPending
	}
	return s.scoped(ctx, query.Scope{Status: status}, page)
}

// ListPublishedByOwner returns an agent's public listings.
func (s *ListingService) ListPublishedByOwner(ctx context.Context, ownerID string, page domain.Page) (*SearchResult, error) {
	return s.scoped(ctx, query.Scope{OwnerID: ownerID, Status: domain.StatusPublished}, page)
}

func (s *ListingService) scoped(ctx context.Context, scope query.Scope, page domain.Page) (*SearchResult, error) {
	listings, total, err := s.repo.ListScoped(ctx, scope, page)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Listings: listings, Pagination: domain.NewPagination(page, total)}, nil
}

// getByID treats ids that are not UUIDs as missing rows.
func (s *ListingService) getByID(ctx context.Context, id string) (*domain.Listing, error) {
	if !validID(id) {
		return nil, nil
	}
	return s.repo.GetByID(ctx, id)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// authorized loads the listing and checks action. Listings the actor cannot even view are
// ErrNotFound; visible ones the actor cannot act on are ErrForbidden.
func (s *ListingService) authorized(ctx context.Context, actor *profiledomain.Profile, id string, action engine.Action) (*domain.Listing, error) {
	l, err := s.visible(ctx, actor, s.getByID, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.allow(ctx, actor, action, l)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return l, nil
}

func (s *ListingService) allow(ctx context.Context, actor *profiledomain.Profile, action engine.Action, l *domain.Listing) (bool, error) {
	var sub engine.Subject
	if actor != nil {
		sub = engine.Subject{ID: actor.ID, Role: string(actor.Role)}
	}
	var res engine.Resource
	if l != nil {
		res = engine.Resource{OwnerID: l.OwnerID, Status: string(l.Status)}
	}
	return s.policy.Allow(ctx, sub, action, res)
}

func (s *ListingService) checkLocation(ctx context.Context, id *int64) error {
	if id == nil || s.deps.Locations == nil {
		return nil
	}
	loc, err := s.deps.Locations.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if loc == nil {
		return httpx.ValidationError([]httpx.FieldError{{Field: "locationId", Message: "location does not exist"}})
	}
	return nil
}

func (s *ListingService) reload(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrNotFound
	}
	return l, nil
}

// ownerEmail resolves the owner's account email, or "" when it cannot be found.
func (s *ListingService) ownerEmail(ctx context.Context, ownerProfileID string) string {
	if s.deps.Users == nil {
		return ""
	}
	p, err := s.profiles.GetByID(ctx, ownerProfileID)
	if err != nil || p == nil {
		if err != nil {
			s.log.Warn("listing: owner profile lookup failed", zap.String("profile_id", ownerProfileID), zap.Error(err))
		}
		return ""
	}
	u, err := s.deps.Users.GetByID(ctx, p.UserID)
	if err != nil || u == nil {
		if err != nil {
			s.log.Warn("listing: owner email lookup failed", zap.String("user_id", p.UserID), zap.Error(err))
		}
		return ""
	}
	return u.Email
}

func (s *ListingService) emit(ctx context.Context, actor *profiledomain.Profile, eventType string, l *domain.Listing) {
	ev := telemetry.NewEvent(eventType, eventSource, map[string]any{
		"listing_id": l.ID,
		"owner_id":   l.OwnerID,
		"status":     l.Status,
		"category":   l.Category,
	})
	if actor != nil {
		ev.ProfileID = actor.ID
		ev.UserID = actor.UserID
	}
	telemetry.EmitAsync(s.deps.Events, ctx, ev)
}
