package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bahayscout/backend/internal/inquiry/domain"
	"bahayscout/backend/internal/inquiry/repository"
	listingdomain "bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/notify"
	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/policy/engine"
	profiledomain "bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/realtime"
	"bahayscout/backend/internal/telemetry"
	telemetrydomain "bahayscout/backend/internal/telemetry/domain"
	userdomain "bahayscout/backend/internal/user/domain"
)

// Sentinel errors for the inquiry service.
var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrListingNotFound = errors.New("listing not found")
	ErrNotFound        = errors.New("inquiry not found")
	ErrForbidden       = errors.New("forbidden")
)

// ListingRepo loads the listing an inquiry is about.
type ListingRepo interface {
	GetByID(ctx context.Context, id string) (*listingdomain.Listing, error)
}

// OwnerResolver resolves a listing owner's profile and account for notifications.
type OwnerResolver interface {
	GetByID(ctx context.Context, id string) (*profiledomain.Profile, error)
}

// UserRepo resolves an account email.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// InquiryNotifier emails the lister and the inquirer.
type InquiryNotifier interface {
	Inquiry(ctx context.Context, ownerEmail string, data notify.InquiryData)
	ListingURL(slug string) string
}

// Deps are optional collaborators; nil disables the side effect.
type Deps struct {
	Profiles OwnerResolver
	Users    UserRepo
	Notifier InquiryNotifier
	Realtime realtime.Publisher
	Events   telemetry.EventEmitter
}

// List is one page of a lister's inquiries.
type List struct {
	Inquiries  []*domain.Inquiry        `json:"inquiries"`
	Pagination listingdomain.Pagination `json:"pagination"`
}

// InquiryService records inquiries and lets listers triage them.
type InquiryService struct {
	repo     repository.Repository
	listings ListingRepo
	policy   engine.Evaluator
	deps     Deps
	log      *zap.Logger
}

// NewInquiryService returns an InquiryService.
func NewInquiryService(repo repository.Repository, listings ListingRepo, policy engine.Evaluator, deps Deps, log *zap.Logger) *InquiryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InquiryService{repo: repo, listings: listings, policy: policy, deps: deps, log: log}
}

// Create records an inquiry on a published listing. actor is nil for anonymous senders.
// Email delivery is best-effort and never fails the request.
func (s *InquiryService) Create(ctx context.Context, actor *profiledomain.Profile, in domain.CreateInput) (*domain.Inquiry, error) {
	in.ListingID = strings.TrimSpace(in.ListingID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if in.Phone != nil {
		p := strings.TrimSpace(*in.Phone)
		in.Phone = &p
		if p == "" {
			in.Phone = nil
		}
	}
	if in.MissingRequired() {
		return nil, ErrMissingFields
	}
	if err := httpx.ValidateStruct(&in); err != nil {
		var he *httpx.Error
		if errors.As(err, &he) && isListingIDOnly(he) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	l, err := s.listings.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if l == nil || !l.IsPublished() {
		return nil, ErrListingNotFound
	}
	inq := &domain.Inquiry{
		ID:        uuid.New().String(),
		ListingID: l.ID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		Status:    domain.StatusNew,
		CreatedAt: time.Now().UTC(),
	}
	if actor != nil {
		inq.FromUserID = &actor.ID
	}
	if err := s.repo.Create(ctx, inq); err != nil {
		return nil, err
	}
	inq.Listing = &domain.ListingRef{ID: l.ID, Title: l.Title, Slug: l.Slug}

	if n := s.deps.Notifier; n != nil {
		data := notify.InquiryData{
			ListingTitle:  l.Title,
			ListingURL:    n.ListingURL(l.Slug),
			InquirerName:  inq.Name,
			InquirerEmail: inq.Email,
			Message:       inq.Message,
		}
		if inq.Phone != nil {
			data.InquirerPhone = *inq.Phone
		}
		n.Inquiry(ctx, s.ownerEmail(ctx, l.OwnerID), data)
	}
	if s.deps.Realtime != nil {
		s.deps.Realtime.Publish(l.OwnerID, realtime.Event{Type: realtime.EventInquiryCreated, Data: inq})
	}
	ev := telemetry.NewEvent(telemetrydomain.EventInquiryCreated, "inquiry", map[string]any{
		"inquiry_id": inq.ID,
		"listing_id": l.ID,
		"owner_id":   l.OwnerID,
	})
	if actor != nil {
		ev.ProfileID, ev.UserID = actor.ID, actor.UserID
	}
	telemetry.EmitAsync(s.deps.Events, ctx, ev)
	return inq, nil
}

// isListingIDOnly reports whether the only validation failure is a malformed listing id,
// which is reported like an unknown listing.
func isListingIDOnly(he *httpx.Error) bool {
	details, ok := he.Details.([]httpx.FieldError)
	return ok && len(details) == 1 && details[0].Field == "listingId"
}

// ListForOwner returns inquiries on the actor's listings, newest first.
func (s *InquiryService) ListForOwner(ctx context.Context, actor *profiledomain.Profile, status domain.Status, page listingdomain.Page) (*List, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	items, total, err := s.repo.ListForOwner(ctx, repository.OwnerFilter{
		OwnerID: actor.ID,
		Status:  status,
		Limit:   page.Limit,
		Offset:  page.Offset(),
	})
	if err != nil {
		return nil, err
	}
	return &List{Inquiries: items, Pagination: listingdomain.NewPagination(page, total)}, nil
}

// UpdateStatus moves an inquiry to status. Only the listing owner (or an admin) may.
func (s *InquiryService) UpdateStatus(ctx context.Context, actor *profiledomain.Profile, id string, status domain.Status) (*domain.Inquiry, error) {
	if !status.Valid() {
		return nil, httpx.ValidationError([]httpx.FieldError{{Field: "status", Message: "must be one of: new, read, replied, archived"}})
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	inq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inq == nil {
		return nil, ErrNotFound
	}
	l, err := s.listings.GetByID(ctx, inq.ListingID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrNotFound
	}
	var sub engine.Subject
	if actor != nil {
		sub = engine.Subject{ID: actor.ID, Role: string(actor.Role)}
	}
	ok, err := s.policy.Allow(ctx, sub, engine.ActionManageInquiry, engine.Resource{OwnerID: l.OwnerID, Status: string(l.Status)})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}
	inq.Status = status
	return inq, nil
}

func (s *InquiryService) ownerEmail(ctx context.Context, ownerProfileID string) string {
	if s.deps.Profiles == nil || s.deps.Users == nil {
		return ""
	}
	p, err := s.deps.Profiles.GetByID(ctx, ownerProfileID)
	if err != nil || p == nil {
		if err != nil {
			s.log.Warn("inquiry: owner profile lookup failed", zap.String("profile_id", ownerProfileID), zap.Error(err))
		}
		return ""
	}
	u, err := s.deps.Users.GetByID(ctx, p.UserID)
	if err != nil || u == nil {
		if err != nil {
			s.log.Warn("inquiry: owner email lookup failed", zap.String("user_id", p.UserID), zap.Error(err))
		}
		return ""
	}
	return u.Email
}
