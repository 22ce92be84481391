package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	listingdomain "bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/platform/httpx"
	profiledomain "bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/report/domain"
	"bahayscout/backend/internal/report/repository"
	"bahayscout/backend/internal/telemetry"
	telemetrydomain "bahayscout/backend/internal/telemetry/domain"
)

// Sentinel errors for the report service.
var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrListingNotFound = errors.New("listing not found")
	ErrNotFound        = errors.New("report not found")
	ErrAdminRequired   = errors.New("admin role required")
)

// ListingRepo checks that the reported listing exists.
type ListingRepo interface {
	GetByID(ctx context.Context, id string) (*listingdomain.Listing, error)
}

// List is one page of reports.
type List struct {
	Reports    []*domain.Report         `json:"reports"`
	Pagination listingdomain.Pagination `json:"pagination"`
}

// ReportService records listing reports and their admin review.
type ReportService struct {
	repo     repository.Repository
	listings ListingRepo
	events   telemetry.EventEmitter
}

// NewReportService returns a ReportService. events may be nil.
func NewReportService(repo repository.Repository, listings ListingRepo, events telemetry.EventEmitter) *ReportService {
	return &ReportService{repo: repo, listings: listings, events: events}
}

// Create files a report against a listing. actor is nil for anonymous reporters.
func (s *ReportService) Create(ctx context.Context, actor *profiledomain.Profile, in domain.CreateInput) (*domain.Report, error) {
	in.ListingID = strings.TrimSpace(in.ListingID)
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Details != nil {
		d := strings.TrimSpace(*in.Details)
		in.Details = &d
		if d == "" {
			in.Details = nil
		}
	}
	if in.ListingID == "" || in.Reason == "" {
		return nil, ErrMissingFields
	}
	if err := httpx.ValidateStruct(&in); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(in.ListingID); err != nil {
		return nil, ErrListingNotFound
	}
	l, err := s.listings.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}
	rep := &domain.Report{
		ID:        uuid.New().String(),
		ListingID: l.ID,
		Reason:    in.Reason,
		Details:   in.Details,
		Status:    domain.StatusOpen,
		CreatedAt: time.Now().UTC(),
	}
	if actor != nil {
		rep.ReporterID = &actor.ID
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		return nil, err
	}
	ev := telemetry.NewEvent(telemetrydomain.EventReportCreated, "report", map[string]any{
		"report_id":  rep.ID,
		"listing_id": l.ID,
		"reason":     rep.Reason,
	})
	if actor != nil {
		ev.ProfileID, ev.UserID = actor.ID, actor.UserID
	}
	telemetry.EmitAsync(s.events, ctx, ev)
	return rep, nil
}

// List returns reports by status for admins; an empty status means open.
func (s *ReportService) List(ctx context.Context, actor *profiledomain.Profile, status domain.Status, page listingdomain.Page) (*List, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if status == "" {
		status = domain.StatusOpen
	}
	reports, total, err := s.repo.List(ctx, status, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	return &List{Reports: reports, Pagination: listingdomain.NewPagination(page, total)}, nil
}

// Resolve closes a report as resolved or dismissed. Admin only.
func (s *ReportService) Resolve(ctx context.Context, actor *profiledomain.Profile, id string, status domain.Status) (*domain.Report, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if status != domain.StatusResolved && status != domain.StatusDismissed {
		return nil, httpx.ValidationError([]httpx.FieldError{{Field: "status", Message: "must be one of: resolved, dismissed"}})
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	rep, err := s.repo.Resolve(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, ErrNotFound
	}
	return rep, nil
}
