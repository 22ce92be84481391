// Package service implements profile self-service, the public agent page and admin user management.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	listingdomain "bahayscout/backend/internal/listing/domain"
	listingservice "bahayscout/backend/internal/listing/service"
	"bahayscout/backend/internal/platform/httpx"
	"bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/profile/repository"
	userdomain "bahayscout/backend/internal/user/domain"
)

// Sentinel errors for the profile service.
var (
	ErrNotFound       = errors.New("profile not found")
	ErrAdminRequired  = errors.New("admin role required")
	ErrSelfRoleChange = errors.New("admins cannot change their own role")
)

const (
	defaultUserPage = 50
	maxUserPage     = 200
)

// UserRepo resolves the account behind a profile.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// AgentListings returns an agent's published listings.
type AgentListings interface {
	ListPublishedByOwner(ctx context.Context, ownerID string, page listingdomain.Page) (*listingservice.SearchResult, error)
}

// UpdateInput is the body of PATCH /api/auth/profile. Nil fields are left unchanged; an empty phone clears it.
type UpdateInput struct {
	DisplayName *string `json:"displayName" validate:"omitnil,min=2,max=100"`
	Phone       *string `json:"phone" validate:"omitnil,max=30"`
}

// Me is the signed-in account with its profile.
type Me struct {
	User    MeUser          `json:"user"`
	Profile *domain.Profile `json:"profile"`
}

// MeUser is the account part of Me.
type MeUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Agent is the public agent page: the profile summary and its published listings.
type Agent struct {
	Profile    domain.Summary           `json:"profile"`
	Listings   []*listingdomain.Listing `json:"listings"`
	Pagination listingdomain.Pagination `json:"pagination"`
}

// UserList is one page of the admin users list.
type UserList struct {
	Users []*domain.UserListItem `json:"users"`
	Total int                    `json:"total"`
}

// ProfileService implements profile operations.
type ProfileService struct {
	repo     repository.Repository
	users    UserRepo
	listings AgentListings
	log      *zap.Logger
}

// NewProfileService returns a ProfileService.
func NewProfileService(repo repository.Repository, users UserRepo, listings AgentListings, log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{repo: repo, users: users, listings: listings, log: log}
}

// Me returns the account and profile of actor.
func (s *ProfileService) Me(ctx context.Context, actor *domain.Profile) (*Me, error) {
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return &Me{User: MeUser{ID: u.ID, Email: u.Email}, Profile: actor}, nil
}

// UpdateOwn changes the actor's display name and phone.
func (s *ProfileService) UpdateOwn(ctx context.Context, actor *domain.Profile, in UpdateInput) (*domain.Profile, error) {
	if in.DisplayName != nil {
		n := strings.TrimSpace(*in.DisplayName)
		in.DisplayName = &n
	}
	if in.Phone != nil {
		p := strings.TrimSpace(*in.Phone)
		in.Phone = &p
	}
	if err := httpx.ValidateStruct(&in); err != nil {
		return nil, err
	}
	name, phone := actor.DisplayName, actor.Phone
	if in.DisplayName != nil {
		name = *in.DisplayName
	}
	if in.Phone != nil {
		phone = in.Phone
		if *in.Phone == "" {
			phone = nil
		}
	}
	p, err := s.repo.UpdateContact(ctx, actor.ID, name, phone)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Agent returns the public page of a profile. Buyers have no agent page.
func (s *ProfileService) Agent(ctx context.Context, id string, page listingdomain.Page) (*Agent, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsLister() {
		return nil, ErrNotFound
	}
	res, err := s.listings.ListPublishedByOwner(ctx, p.ID, page)
	if err != nil {
		return nil, err
	}
	return &Agent{Profile: p.Summary(), Listings: res.Listings, Pagination: res.Pagination}, nil
}

// ListUsers returns profiles joined with their emails. Admin only.
func (s *ProfileService) ListUsers(ctx context.Context, actor *domain.Profile, f repository.ListFilter) (*UserList, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if f.Limit <= 0 {
		f.Limit = defaultUserPage
	}
	f.Limit = min(f.Limit, maxUserPage)
	f.Offset = max(f.Offset, 0)
	f.Search = strings.TrimSpace(f.Search)
	users, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*domain.UserListItem{}
	}
	return &UserList{Users: users, Total: total}, nil
}

// SetRole changes another profile's role. Admin only.
func (s *ProfileService) SetRole(ctx context.Context, actor *domain.Profile, id, role string) (*domain.Profile, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, httpx.ValidationError([]httpx.FieldError{{Field: "role", Message: "must be one of: buyer, lister, admin"}})
	}
	if id == actor.ID {
		return nil, ErrSelfRoleChange
	}
	if !validID(id) {
		return nil, ErrNotFound
	}
	p, err := s.repo.SetRole(ctx, id, r)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	s.log.Info("profile role changed", zap.String("profile_id", id), zap.String("role", string(r)), zap.String("by", actor.ID))
	return p, nil
}

// SetVerified sets the verified badge of a profile. Admin only.
func (s *ProfileService) SetVerified(ctx context.Context, actor *domain.Profile, id string, verified bool) (*domain.Profile, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if !validID(id) {
		return nil, ErrNotFound
	}
	p, err := s.repo.SetVerified(ctx, id, verified)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// validID reports whether id can name a profile row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
