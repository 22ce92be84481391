package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bahayscout/backend/internal/audit"
	identitydomain "bahayscout/backend/internal/identity/domain"
	identityrepo "bahayscout/backend/internal/identity/repository"
	"bahayscout/backend/internal/platform/httpx"
	profiledomain "bahayscout/backend/internal/profile/domain"
	"bahayscout/backend/internal/security"
	"bahayscout/backend/internal/server/middleware"
	sessiondomain "bahayscout/backend/internal/session/domain"
	"bahayscout/backend/internal/telemetry"
	telemetrydomain "bahayscout/backend/internal/telemetry/domain"
	userdomain "bahayscout/backend/internal/user/domain"
)

// Sentinel errors for auth service; handler maps them to HTTP statuses.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRefreshToken    = errors.New("invalid or expired refresh token")
	ErrRefreshTokenReuse      = errors.New("refresh token reuse detected; all sessions revoked")
)

// RegisterInput is the body of POST /api/auth/register. Role defaults to buyer; admin cannot be self-assigned.
type RegisterInput struct {
	Email       string  `json:"email" validate:"required,email,max=254"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	DisplayName string  `json:"displayName" validate:"required,min=2,max=100"`
	Phone       *string `json:"phone" validate:"omitnil,max=30"`
	Role        string  `json:"role" validate:"omitempty,oneof=buyer lister"`
}

// AuthResult holds the tokens of a new or refreshed session.
type AuthResult struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	UserID       string    `json:"userId"`
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// IdentityRepo is the minimal identity repository needed by the auth service.
type IdentityRepo interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error)
	CreateAccount(ctx context.Context, u *userdomain.User, i *identitydomain.Identity, p *profiledomain.Profile) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllSessionsByUser(ctx context.Context, userID string) error
	RotateRefreshToken(ctx context.Context, sessionID, prevJti, jti, refreshTokenHash string) (bool, error)
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}

// AuthService implements email/password register, login, refresh, and logout.
type AuthService struct {
	userRepo     UserRepo
	identityRepo IdentityRepo
	sessionRepo  SessionRepo
	hasher       *security.Hasher
	tokens       *security.TokenProvider
	auditLogger  audit.AuditLogger
	events       telemetry.EventEmitter
	log          *zap.Logger
}

// NewAuthService returns an AuthService with the given dependencies. auditLogger and events may be nil.
func NewAuthService(
	userRepo UserRepo,
	identityRepo IdentityRepo,
	sessionRepo SessionRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	auditLogger audit.AuditLogger,
	events telemetry.EventEmitter,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		userRepo:     userRepo,
		identityRepo: identityRepo,
		sessionRepo:  sessionRepo,
		hasher:       hasher,
		tokens:       tokens,
		auditLogger:  auditLogger,
		events:       events,
		log:          log,
	}
}

// Register creates a user, its local identity and its profile, then signs the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, userAgent string) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.Phone != nil {
		p := strings.TrimSpace(*in.Phone)
		in.Phone = &p
		if p == "" {
			in.Phone = nil
		}
	}
	if err := validateRegister(&in); err != nil {
		return nil, err
	}
	role := profiledomain.RoleBuyer
	if in.Role != "" {
		role = profiledomain.Role(in.Role)
	}
	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{ID: uuid.New().String(), Email: in.Email, CreatedAt: now, UpdatedAt: now}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	identity := &identitydomain.Identity{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		Provider:     identitydomain.IdentityProviderLocal,
		ProviderID:   in.Email,
		PasswordHash: hashed,
		CreatedAt:    now,
	}
	profile := &profiledomain.Profile{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Role:        role,
		DisplayName: in.DisplayName,
		Phone:       in.Phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.identityRepo.CreateAccount(ctx, user, identity, profile); err != nil {
		if errors.Is(err, identityrepo.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}
	s.audit(ctx, user.ID, audit.ActionRegister, user.ID, map[string]any{"role": role})
	ev := telemetry.NewEvent(telemetrydomain.EventUserRegistered, "auth", map[string]any{"role": role})
	ev.UserID, ev.ProfileID = user.ID, profile.ID
	telemetry.EmitAsync(s.events, ctx, ev)
	return s.startSession(ctx, user.ID, userAgent)
}

// Login authenticates with email and password, creates a session, and returns tokens.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.audit(ctx, "", audit.ActionLoginFailure, "", map[string]any{"email": email, "reason": "unknown_email"})
		return nil, ErrInvalidCredentials
	}
	ident, err := s.identityRepo.GetByUserAndProvider(ctx, user.ID, identitydomain.IdentityProviderLocal)
	if err != nil {
		return nil, err
	}
	if ident == nil || ident.PasswordHash == "" || s.hasher.Compare(ident.PasswordHash, password) != nil {
		s.audit(ctx, user.ID, audit.ActionLoginFailure, user.ID, map[string]any{"reason": "bad_password"})
		return nil, ErrInvalidCredentials
	}
	res, err := s.startSession(ctx, user.ID, userAgent)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, user.ID, audit.ActionLoginSuccess, user.ID, nil)
	return res, nil
}

func (s *AuthService) startSession(ctx context.Context, userID, userAgent string) (*AuthResult, error) {
	sessionID := uuid.New().String()
	refresh, err := s.tokens.IssueRefresh(sessionID, userID)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.IssueAccess(sessionID, userID)
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:               sessionID,
		UserID:           userID,
		ExpiresAt:        refresh.ExpiresAt,
		IPAddress:        middleware.ClientIPFromContext(ctx),
		UserAgent:        truncate(userAgent, 512),
		RefreshJti:       refresh.JTI,
		RefreshTokenHash: security.HashRefreshToken(refresh.Value),
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  access.Value,
		RefreshToken: refresh.Value,
		ExpiresAt:    access.ExpiresAt,
		UserID:       userID,
	}, nil
}

// Refresh validates the refresh token, rotates it, and returns new tokens.
// Presenting a refresh token that was already rotated revokes every session of the user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	sub, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	sess, err := s.sessionRepo.GetByID(ctx, sub.SessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if sess == nil || sess.UserID != sub.UserID || !sess.Active(now) {
		return nil, ErrInvalidRefreshToken
	}
	if sess.RefreshJti != sub.JTI {
		return nil, s.reuseDetected(ctx, sub)
	}
	if sess.RefreshTokenHash != "" && !security.RefreshTokenHashEqual(refreshToken, sess.RefreshTokenHash) {
		return nil, ErrInvalidRefreshToken
	}
	if err := s.sessionRepo.UpdateLastSeen(ctx, sess.ID, now); err != nil {
		s.log.Warn("auth: update last seen failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
	next, err := s.tokens.IssueRefresh(sess.ID, sub.UserID)
	if err != nil {
		return nil, err
	}
	ok, err := s.sessionRepo.RotateRefreshToken(ctx, sess.ID, sub.JTI, next.JTI, security.HashRefreshToken(next.Value))
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent refresh already consumed this token.
		return nil, s.reuseDetected(ctx, sub)
	}
	access, err := s.tokens.IssueAccess(sess.ID, sub.UserID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  access.Value,
		RefreshToken: next.Value,
		ExpiresAt:    access.ExpiresAt,
		UserID:       sub.UserID,
	}, nil
}

func (s *AuthService) reuseDetected(ctx context.Context, sub security.Subject) error {
	if err := s.sessionRepo.RevokeAllSessionsByUser(ctx, sub.UserID); err != nil {
		s.log.Error("auth: revoke sessions after token reuse failed", zap.String("user_id", sub.UserID), zap.Error(err))
	}
	s.audit(ctx, sub.UserID, audit.ActionTokenReuse, sub.SessionID, nil)
	return ErrRefreshTokenReuse
}

// Logout revokes the session identified by the refresh token or, when it is empty, the session of
// the access token in context. Otherwise no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	var sessionID, userID string
	if refreshToken != "" {
		sub, err := s.tokens.ValidateRefresh(refreshToken)
		if err != nil {
			return nil
		}
		sessionID, userID = sub.SessionID, sub.UserID
	} else {
		var ok bool
		if sessionID, ok = middleware.GetSessionID(ctx); !ok {
			return nil
		}
		userID, _ = middleware.GetUserID(ctx)
	}
	if err := s.sessionRepo.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.audit(ctx, userID, audit.ActionLogout, sessionID, nil)
	return nil
}

func (s *AuthService) audit(ctx context.Context, userID, action, resourceID string, metadata any) {
	if s.auditLogger == nil {
		return
	}
	s.auditLogger.LogEvent(ctx, userID, action, audit.ResourceAuth, resourceID, metadata)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegister(in *RegisterInput) error {
	err := httpx.ValidateStruct(in)
	if passwordStrong(in.Password) || len(in.Password) < 8 {
		return err
	}
	weak := httpx.FieldError{Field: "password", Message: "must contain a letter and a digit"}
	var he *httpx.Error
	if errors.As(err, &he) {
		if details, ok := he.Details.([]httpx.FieldError); ok {
			return httpx.ValidationError(append(details, weak))
		}
	}
	if err != nil {
		return err
	}
	return httpx.ValidationError([]httpx.FieldError{weak})
}

func passwordStrong(password string) bool {
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
