package security

import (
	"crypto"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed, expired, or signed for another issuer/audience.
var ErrInvalidToken = errors.New("invalid token")

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// Claims are the JWT claims of both token kinds. Use distinguishes access from refresh tokens
// so a refresh token cannot be presented as a bearer token.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
	Use       string `json:"use"`
}

// Token is an issued JWT with its id and expiry.
type Token struct {
	Value     string
	JTI       string
	ExpiresAt time.Time
}

// Subject is what a validated token asserts.
type Subject struct {
	UserID    string
	SessionID string
	JTI       string
}

// TokenProvider issues and validates access and refresh JWTs with an RSA (RS256) or ECDSA (ES256) key.
type TokenProvider struct {
	signer     crypto.Signer
	publicKey  crypto.PublicKey
	method     jwt.SigningMethod
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a provider, or ErrInvalidKey if the key is neither RSA nor ECDSA.
func NewTokenProvider(signer crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	var method jwt.SigningMethod
	switch KeyAlg(signer.Public()) {
	case "RS256":
		method = jwt.SigningMethodRS256
	case "ES256":
		method = jwt.SigningMethodES256
	default:
		return nil, ErrInvalidKey
	}
	return &TokenProvider{
		signer:     signer,
		publicKey:  publicKey,
		method:     method,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL is the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// IssueAccess issues a short-lived access token for the user's session.
func (p *TokenProvider) IssueAccess(sessionID, userID string) (Token, error) {
	return p.issue(sessionID, userID, tokenUseAccess, p.accessTTL)
}

// IssueRefresh issues a refresh token. The caller binds the returned JTI to the session for rotation.
func (p *TokenProvider) IssueRefresh(sessionID, userID string) (Token, error) {
	return p.issue(sessionID, userID, tokenUseRefresh, p.refreshTTL)
}

func (p *TokenProvider) issue(sessionID, userID, use string, ttl time.Duration) (Token, error) {
	jti, err := generateJTI()
	if err != nil {
		return Token{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		SessionID: sessionID,
		Use:       use,
	}
	signed, err := jwt.NewWithClaims(p.method, claims).SignedString(p.signer)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, JTI: jti, ExpiresAt: exp}, nil
}

// ValidateAccess checks signature, expiry, issuer and audience of an access token.
func (p *TokenProvider) ValidateAccess(token string) (Subject, error) {
	return p.validate(token, tokenUseAccess)
}

// ValidateRefresh checks signature, expiry, issuer and audience of a refresh token.
func (p *TokenProvider) ValidateRefresh(token string) (Subject, error) {
	return p.validate(token, tokenUseRefresh)
}

func (p *TokenProvider) validate(token, use string) (Subject, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return p.publicKey, nil
	},
		jwt.WithValidMethods([]string{p.method.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Subject{}, ErrInvalidToken
	}
	if claims.Use != use || claims.Subject == "" || claims.SessionID == "" {
		return Subject{}, ErrInvalidToken
	}
	if !slices.Contains(claims.Audience, p.audience) {
		return Subject{}, ErrInvalidToken
	}
	return Subject{UserID: claims.Subject, SessionID: claims.SessionID, JTI: claims.ID}, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
