package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/ids"
	"github.com/Spok95/school-discipline/internal/models"
)

const issuerName = "school-discipline"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Email           string   `json:"email,omitempty"`
	Name            string   `json:"name,omitempty"`
	Role            string   `json:"role,omitempty"`
	AssignedClasses []string `json:"assignedClasses,omitempty"`
}

// Tokens signs and verifies session tokens (HS256).
type Tokens struct {
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewTokens(secret []byte, ttl time.Duration, log *zap.Logger) *Tokens {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tokens{secret: secret, ttl: ttl, log: log, now: time.Now}
}

// Issue signs a token for u carrying the given claims. The claims, not u.Role, decide
// what the session may do.
func (t *Tokens) Issue(u models.User, c models.UserClaims) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   u.ID,
			ID:        ids.New(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email:           u.Email,
		Name:            u.DisplayName,
		Role:            string(c.Role),
		AssignedClasses: c.AssignedClasses,
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return ss, exp, nil
}

// Verify checks signature and expiry and builds a Session. A missing or unknown role
// claim is not an error: the session simply has no capability.
func (t *Tokens) Verify(raw string) (*Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token without subject", apperr.ErrUnauthenticated)
	}

	role, ok := models.ParseRole(claims.Role)
	if !ok {
		t.log.Warn("token without usable role claim",
			zap.String("sub", claims.Subject),
			zap.String("role", claims.Role),
		)
	}
	s := &Session{
		Subject:         claims.Subject,
		Email:           claims.Email,
		Name:            claims.Name,
		Role:            role,
		AssignedClasses: claims.AssignedClasses,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

var errNoBearer = errors.New("missing bearer token")

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return "", fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, errNoBearer)
	}
	return strings.TrimSpace(tok), nil
}
