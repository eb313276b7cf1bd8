package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/auth"
	"github.com/Spok95/school-discipline/internal/ids"
	"github.com/Spok95/school-discipline/internal/models"
)

// TokenResponse is what /auth/token and /auth/refresh return.
type TokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
	Flags     auth.Flags  `json:"flags"`
}

type Users struct {
	store  Store
	tokens *auth.Tokens
	log    *zap.Logger
}

func NewUsers(store Store, tokens *auth.Tokens, log *zap.Logger) *Users {
	if log == nil {
		log = zap.NewNop()
	}
	return &Users{store: store, tokens: tokens, log: log}
}

// Login checks the password and issues a token carrying the stored claims.
func (s *Users) Login(ctx context.Context, in models.Credentials) (*TokenResponse, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(u.PasswordHash, in.Password); err != nil {
		s.log.Info("login failed", zap.String("email", u.Email))
		return nil, err
	}
	return s.issue(ctx, u)
}

// Refresh re-reads the claims, so a role change shows up on the next refresh.
func (s *Users) Refresh(ctx context.Context, sess *auth.Session) (*TokenResponse, error) {
	if sess == nil {
		return nil, apperr.ErrUnauthenticated
	}
	u, err := s.store.GetUser(ctx, sess.Subject)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

func (s *Users) issue(ctx context.Context, u *models.User) (*TokenResponse, error) {
	if !u.IsActive {
		return nil, apperr.ErrUnauthenticated
	}
	c, err := s.store.GetClaims(ctx, u.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		c = &models.UserClaims{UserID: u.ID}
	} else if err != nil {
		return nil, err
	}
	tok, exp, err := s.tokens.Issue(*u, *c)
	if err != nil {
		return nil, err
	}
	sess := &auth.Session{Subject: u.ID, Role: c.Role, AssignedClasses: c.AssignedClasses}
	return &TokenResponse{Token: tok, ExpiresAt: exp, User: *u, Flags: sess.Flags()}, nil
}

// SetUserClaims replaces the target's {role, assignedClasses}. Only super-admins may call
// it; for anyone else nothing is read or written.
func (s *Users) SetUserClaims(ctx context.Context, sess *auth.Session, in models.SetClaimsInput) error {
	if err := sess.Require(auth.PermClaimsSet); err != nil {
		s.log.Warn("setUserClaims denied", zap.String("caller", subjectOf(sess)), zap.String("target", in.UID))
		return err
	}
	if err := models.Validate(in); err != nil {
		return err
	}
	if in.AssignedClasses == nil {
		in.AssignedClasses = []string{}
	}
	if err := s.store.SetClaims(ctx, models.UserClaims{
		UserID:          in.UID,
		Role:            in.Role,
		AssignedClasses: in.AssignedClasses,
	}); err != nil {
		return err
	}
	s.log.Info("claims updated",
		zap.String("caller", sess.Subject),
		zap.String("target", in.UID),
		zap.String("role", string(in.Role)),
		zap.Strings("classes", in.AssignedClasses),
	)
	return nil
}

func (s *Users) CreateUser(ctx context.Context, sess *auth.Session, in models.NewUser) (*models.User, error) {
	if err := sess.Require(auth.PermUserManage); err != nil {
		return nil, err
	}
	return s.create(ctx, in)
}

func (s *Users) create(ctx context.Context, in models.NewUser) (*models.User, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.store.CreateUser(ctx, models.User{
		ID:           ids.New(),
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: hash,
	})
	if errors.Is(err, apperr.ErrConflict) {
		return nil, apperr.Invalid("email", "a user with this email already exists")
	}
	return u, err
}

func (s *Users) ListUsers(ctx context.Context, sess *auth.Session) ([]models.User, error) {
	if err := sess.Require(auth.PermUserManage); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// Me returns the caller's profile.
func (s *Users) Me(ctx context.Context, sess *auth.Session) (*models.User, error) {
	if sess == nil {
		return nil, apperr.ErrUnauthenticated
	}
	return s.store.GetUser(ctx, sess.Subject)
}

// Bootstrap creates the first admin when email is set and no such user exists yet.
func (s *Users) Bootstrap(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	_, err := s.store.GetUserByEmail(ctx, strings.ToLower(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	u, err := s.create(ctx, models.NewUser{DisplayName: "Administrator", Email: email, Password: password, Role: models.RoleAdmin})
	if err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", zap.String("id", u.ID), zap.String("email", u.Email))
	return nil
}

func subjectOf(sess *auth.Session) string {
	if sess == nil {
		return ""
	}
	return sess.Subject
}
