package auth

import (
	"slices"
	"time"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/models"
)

// Session is built from verified token claims at the start of a request and dropped
// with it. Nothing here is read from the mutable user profile.
type Session struct {
	Subject         string
	Email           string
	Name            string
	Role            models.Role
	AssignedClasses []string
	ExpiresAt       time.Time
}

func (s *Session) Can(p Permission) bool {
	return s != nil && RoleCan(s.Role, p)
}

// Require returns apperr.ErrPermission when the session lacks p.
func (s *Session) Require(p Permission) error {
	if s == nil {
		return apperr.ErrUnauthenticated
	}
	if !s.Can(p) {
		return apperr.ErrPermission
	}
	return nil
}

func (s *Session) IsSuperAdmin() bool      { return s != nil && s.Role == models.RoleAdmin }
func (s *Session) IsViewerAdmin() bool     { return s != nil && isViewerAdmin(s.Role) }
func (s *Session) IsHomeroomTeacher() bool { return s != nil && s.Role == models.RoleHomeroomTeacher }
func (s *Session) IsProctor() bool         { return s != nil && s.Role == models.RoleProctor }

// Flags is the capability summary the UI renders from.
type Flags struct {
	SuperAdmin      bool     `json:"isSuperAdmin"`
	ViewerAdmin     bool     `json:"isViewerAdmin"`
	HomeroomTeacher bool     `json:"isHomeroomTeacher"`
	Proctor         bool     `json:"isProctor"`
	Permissions     []string `json:"permissions"`
}

func (s *Session) Flags() Flags {
	f := Flags{
		SuperAdmin:      s.IsSuperAdmin(),
		ViewerAdmin:     s.IsViewerAdmin(),
		HomeroomTeacher: s.IsHomeroomTeacher(),
		Proctor:         s.IsProctor(),
		Permissions:     []string{},
	}
	if s != nil {
		for _, p := range Permissions(s.Role) {
			f.Permissions = append(f.Permissions, p.String())
		}
	}
	return f
}

// ScopedToAssigned: видит ли пользователь только свои классы.
func (s *Session) ScopedToAssigned() bool {
	return !s.Can(PermRecordViewAll) && s.Can(PermRecordViewAssigned)
}

func (s *Session) CanSeeClass(classID string) bool {
	if s.Can(PermRecordViewAll) {
		return true
	}
	return s.Can(PermRecordViewAssigned) && slices.Contains(s.AssignedClasses, classID)
}
