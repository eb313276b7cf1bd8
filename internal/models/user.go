package models

import "time"

type Role string

const (
	RoleNone            Role = ""
	RoleAdmin           Role = "admin"
	RolePrincipal       Role = "principal"
	RoleSupervisor      Role = "supervisor"
	RoleHomeroomTeacher Role = "homeroom_teacher"
	RoleProctor         Role = "proctor"
	RoleTeacher         Role = "teacher"
)

var Roles = []Role{RoleAdmin, RolePrincipal, RoleSupervisor, RoleHomeroomTeacher, RoleProctor, RoleTeacher}

func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return RoleNone, false
}

// User: профиль. Role здесь только для отображения: права берутся из claims.
type User struct {
	ID              string    `db:"id" json:"id"`
	DisplayName     string    `db:"display_name" json:"displayName"`
	Email           string    `db:"email" json:"email"`
	Role            Role      `db:"role" json:"role"`
	AssignedClasses []string  `db:"assigned_classes" json:"assignedClasses"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	IsActive        bool      `db:"is_active" json:"isActive"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// UserClaims: то, что «провайдер идентичности» подписывает в токен.
type UserClaims struct {
	UserID          string    `db:"user_id" json:"uid"`
	Role            Role      `db:"role" json:"role"`
	AssignedClasses []string  `db:"assigned_classes" json:"assignedClasses"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

type NewUser struct {
	DisplayName string `json:"displayName" validate:"required,max=128"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Role        Role   `json:"role" validate:"omitempty,role"`
}

type SetClaimsInput struct {
	UID             string   `json:"uid" validate:"required,uuid"`
	Role            Role     `json:"role" validate:"required,role"`
	AssignedClasses []string `json:"assignedClasses" validate:"dive,uuid"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
