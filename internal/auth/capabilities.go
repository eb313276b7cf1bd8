package auth

import "github.com/Spok95/school-discipline/internal/models"

type Permission int

const (
	PermRecordCreate Permission = iota + 1
	PermRecordCorrect
	PermRecordViewAll
	PermRecordViewAssigned
	PermRankingView
	PermRankingFinalize
	PermRankingExport
	PermRosterManage
	PermRosterView
	PermUserManage
	PermClaimsSet
	PermRulesSync
)

var permNames = map[Permission]string{
	PermRecordCreate:       "record:create",
	PermRecordCorrect:      "record:correct",
	PermRecordViewAll:      "record:view_all",
	PermRecordViewAssigned: "record:view_assigned",
	PermRankingView:        "ranking:view",
	PermRankingFinalize:    "ranking:finalize",
	PermRankingExport:      "ranking:export",
	PermRosterManage:       "roster:manage",
	PermRosterView:         "roster:view",
	PermUserManage:         "user:manage",
	PermClaimsSet:          "claims:set",
	PermRulesSync:          "rules:sync",
}

func (p Permission) String() string {
	if s, ok := permNames[p]; ok {
		return s
	}
	return "unknown"
}

type permSet map[Permission]struct{}

func set(ps ...Permission) permSet {
	s := make(permSet, len(ps))
	for _, p := range ps {
		s[p] = struct{}{}
	}
	return s
}

// capabilities: единственное место, где роль превращается в права.
var capabilities = map[models.Role]permSet{
	models.RoleAdmin: set(
		PermRecordCreate, PermRecordCorrect, PermRecordViewAll,
		PermRankingView, PermRankingFinalize, PermRankingExport,
		PermRosterManage, PermRosterView,
		PermUserManage, PermClaimsSet, PermRulesSync,
	),
	models.RolePrincipal: set(
		PermRecordViewAll, PermRankingView, PermRankingExport, PermRosterView,
	),
	models.RoleSupervisor: set(
		PermRecordViewAll, PermRankingView, PermRankingExport, PermRosterView,
	),
	models.RoleHomeroomTeacher: set(
		PermRecordCreate, PermRecordViewAssigned, PermRankingView, PermRosterView,
	),
	models.RoleProctor: set(
		PermRecordCreate, PermRecordCorrect, PermRecordViewAll, PermRankingView, PermRosterView,
	),
	models.RoleTeacher: set(
		PermRecordCreate, PermRankingView, PermRosterView,
	),
}

// RoleCan reports whether role grants p. RoleNone and unknown roles grant nothing.
func RoleCan(role models.Role, p Permission) bool {
	_, ok := capabilities[role][p]
	return ok
}

// Permissions lists what role grants, in declaration order.
func Permissions(role models.Role) []Permission {
	var out []Permission
	for p := PermRecordCreate; p <= PermRulesSync; p++ {
		if RoleCan(role, p) {
			out = append(out, p)
		}
	}
	return out
}

func isViewerAdmin(role models.Role) bool {
	return role == models.RolePrincipal || role == models.RoleSupervisor
}
