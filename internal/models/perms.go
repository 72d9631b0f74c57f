package models

import (
	"errors"
	"fmt"
)

var ErrPermDenied = errors.New("Missing permissions to execute action")

type Perm string
type Perms map[Perm]struct{}

func NewPerms(perms ...Perm) Perms {
	ps := Perms{}
	for _, p := range perms {
		ps[p] = struct{}{}
	}
	return ps
}

const (
	PermCreateReport  Perm = "create_report"
	PermCheckContent  Perm = "check_content"
	PermViewFlags     Perm = "view_flags"
	PermCreateFlag    Perm = "create_flag"
	PermResolveFlag   Perm = "resolve_flag"
	PermDeleteContent Perm = "delete_content"
	PermIssueStrike   Perm = "issue_strike"
	PermViewStrikes   Perm = "view_strikes"
	PermManageRules   Perm = "manage_rules"
	PermSuspendUser   Perm = "suspend_user"
	PermManageRole    Perm = "manage_role"
)

var PermsUser = NewPerms(
	PermCreateReport,
	PermCheckContent,
)

var PermsModerator = PermsUser.Union(NewPerms(
	PermViewFlags,
	PermCreateFlag,
	PermResolveFlag,
	PermDeleteContent,
	PermIssueStrike,
	PermViewStrikes,
	PermManageRules,
	PermSuspendUser,
))

var PermsAdmin = PermsModerator.Union(NewPerms(
	PermManageRole,
))

// PermsForRole returns the permission set granted by a role. Unknown roles get
// no permissions at all.
func PermsForRole(role Role) Perms {
	switch role {
	case RoleAdmin:
		return PermsAdmin
	case RoleModerator:
		return PermsModerator
	case RoleUser:
		return PermsUser
	}
	return NewPerms()
}

type ErrMissingPerms struct {
	Perms []Perm
}

func (mp ErrMissingPerms) Error() string {
	return fmt.Sprintf("missing permission %s", mp.Perms)
}
func (mp ErrMissingPerms) Unwrap() error {
	return ErrPermDenied
}

func (ps Perms) Require(reqPerms ...Perm) error {
	missing := []Perm{}
	for _, p := range reqPerms {
		if _, ok := ps[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return ErrMissingPerms{missing}
	}
	return nil
}

func (ps Perms) Check(reqPerms ...Perm) bool {
	return ps.Require(reqPerms...) == nil
}

func (ps Perms) SubsetOf(ps2 Perms) bool {
	for p := range ps {
		if _, ok := ps2[p]; !ok {
			return false
		}
	}
	return true
}
func (ps Perms) Union(ps2 Perms) Perms {
	allPerms := []Perm{}
	for p := range ps {
		allPerms = append(allPerms, p)
	}
	for p := range ps2 {
		allPerms = append(allPerms, p)
	}
	return NewPerms(allPerms...)
}

