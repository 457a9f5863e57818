package user

import "testing"

func TestMaxRolePriority(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  int
	}{
		{"no roles", nil, 0},
		{"unknown role", []string{"lol"}, 0},
		{"parent", []string{RoleParent}, 1},
		{"nanny", []string{RoleNanny}, 11},
		{"admin", []string{RoleAdmin}, 21},
		{"moderator outranks admin", []string{RoleAdmin, RoleAdminModerator}, 29},
		{"owner outranks all", AllRoles, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxRolePriority(tt.roles); got != tt.want {
				t.Errorf("MaxRolePriority() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestUser_roleHelpers(t *testing.T) {
	nanny := User{Roles: []string{RoleNanny}}
	parent := User{Roles: []string{RoleParent}}
	moderator := User{Roles: []string{RoleAdminModerator}}

	if !nanny.IsNanny() || nanny.IsParent() || nanny.IsAdmin() {
		t.Errorf("nanny roles misread: %v", nanny.Roles)
	}
	if !parent.IsParent() || parent.IsNanny() || parent.IsAdmin() {
		t.Errorf("parent roles misread: %v", parent.Roles)
	}
	if !moderator.IsAdmin() || !moderator.IsModerator() {
		t.Errorf("moderator roles misread: %v", moderator.Roles)
	}
}
