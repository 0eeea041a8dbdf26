package service

import (
	"testing"

	"meridian/internal/core"

	"github.com/stretchr/testify/assert"
)

func claimsWith(entries ...core.PermissionEntry) *core.Claims {
	return &core.Claims{
		UserID:      "user-1",
		Role:        core.RoleOperator,
		Permissions: entries,
	}
}

func TestDecide_exactMatch(t *testing.T) {
	claims := claimsWith(core.PermissionEntry{Resource: "branches", Action: "read"})

	assert.True(t, decide(claims, core.ResourceBranch, core.ActionRead))
	assert.False(t, decide(claims, core.ResourceBranch, core.ActionCreate))
	assert.False(t, decide(claims, core.ResourceDivision, core.ActionRead))
}

func TestDecide_manageCoversAllActions(t *testing.T) {
	claims := claimsWith(core.PermissionEntry{Resource: "branches", Action: "manage"})

	assert.True(t, decide(claims, core.ResourceBranch, core.ActionRead))
	assert.True(t, decide(claims, core.ResourceBranch, core.ActionDelete))
	assert.False(t, decide(claims, core.ResourceDivision, core.ActionRead))
}

func TestDecide_resourceWildcardNeedsActionWildcard(t *testing.T) {
	// {*, read} 不是合法授權形式，不能放行任何資源
	claims := claimsWith(core.PermissionEntry{Resource: "*", Action: "read"})

	assert.False(t, decide(claims, core.ResourceBranch, core.ActionRead))
	assert.False(t, decide(claims, core.ResourceServiceArea, core.ActionRead))

	claims = claimsWith(core.PermissionEntry{Resource: "*", Action: "manage"})
	assert.False(t, decide(claims, core.ResourceBranch, core.ActionRead))
}

func TestDecide_fullWildcard(t *testing.T) {
	claims := claimsWith(core.PermissionEntry{Resource: "*", Action: "*"})

	assert.True(t, decide(claims, core.ResourcePosition, core.ActionDelete))
}

func TestDecide_noPermissions(t *testing.T) {
	assert.False(t, decide(claimsWith(), core.ResourceBranch, core.ActionRead))
}
