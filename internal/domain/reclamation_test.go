package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitionTable(t *testing.T) {
	cases := []struct {
		from    ReclamationStatus
		to      ReclamationStatus
		allowed bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusResolved, false},
		{StatusOpen, StatusClosed, false},
		{StatusInProgress, StatusOpen, true},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusClosed, false},
		{StatusResolved, StatusClosed, true},
		{StatusResolved, StatusOpen, false},
		{StatusResolved, StatusInProgress, false},
		{StatusClosed, StatusOpen, false},
		{StatusClosed, StatusInProgress, false},
		{StatusClosed, StatusResolved, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, StatusOpen.IsValid())
	assert.True(t, StatusInProgress.IsValid())
	assert.True(t, StatusResolved.IsValid())
	assert.True(t, StatusClosed.IsValid())
	assert.False(t, ReclamationStatus("ARCHIVED").IsValid())
	assert.False(t, ReclamationStatus("").IsValid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusClosed.IsTerminal())
	assert.False(t, StatusOpen.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.False(t, StatusResolved.IsTerminal())
	assert.False(t, ReclamationStatus("ARCHIVED").IsTerminal())
}

func TestStatusRequiresResolution(t *testing.T) {
	assert.True(t, StatusResolved.RequiresResolution())
	assert.True(t, StatusClosed.RequiresResolution())
	assert.False(t, StatusOpen.RequiresResolution())
	assert.False(t, StatusInProgress.RequiresResolution())
}

func TestIsTechnician(t *testing.T) {
	tech := &User{Role: RoleTechnician, Status: UserStatusActive}
	assert.True(t, tech.IsTechnician())

	suspended := &User{Role: RoleTechnician, Status: UserStatusSuspended}
	assert.False(t, suspended.IsTechnician())

	admin := &User{Role: RoleAdmin, Status: UserStatusActive}
	assert.False(t, admin.IsTechnician())

	var nilUser *User
	assert.False(t, nilUser.IsTechnician())
}
