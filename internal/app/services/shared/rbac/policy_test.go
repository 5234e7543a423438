package rbac

import (
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/responses"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyRouteMatrix(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	cases := []struct {
		role    string
		object  string
		action  string
		allowed bool
	}{
		{constvars.RolePatient, ObjectPatients, ActionList, false},
		{constvars.RoleProvider, ObjectPatients, ActionList, true},
		{constvars.RoleProvider, ObjectPatients, ActionDelete, false},
		{constvars.RoleAdmin, ObjectPatients, ActionDelete, true},
		{constvars.RolePatient, ObjectRecords, ActionAccess, false},
		{constvars.RoleProvider, ObjectRecords, ActionAccess, true},
		{constvars.RolePatient, ObjectPractitioners, ActionRead, true},
		{constvars.RoleProvider, ObjectPractitioners, ActionCreate, false},
		{constvars.RolePatient, ObjectAppointments, ActionCreate, true},
		{constvars.RolePatient, ObjectAppointments, ActionUpdate, false},
		{constvars.RolePatient, ObjectObservations, ActionList, true},
		{constvars.RolePatient, ObjectMedications, ActionCreate, false},
		{constvars.RoleProvider, ObjectResources, ActionUpdate, true},
		{constvars.RoleProvider, ObjectResources, ActionDelete, false},
		{"guest", ObjectResources, ActionRead, false},
	}
	for _, tc := range cases {
		allowed, err := policy.Allowed(tc.role, tc.object, tc.action)
		require.NoError(t, err)
		assert.Equal(t, tc.allowed, allowed, "%s %s %s", tc.role, tc.action, tc.object)
	}
}

func TestRequiredRolesKeepPolicyOrder(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	roles, err := policy.RequiredRoles(ObjectPatients, ActionList)
	require.NoError(t, err)
	assert.Equal(t, []string{constvars.RoleProvider, constvars.RoleAdmin}, roles)

	roles, err = policy.RequiredRoles(ObjectAppointments, ActionCreate)
	require.NoError(t, err)
	assert.Equal(t, []string{constvars.RolePatient, constvars.RoleProvider, constvars.RoleAdmin}, roles)

	roles, err = policy.RequiredRoles("billing", ActionRead)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestGrant(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	object := RoleSetObject(constvars.RoleAdmin, constvars.RoleProvider)
	assert.Equal(t, "roles:admin|provider", object)

	require.NoError(t, policy.Grant(object, ActionAccess, constvars.RoleAdmin, constvars.RoleProvider))
	require.NoError(t, policy.Grant(object, ActionAccess, constvars.RoleAdmin, constvars.RoleProvider), "granting twice is a no-op")

	roles, err := policy.RequiredRoles(object, ActionAccess)
	require.NoError(t, err)
	assert.Equal(t, []string{constvars.RoleAdmin, constvars.RoleProvider}, roles)

	allowed, err := policy.Allowed(constvars.RoleProvider, object, ActionAccess)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = policy.Allowed(constvars.RolePatient, object, ActionAccess)
	require.NoError(t, err)
	assert.False(t, allowed)

	rules, err := policy.Rules()
	require.NoError(t, err)
	assert.Contains(t, rules, responses.AccessRule{Role: constvars.RoleProvider, Object: object, Action: ActionAccess})
	assert.Contains(t, rules, responses.AccessRule{Role: constvars.RoleAdmin, Object: ObjectPatients, Action: ActionDelete})
}
