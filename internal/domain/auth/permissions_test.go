package auth

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewshift/internal/domain/apperr"
)

func TestAuthorize(t *testing.T) {
	manager := &Identity{ID: "m1", Role: RoleManager}
	worker := &Identity{ID: "w1", Role: RoleWorker}
	client := &Identity{ID: "c1", Role: RoleClient}

	tests := []struct {
		name    string
		caller  *Identity
		allowed []Role
		want    apperr.Kind
	}{
		{name: "nil caller", caller: nil, allowed: []Role{RoleManager}, want: apperr.KindUnauthenticated},
		{name: "empty id", caller: &Identity{Role: RoleManager}, allowed: []Role{RoleManager}, want: apperr.KindUnauthenticated},
		{name: "manager allowed", caller: manager, allowed: []Role{RoleManager}, want: apperr.KindUnknown},
		{name: "worker denied", caller: worker, allowed: []Role{RoleManager}, want: apperr.KindForbidden},
		{name: "client denied", caller: client, allowed: []Role{RoleManager, RoleWorker}, want: apperr.KindForbidden},
		{name: "worker in set", caller: worker, allowed: []Role{RoleManager, RoleWorker}, want: apperr.KindUnknown},
		{name: "empty set", caller: manager, allowed: nil, want: apperr.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Authorize(tt.caller, tt.allowed...)
			assert.Equal(t, tt.want, apperr.KindOf(err))
			if err == nil {
				assert.Equal(t, *tt.caller, got)
			}
		})
	}
}

func TestAuthorizeUnauthenticatedIsSentinel(t *testing.T) {
	_, err := Authorize(nil, RoleManager)
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
	assert.False(t, errors.Is(err, apperr.ErrForbidden))
}

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"MANAGER", "manager", " Worker ", "CLIENT"} {
		role, err := ParseRole(raw)
		require.NoError(t, err, raw)
		assert.True(t, role.Valid())
	}
	_, err := ParseRole("ADMIN")
	assert.Error(t, err)
}

func TestRoleJSON(t *testing.T) {
	payload, err := json.Marshal(Identity{ID: "w1", Role: RoleWorker})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"w1","role":"WORKER"}`, string(payload))

	var decoded Identity
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","role":"client"}`), &decoded))
	assert.Equal(t, Identity{ID: "c1", Role: RoleClient}, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"id":"x","role":"ROOT"}`), &decoded))
}

func TestErrForbiddenRole(t *testing.T) {
	err := ErrForbiddenRole("shifts.List")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}
