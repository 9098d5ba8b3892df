package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterPreventsDuplicates(t *testing.T) {
	id := "test.unique.permission"
	err := Register(&Permission{
		ID:     id,
		Module: "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		removePermission(id)
	})

	err = Register(&Permission{
		ID:     id,
		Module: "test",
	})
	require.Error(t, err)
}

func TestRegisterRejectsEmptyID(t *testing.T) {
	require.Error(t, Register(&Permission{Module: "test"}))
	require.Error(t, Register(nil))
}

func TestGetByModuleFiltersCatalog(t *testing.T) {
	perms := GetByModule("stories")
	require.NotEmpty(t, perms)
	for _, perm := range perms {
		require.Equal(t, "stories", perm.Module)
	}

	ids := make([]string, 0, len(perms))
	for _, perm := range perms {
		ids = append(ids, perm.ID)
	}
	require.Contains(t, ids, "stories.view")
	require.Contains(t, ids, "stories.duplicate")
	require.Contains(t, ids, "stories.export")
}

func TestCatalogRegistersAdminPermissions(t *testing.T) {
	for _, id := range []string{"admin.users", "admin.teams", "admin.roles", "admin.settings"} {
		perm, ok := Get(id)
		require.True(t, ok, "expected %s to be registered", id)
		require.Equal(t, "admin", perm.Module)
	}
}
