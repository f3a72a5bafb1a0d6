package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glintmarket/storefront/internal/models"
)

func TestUserDirectoryIsAdminGated(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceBearer := env.createUser("Alice", "alice@example.com", models.RoleUser)
	_, adminBearer := env.createUser("Root", "root@example.com", models.RoleAdmin)
	env.createAddress(alice.ID, "Home", true)

	denied := env.do(http.MethodGet, "/api/users", nil, aliceBearer)
	require.Equal(t, http.StatusForbidden, denied.Code)

	anonymous := env.do(http.MethodGet, "/api/users", nil, "")
	require.Equal(t, http.StatusUnauthorized, anonymous.Code)

	rec := env.do(http.MethodGet, "/api/users", nil, adminBearer)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []models.User
	env.decode(rec, &users)
	require.Len(t, users, 2)
	require.Len(t, users[0].Addresses, 1)
	require.NotContains(t, rec.Body.String(), "password")

	one := env.do(http.MethodGet, "/api/users/"+itoa(alice.ID), nil, adminBearer)
	require.Equal(t, http.StatusOK, one.Code)

	var user models.User
	env.decode(one, &user)
	require.Equal(t, "alice@example.com", user.Email)

	missing := env.do(http.MethodGet, "/api/users/99999", nil, adminBearer)
	require.Equal(t, http.StatusNotFound, missing.Code)
}
