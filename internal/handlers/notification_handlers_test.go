package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glintmarket/storefront/internal/models"
)

func (env *testEnv) createNotification(userID uint, title string) *models.Notification {
	env.T.Helper()
	n := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: "message body",
		Type:    models.NotificationSystem,
	}
	require.NoError(env.T, env.DB.Create(&n).Error)
	return &n
}

func TestListNotificationsOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerBearer := env.createUser("Alice", "alice@example.com", models.RoleUser)
	_, otherBearer := env.createUser("Bob", "bob@example.com", models.RoleUser)
	_, adminBearer := env.createUser("Root", "root@example.com", models.RoleAdmin)
	env.createNotification(owner.ID, "Welcome")

	own := env.do(http.MethodGet, "/api/notifications/"+itoa(owner.ID), nil, ownerBearer)
	require.Equal(t, http.StatusOK, own.Code)
	var list []models.Notification
	env.decode(own, &list)
	require.Len(t, list, 1)
	require.Equal(t, "Welcome", list[0].Title)
	require.False(t, list[0].IsRead)

	foreign := env.do(http.MethodGet, "/api/notifications/"+itoa(owner.ID), nil, otherBearer)
	require.Equal(t, http.StatusForbidden, foreign.Code)

	asAdmin := env.do(http.MethodGet, "/api/notifications/"+itoa(owner.ID), nil, adminBearer)
	require.Equal(t, http.StatusOK, asAdmin.Code)

	anonymous := env.do(http.MethodGet, "/api/notifications/"+itoa(owner.ID), nil, "")
	require.Equal(t, http.StatusUnauthorized, anonymous.Code)
}

func TestMarkNotificationRead(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerBearer := env.createUser("Alice", "alice@example.com", models.RoleUser)
	_, otherBearer := env.createUser("Bob", "bob@example.com", models.RoleUser)
	n := env.createNotification(owner.ID, "Welcome")

	foreign := env.do(http.MethodPatch, "/api/notifications/"+itoa(n.ID)+"/read", nil, otherBearer)
	require.Equal(t, http.StatusNotFound, foreign.Code)

	rec := env.do(http.MethodPatch, "/api/notifications/"+itoa(n.ID)+"/read", nil, ownerBearer)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Notification
	env.decode(rec, &updated)
	require.True(t, updated.IsRead)
}
