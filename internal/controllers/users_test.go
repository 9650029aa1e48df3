package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"meetbase/internal/auth"
	"meetbase/internal/models"
)

func TestUsersList_AdminOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.createUser(t, "Admin", "admin@x.com", models.RoleAdmin)
	student := env.createUser(t, "S", "s@x.com", models.RoleStudent)

	w := env.do(t, "GET", "/users", env.tokenFor(t, student), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "GET", "/users", env.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode(t, w)["users"].([]interface{})
	require.Len(t, users, 2)
	for _, u := range users {
		require.NotContains(t, u.(map[string]interface{}), "password")
	}
}

func TestUserUpdate_SelfAndAdmin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.createUser(t, "Admin", "admin@x.com", models.RoleAdmin)
	u1 := env.createUser(t, "U1", "u1@x.com", models.RoleStudent)
	u2 := env.createUser(t, "U2", "u2@x.com", models.RoleStudent)

	// self update
	w := env.do(t, "PUT", path("/users/%d", u1.ID), env.tokenFor(t, u1), map[string]string{"name": "U1 Renamed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "U1 Renamed", decode(t, w)["user"].(map[string]interface{})["name"])

	// another student is denied
	w = env.do(t, "PUT", path("/users/%d", u1.ID), env.tokenFor(t, u2), map[string]string{"name": "hijack"})
	require.Equal(t, http.StatusForbidden, w.Code)

	// admin may update anyone
	w = env.do(t, "PUT", path("/users/%d", u1.ID), env.tokenFor(t, admin), map[string]string{"role": models.RoleAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.RoleAdmin, decode(t, w)["user"].(map[string]interface{})["role"])
}

func TestUserUpdate_PasswordIsRehashed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	u1 := env.createUser(t, "U1", "u1@x.com", models.RoleStudent)

	w := env.do(t, "PUT", path("/users/%d", u1.ID), env.tokenFor(t, u1), map[string]string{"password": "newpass"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.User
	require.NoError(t, env.db.First(&updated, u1.ID).Error)
	require.NotEqual(t, "newpass", updated.Password, "password must be stored hashed")
	require.NoError(t, auth.CheckPasswordHash(updated.Password, "newpass"))

	w = env.do(t, "POST", "/login", "", map[string]string{"email": "u1@x.com", "password": "newpass"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserUpdate_DuplicateEmail(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	u1 := env.createUser(t, "U1", "u1@x.com", models.RoleStudent)
	env.createUser(t, "U2", "u2@x.com", models.RoleStudent)

	w := env.do(t, "PUT", path("/users/%d", u1.ID), env.tokenFor(t, u1), map[string]string{"email": "u2@x.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decode(t, w)["error"], "already exists")
}

func TestUserUpdate_NotFoundBeforePolicy(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	student := env.createUser(t, "S", "s@x.com", models.RoleStudent)

	// a student who would be denied still sees 404 for a missing user
	w := env.do(t, "PUT", "/users/9999", env.tokenFor(t, student), map[string]string{"name": "x"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserDelete(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.createUser(t, "Admin", "admin@x.com", models.RoleAdmin)
	u1 := env.createUser(t, "U1", "u1@x.com", models.RoleStudent)
	u2 := env.createUser(t, "U2", "u2@x.com", models.RoleStudent)

	// unrelated student denied
	w := env.do(t, "DELETE", path("/users/%d", u1.ID), env.tokenFor(t, u2), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// self delete
	w = env.do(t, "DELETE", path("/users/%d", u1.ID), env.tokenFor(t, u1), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "User deleted successfully", decode(t, w)["message"])

	// admin deletes another user
	w = env.do(t, "DELETE", path("/users/%d", u2.ID), env.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// gone now
	w = env.do(t, "DELETE", path("/users/%d", u2.ID), env.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserDelete_LeavesParticipants(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := env.createUser(t, "Admin", "admin@x.com", models.RoleAdmin)
	u1 := env.createUser(t, "U1", "u1@x.com", models.RoleStudent)
	meeting := env.createMeeting(t, admin.ID)
	env.createParticipant(t, meeting.ID, u1.ID)

	w := env.do(t, "DELETE", path("/users/%d", u1.ID), env.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	env.db.Model(&models.Participant{}).Where("user_id = ?", u1.ID).Count(&count)
	require.EqualValues(t, 1, count, "no cascade: participant rows stay")
}
