package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/handlers/testutil"
)

type sessionPayload struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	LastUsedAt string `json:"last_used_at"`
}

func listSessions(t *testing.T, env *testutil.Env, token string) []sessionPayload {
	t.Helper()

	w := env.Request(http.MethodGet, "/api/sessions/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sessions []sessionPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &sessions)
	return sessions
}

func refreshSession(env *testutil.Env, refreshToken string) int {
	w := env.Request(http.MethodPost, "/api/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}, "")
	return w.Code
}

func TestSessionHandler_ListAndRevoke(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser("SessionUser1!", "viewer")

	first := env.Login(user.Username, "SessionUser1!")
	initial := listSessions(t, env, first.Tokens.AccessToken)
	require.Len(t, initial, 1)
	firstID := initial[0].ID

	second := env.Login(user.Username, "SessionUser1!")
	both := listSessions(t, env, first.Tokens.AccessToken)
	require.Len(t, both, 2)

	// Raw refresh tokens never appear in the listing.
	raw := env.Request(http.MethodGet, "/api/sessions/me", nil, first.Tokens.AccessToken)
	require.NotContains(t, raw.Body.String(), first.Tokens.RefreshToken)
	require.NotContains(t, raw.Body.String(), second.Tokens.RefreshToken)

	var secondID string
	for _, session := range both {
		if session.ID != firstID {
			secondID = session.ID
		}
	}
	require.NotEmpty(t, secondID)

	revoke := env.Request(http.MethodPost, "/api/sessions/revoke/"+secondID, nil, first.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, revoke.Code, revoke.Body.String())

	require.Equal(t, http.StatusUnauthorized, refreshSession(env, second.Tokens.RefreshToken))
	require.Equal(t, http.StatusOK, refreshSession(env, first.Tokens.RefreshToken))
}

func TestSessionHandler_RevokeAll(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser("SessionUser2!", "viewer")

	first := env.Login(user.Username, "SessionUser2!")
	second := env.Login(user.Username, "SessionUser2!")

	revoke := env.Request(http.MethodPost, "/api/sessions/revoke_all", nil, first.Tokens.AccessToken)
	require.Equal(t, http.StatusOK, revoke.Code, revoke.Body.String())

	require.Equal(t, http.StatusUnauthorized, refreshSession(env, first.Tokens.RefreshToken))
	require.Equal(t, http.StatusUnauthorized, refreshSession(env, second.Tokens.RefreshToken))
}

func TestSessionHandler_CannotRevokeForeignSession(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.CreateUser("SessionOwner1!", "viewer")
	ownerLogin := env.Login(owner.Username, "SessionOwner1!")
	ownerSessions := listSessions(t, env, ownerLogin.Tokens.AccessToken)
	require.Len(t, ownerSessions, 1)

	other := env.CreateUser("SessionOther1!", "viewer")
	otherLogin := env.Login(other.Username, "SessionOther1!")

	attempt := env.Request(http.MethodPost, "/api/sessions/revoke/"+ownerSessions[0].ID, nil, otherLogin.Tokens.AccessToken)
	require.Equal(t, http.StatusNotFound, attempt.Code, attempt.Body.String())

	// The targeted session keeps working.
	require.Equal(t, http.StatusOK, refreshSession(env, ownerLogin.Tokens.RefreshToken))
}
