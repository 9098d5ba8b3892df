package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/handlers/testutil"
)

type invitationPayload struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Token          string `json:"token"`
	Status         string `json:"status"`
	OrganizationID string `json:"organization_id"`
}

func createTestOrganization(t *testing.T, env *testutil.Env, token, name string) string {
	t.Helper()
	w := env.Request(http.MethodPost, "/api/auth/organizations", map[string]any{"name": name}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var org struct {
		ID string `json:"id"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &org)
	return org.ID
}

func TestInvitationHandler_FullLifecycle(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateSuperuser("InviteAdmin1!")
	adminToken := env.Login(admin.Username, "InviteAdmin1!").Tokens.AccessToken

	orgID := createTestOrganization(t, env, adminToken, "Backlot Pictures")

	create := env.Request(http.MethodPost, "/api/auth/invitations", map[string]any{
		"email":           "newhire@example.com",
		"organization_id": orgID,
	}, adminToken)
	require.Equal(t, http.StatusCreated, create.Code, create.Body.String())
	var invitation invitationPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, create).Data, &invitation)
	require.NotEmpty(t, invitation.Token)
	require.Equal(t, "pending", invitation.Status)

	list := env.Request(http.MethodGet, "/api/auth/invitations?organization_id="+orgID, nil, adminToken)
	require.Equal(t, http.StatusOK, list.Code)
	var invitations []invitationPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, list).Data, &invitations)
	require.Len(t, invitations, 1)

	// The emailed link resolves without authentication.
	lookup := env.Request(http.MethodGet, "/api/auth/invitations/"+invitation.Token, nil, "")
	require.Equal(t, http.StatusOK, lookup.Code, lookup.Body.String())

	// The invitee registers with the invited address, then accepts.
	register := env.Request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "newhire",
		"email":    "newhire@example.com",
		"password": "Welcome2TheLot!",
	}, "")
	require.Equal(t, http.StatusCreated, register.Code, register.Body.String())
	inviteeToken := env.Login("newhire", "Welcome2TheLot!").Tokens.AccessToken

	accept := env.Request(http.MethodPost, "/api/auth/invitations/"+invitation.Token+"/accept", nil, inviteeToken)
	require.Equal(t, http.StatusOK, accept.Code, accept.Body.String())
	var accepted struct {
		User testutil.UserPayload `json:"user"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, accept).Data, &accepted)
	require.Equal(t, "newhire", accepted.User.Username)

	// Consumed invitations stop resolving.
	replay := env.Request(http.MethodPost, "/api/auth/invitations/"+invitation.Token+"/accept", nil, inviteeToken)
	require.Equal(t, http.StatusBadRequest, replay.Code)
}

func TestInvitationHandler_EmailMismatchRejected(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateSuperuser("InviteAdmin2!")
	adminToken := env.Login(admin.Username, "InviteAdmin2!").Tokens.AccessToken

	orgID := createTestOrganization(t, env, adminToken, "Second Unit")

	create := env.Request(http.MethodPost, "/api/auth/invitations", map[string]any{
		"email":           "invited@example.com",
		"organization_id": orgID,
	}, adminToken)
	require.Equal(t, http.StatusCreated, create.Code, create.Body.String())
	var invitation invitationPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, create).Data, &invitation)

	interloper := env.CreateSuperuser("Interloper1!")
	otherToken := env.Login(interloper.Username, "Interloper1!").Tokens.AccessToken

	accept := env.Request(http.MethodPost, "/api/auth/invitations/"+invitation.Token+"/accept", nil, otherToken)
	require.Equal(t, http.StatusBadRequest, accept.Code, accept.Body.String())
}

func TestInvitationHandler_CancelAndQR(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateSuperuser("InviteAdmin3!")
	adminToken := env.Login(admin.Username, "InviteAdmin3!").Tokens.AccessToken

	orgID := createTestOrganization(t, env, adminToken, "Night Shoots")

	create := env.Request(http.MethodPost, "/api/auth/invitations", map[string]any{
		"email":           "cancelme@example.com",
		"organization_id": orgID,
	}, adminToken)
	require.Equal(t, http.StatusCreated, create.Code, create.Body.String())
	var invitation invitationPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, create).Data, &invitation)

	qr := env.Request(http.MethodGet, "/api/auth/invitations/"+invitation.ID+"/qr", nil, adminToken)
	require.Equal(t, http.StatusOK, qr.Code)
	require.Equal(t, "image/png", qr.Header().Get("Content-Type"))
	require.NotEmpty(t, qr.Body.Bytes())

	// A user who neither sent the invitation nor holds admin.users may not
	// withdraw it.
	outsider := env.CreateUser("Outsider1!", "viewer")
	outsiderToken := env.Login(outsider.Username, "Outsider1!").Tokens.AccessToken
	denied := env.Request(http.MethodPost, "/api/auth/invitations/"+invitation.ID+"/cancel", nil, outsiderToken)
	require.Equal(t, http.StatusForbidden, denied.Code, denied.Body.String())

	cancel := env.Request(http.MethodPost, "/api/auth/invitations/"+invitation.ID+"/cancel", nil, adminToken)
	require.Equal(t, http.StatusOK, cancel.Code, cancel.Body.String())
	var cancelled invitationPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, cancel).Data, &cancelled)
	require.Equal(t, "cancelled", cancelled.Status)

	// Cancelled invitations no longer resolve publicly.
	lookup := env.Request(http.MethodGet, "/api/auth/invitations/"+invitation.Token, nil, "")
	require.Equal(t, http.StatusBadRequest, lookup.Code, lookup.Body.String())
}
