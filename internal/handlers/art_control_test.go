package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/api"
	"github.com/virtualstage/backlot/internal/handlers/testutil"
)

type artControlPayload struct {
	ID        string `json:"id"`
	ColorMood string `json:"color_mood"`
	ArtStyle  string `json:"art_style"`
	FrameRate int    `json:"frame_rate"`
}

func TestArtControlHandler_StoryScope(t *testing.T) {
	env := testutil.NewEnvWithDeps(t, api.Deps{Parser: &cannedParser{result: rooftopParseResult()}})
	owner := env.CreateSuperuser("ArtDirector1!")
	token := env.Login(owner.Username, "ArtDirector1!").Tokens.AccessToken
	story := parseTestStory(t, env, token)

	base := "/api/ai-machines/stories/" + story.ID + "/art-control"

	// First read materialises the defaults.
	get := env.Request(http.MethodGet, base, nil, token)
	require.Equal(t, http.StatusOK, get.Code, get.Body.String())
	var fetched struct {
		Settings artControlPayload `json:"settings"`
		Created  bool              `json:"created"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, get).Data, &fetched)
	require.True(t, fetched.Created)
	require.Equal(t, "neutral", fetched.Settings.ColorMood)
	require.Equal(t, "realistic", fetched.Settings.ArtStyle)
	require.Equal(t, 24, fetched.Settings.FrameRate)

	// Second read finds the existing row.
	again := env.Request(http.MethodGet, base, nil, token)
	require.Equal(t, http.StatusOK, again.Code)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, again).Data, &fetched)
	require.False(t, fetched.Created)

	// Explicit create collides with the materialised row.
	conflict := env.Request(http.MethodPost, base, map[string]any{"art_style": "stylized"}, token)
	require.Equal(t, http.StatusBadRequest, conflict.Code, conflict.Body.String())

	update := env.Request(http.MethodPut, base, map[string]any{
		"color_mood": "warm",
		"frame_rate": 48,
	}, token)
	require.Equal(t, http.StatusOK, update.Code, update.Body.String())
	var updated artControlPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, update).Data, &updated)
	require.Equal(t, "warm", updated.ColorMood)
	require.Equal(t, 48, updated.FrameRate)
	// Untouched fields keep their values.
	require.Equal(t, "realistic", updated.ArtStyle)

	reset := env.Request(http.MethodDelete, base+"/reset", nil, token)
	require.Equal(t, http.StatusOK, reset.Code, reset.Body.String())
	var resetBody struct {
		Settings artControlPayload `json:"settings"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, reset).Data, &resetBody)
	require.Equal(t, "neutral", resetBody.Settings.ColorMood)
	require.Equal(t, 24, resetBody.Settings.FrameRate)
}

func TestArtControlHandler_SequenceAndShotScopes(t *testing.T) {
	env := testutil.NewEnvWithDeps(t, api.Deps{Parser: &cannedParser{result: rooftopParseResult()}})
	owner := env.CreateSuperuser("ArtDirector2!")
	token := env.Login(owner.Username, "ArtDirector2!").Tokens.AccessToken
	story := parseTestStory(t, env, token)

	seqBase := "/api/ai-machines/stories/" + story.ID + "/sequences/" + story.Sequences[0].ID + "/art-control"
	shotBase := "/api/ai-machines/stories/" + story.ID + "/shots/" + story.Shots[0].ID + "/art-control"

	create := env.Request(http.MethodPost, seqBase, map[string]any{
		"art_style":  "stylized",
		"color_mood": "cool",
	}, token)
	require.Equal(t, http.StatusCreated, create.Code, create.Body.String())
	var seqSettings artControlPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, create).Data, &seqSettings)
	require.Equal(t, "stylized", seqSettings.ArtStyle)

	// The shot scope is independent of the sequence scope.
	shotGet := env.Request(http.MethodGet, shotBase, nil, token)
	require.Equal(t, http.StatusOK, shotGet.Code, shotGet.Body.String())
	var shotFetched struct {
		Settings artControlPayload `json:"settings"`
		Created  bool              `json:"created"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, shotGet).Data, &shotFetched)
	require.True(t, shotFetched.Created)
	require.Equal(t, "realistic", shotFetched.Settings.ArtStyle)
	require.NotEqual(t, seqSettings.ID, shotFetched.Settings.ID)

	// Sequence-level delete resets in place.
	reset := env.Request(http.MethodDelete, seqBase, nil, token)
	require.Equal(t, http.StatusOK, reset.Code, reset.Body.String())
	seqAfter := env.Request(http.MethodGet, seqBase, nil, token)
	require.Equal(t, http.StatusOK, seqAfter.Code)
	var seqFetched struct {
		Settings artControlPayload `json:"settings"`
		Created  bool              `json:"created"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, seqAfter).Data, &seqFetched)
	require.False(t, seqFetched.Created)
	require.Equal(t, "realistic", seqFetched.Settings.ArtStyle)
}
