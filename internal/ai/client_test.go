package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func completionResponse(t *testing.T, content string) []byte {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	require.NoError(t, err)
	return payload
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{APIKey: "   "})
	require.Error(t, err)
}

func TestCreateCompletionSendsChatRequest(t *testing.T) {
	var captured map[string]any
	var authz string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		authz = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionResponse(t, `{"ok":true}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	content, err := client.CreateCompletion(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "hello"},
		},
		Temperature:  0.3,
		MaxTokens:    4000,
		JSONResponse: true,
	})
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, content)

	require.Equal(t, "Bearer sk-test", authz)
	require.Equal(t, "gpt-4o", captured["model"])
	require.InDelta(t, 0.3, captured["temperature"].(float64), 0.001)
	require.EqualValues(t, 4000, captured["max_tokens"])

	format := captured["response_format"].(map[string]any)
	require.Equal(t, "json_object", format["type"])

	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
}

func TestCreateCompletionErrorNeverEchoesKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "sk-secret-123", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.CreateCompletion(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	require.Error(t, err)
	require.NotContains(t, err.Error(), "sk-secret-123")
	require.Contains(t, err.Error(), "500")
}

func TestCreateCompletionDetectsResponseFormatRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"response_format is not supported with this model"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.CreateCompletion(context.Background(), CompletionRequest{
		Messages:     []Message{{Role: "user", Content: "hello"}},
		JSONResponse: true,
	})
	require.ErrorIs(t, err, ErrResponseFormat)
}

func TestCreateCompletionRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.CreateCompletion(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no choices")
}
