package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"health-wizard/internal/domain"
)

type mockGetter struct {
	vals  map[string]string
	err   error
	calls int
}

func (m *mockGetter) GetParameter(_ context.Context, name string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.vals[name]
	if !ok {
		return "", fmt.Errorf("param not found: %s", name)
	}
	return v, nil
}

func tokenGetter(prefix string) *mockGetter {
	return &mockGetter{vals: map[string]string{
		prefix + "/open-ai-token": `{"token":"sk-test"}`,
	}}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(nil, "/wizard")
	require.Error(t, err)

	_, err = NewClient(&mockGetter{}, "   ")
	require.Error(t, err)

	c, err := NewClient(tokenGetter("/wizard"), "/wizard/")
	require.NoError(t, err)
	require.Equal(t, "/wizard/open-ai-token", c.tokenParameterName())
}

func TestChat_HappyPath(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "stay healthy"}},
			},
		})
	}))
	defer srv.Close()

	c, err := NewClient(tokenGetter("/wizard"), "/wizard", WithBaseURL(srv.URL))
	require.NoError(t, err)

	out, err := c.Chat(context.Background(), "gpt-4o-mini", []domain.ChatMessage{
		{Role: "user", Content: "write an overall health comment"},
	})
	require.NoError(t, err)
	require.Equal(t, "stay healthy", out)
	require.Equal(t, "Bearer sk-test", gotAuth)
	require.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
}

func TestChat_EmptyModel(t *testing.T) {
	c, err := NewClient(tokenGetter("/wizard"), "/wizard")
	require.NoError(t, err)
	_, err = c.Chat(context.Background(), "", nil)
	require.Error(t, err)
}

func TestChat_Non2xxReturnsHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient(tokenGetter("/wizard"), "/wizard", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), "gpt-4o-mini", nil)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusTooManyRequests, statusErr.HTTPStatusCode())
}

func TestChat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c, err := NewClient(tokenGetter("/wizard"), "/wizard", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), "gpt-4o-mini", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no choices")
}

func TestChat_KeyFetchedOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	getter := tokenGetter("/wizard")
	c, err := NewClient(getter, "/wizard", WithBaseURL(srv.URL))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = c.Chat(context.Background(), "gpt-4o-mini", nil)
		require.NoError(t, err)
	}
	require.Equal(t, 1, getter.calls)
}

func TestChat_TokenErrors(t *testing.T) {
	cases := []struct {
		name   string
		getter *mockGetter
	}{
		{name: "paramstore error", getter: &mockGetter{err: errors.New("ssm down")}},
		{name: "not json", getter: &mockGetter{vals: map[string]string{"/wizard/open-ai-token": "sk-raw"}}},
		{name: "empty token", getter: &mockGetter{vals: map[string]string{"/wizard/open-ai-token": `{"token":""}`}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewClient(tc.getter, "/wizard")
			require.NoError(t, err)
			_, err = c.Chat(context.Background(), "gpt-4o-mini", nil)
			require.Error(t, err)
		})
	}
}

func TestChatURL(t *testing.T) {
	require.Equal(t, "https://api.openai.com/v1/chat/completions", chatURL(""))
	require.Equal(t, "https://example.com/v1/chat/completions", chatURL("https://example.com"))
	require.Equal(t, "https://example.com/v1/chat/completions", chatURL("https://example.com/v1/"))
}
