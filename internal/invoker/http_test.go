package invoker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-dispatch-service/internal/service"
)

func TestInvoke_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload service.InvocationPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "do the thing", payload.Message)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer":42}`))
	}))
	defer srv.Close()

	raw, err := New().Invoke(context.Background(), srv.URL, service.InvocationPayload{
		Message: "do the thing",
		Context: json.RawMessage(`{"sessionId":"s1"}`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":42}`, string(raw))
}

func TestInvoke_NonJSONBodyIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text answer"))
	}))
	defer srv.Close()

	raw, err := New().Invoke(context.Background(), srv.URL, service.InvocationPayload{})
	require.NoError(t, err)

	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, "plain text answer", s)
}

func TestInvoke_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "agent exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New().Invoke(context.Background(), srv.URL, service.InvocationPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "agent exploded")
}

func TestInvoke_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := New().Invoke(ctx, srv.URL, service.InvocationPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestInvoke_ConnectionRefused(t *testing.T) {
	_, err := New().Invoke(context.Background(), "http://127.0.0.1:1/invoke", service.InvocationPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent call failed")
}
