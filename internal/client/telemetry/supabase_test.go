package telemetry_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/supabase-go"

	"partner-media-backend/internal/client/telemetry"
)

func TestSupabaseSink_RecordsLoginOnProfile(t *testing.T) {
	var (
		method string
		path   string
		query  string
		body   map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		query = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(server.Close)

	sb, err := supabase.NewClient(server.URL, "anon-key", nil)
	require.NoError(t, err)

	userID := uuid.New().String()
	err = telemetry.NewSupabaseSink(sb).Send(context.Background(), telemetry.Event{
		Name: "login",
		At:   time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		Fields: map[string]any{
			"user_id":   userID,
			"device_id": "device-1",
			"method":    "password",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/rest/v1/user_profiles", path)
	assert.Contains(t, query, "user_id=eq."+userID)
	assert.Equal(t, "device-1", body["last_device_id"])
	assert.Equal(t, "2026-02-03T04:05:06Z", body["last_login_at"])
}

func TestSupabaseSink_IgnoresOtherEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	t.Cleanup(server.Close)

	sb, err := supabase.NewClient(server.URL, "anon-key", nil)
	require.NoError(t, err)

	assert.NoError(t, telemetry.NewSupabaseSink(sb).Send(context.Background(), telemetry.Event{Name: "debug"}))
}

func TestSupabaseSink_RejectsLoginWithoutUser(t *testing.T) {
	sb, err := supabase.NewClient("http://localhost:1", "anon-key", nil)
	require.NoError(t, err)

	err = telemetry.NewSupabaseSink(sb).Send(context.Background(), telemetry.Event{
		Name:   "login",
		Fields: map[string]any{"device_id": "device-1"},
	})
	assert.Error(t, err)
}
