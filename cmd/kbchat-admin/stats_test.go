package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaconworks/kb-chat-api/internal/ports"
)

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	err := printStats(&buf, ports.UserStats{
		TotalUsers:  3,
		UsersByRole: map[string]int{"user": 2, "admin": 1},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Total users:")
	assert.Contains(t, out, "admin:")
	assert.Contains(t, out, "user:")
}

func TestRunStats_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"FORBIDDEN","message":"insufficient permissions"}}`))
	}))
	defer srv.Close()

	apiURL = srv.URL
	statsToken = "test-token"
	t.Cleanup(func() { apiURL, statsToken = "", "" })

	var buf bytes.Buffer
	err := runStats(context.Background(), &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORBIDDEN")
}

func TestRunStats_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalUsers":5,"usersByRole":{"user":4,"admin":1}}`))
	}))
	defer srv.Close()

	apiURL = srv.URL
	statsToken = "test-token"
	t.Cleanup(func() { apiURL, statsToken = "", "" })

	var buf bytes.Buffer
	require.NoError(t, runStats(context.Background(), &buf))
	assert.Contains(t, buf.String(), "5")
}
