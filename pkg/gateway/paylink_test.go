package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
)

func TestCreateLink(t *testing.T) {
	var received createLinkRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/crear-enlace", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(createLinkResponse{URL: "https://pay.example/session/123"})
	}))
	defer server.Close()

	client := NewPaylinkClient(server.URL, time.Second)
	url, err := client.CreateLink(context.Background(), "Ana García", "Mensualidad", 45.5)

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session/123", url)
	assert.Equal(t, "Ana García", received.Student)
	assert.Equal(t, "Mensualidad", received.Concept)
	assert.Equal(t, 45.5, received.Amount)
}

func TestCreateLinkGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewPaylinkClient(server.URL, time.Second)
	_, err := client.CreateLink(context.Background(), "Ana", "Mensualidad", 45)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGateway.Code, appErrors.FromError(err).Code)
}

func TestCreateLinkEmptyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(createLinkResponse{})
	}))
	defer server.Close()

	client := NewPaylinkClient(server.URL, time.Second)
	_, err := client.CreateLink(context.Background(), "Ana", "Mensualidad", 45)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGateway.Code, appErrors.FromError(err).Code)
}

func TestCreateLinkUnreachable(t *testing.T) {
	client := NewPaylinkClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.CreateLink(context.Background(), "Ana", "Mensualidad", 45)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGateway.Code, appErrors.FromError(err).Code)
}
