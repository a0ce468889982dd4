package chain

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyUnconfiguredFailsOpen(t *testing.T) {
	oracle := NewOracle("", "")
	assert.False(t, oracle.Configured())
	assert.True(t, oracle.Verify("d1", "hash"))
}

func TestVerifyConfirmedRegistration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "0xregistry", req.Contract)
		assert.Equal(t, "d1", req.DeviceID)
		assert.Equal(t, "hash", req.TokenHash)

		_ = json.NewEncoder(w).Encode(verifyResponse{Verified: true})
	}))
	defer server.Close()

	oracle := NewOracle(server.URL, "0xregistry")
	assert.True(t, oracle.Verify("d1", "hash"))
}

func TestVerifyRejectedRegistration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(verifyResponse{Verified: false})
	}))
	defer server.Close()

	oracle := NewOracle(server.URL, "")
	assert.False(t, oracle.Verify("d1", "hash"))
}

func TestVerifyFailsClosedOnRegistryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	oracle := NewOracle(server.URL, "")
	assert.False(t, oracle.Verify("d1", "hash"))
}

func TestVerifyFailsClosedOnBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	oracle := NewOracle(server.URL, "")
	assert.False(t, oracle.Verify("d1", "hash"))
}

func TestVerifyFailsClosedOnUnreachableRegistry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // unreachable from here on

	oracle := NewOracle(server.URL, "")
	assert.False(t, oracle.Verify("d1", "hash"))
}
