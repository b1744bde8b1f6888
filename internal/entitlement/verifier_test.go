package entitlement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-entitlement-secret"

func signEntitlementToken(t *testing.T, secret, productID string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"product_id": productID,
		"exp":        expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func entitlementsHandler(t *testing.T, tokens map[string]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var items []map[string]string
		for productID, token := range tokens {
			items = append(items, map[string]string{"product_id": productID, "token": token})
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"entitlements": items}))
	}
}

func TestCurrentEntitlements(t *testing.T) {
	token := signEntitlementToken(t, testSecret, testProductID, time.Now().Add(time.Hour))
	server := httptest.NewServer(entitlementsHandler(t, map[string]string{testProductID: token}))
	defer server.Close()

	v := NewHTTPVerifier(server.URL, testSecret, zap.NewNop())

	products, err := v.CurrentEntitlements(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{testProductID}, products)
}

func TestCurrentEntitlementsDropsBadSignature(t *testing.T) {
	token := signEntitlementToken(t, "wrong-secret", testProductID, time.Now().Add(time.Hour))
	server := httptest.NewServer(entitlementsHandler(t, map[string]string{testProductID: token}))
	defer server.Close()

	v := NewHTTPVerifier(server.URL, testSecret, zap.NewNop())

	products, err := v.CurrentEntitlements(context.Background())
	require.NoError(t, err)

	assert.Empty(t, products)
}

func TestCurrentEntitlementsDropsExpiredToken(t *testing.T) {
	token := signEntitlementToken(t, testSecret, testProductID, time.Now().Add(-time.Hour))
	server := httptest.NewServer(entitlementsHandler(t, map[string]string{testProductID: token}))
	defer server.Close()

	v := NewHTTPVerifier(server.URL, testSecret, zap.NewNop())

	products, err := v.CurrentEntitlements(context.Background())
	require.NoError(t, err)

	assert.Empty(t, products)
}

func TestCurrentEntitlementsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	v := NewHTTPVerifier(server.URL, testSecret, zap.NewNop())

	_, err := v.CurrentEntitlements(context.Background())
	assert.Error(t, err)
}

func TestPurchase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/purchase", r.URL.Path)

		var req struct {
			ProductID string `json:"product_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testProductID, req.ProductID)

		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))
	defer server.Close()

	v := NewHTTPVerifier(server.URL, testSecret, zap.NewNop())

	ok, err := v.Purchase(context.Background(), testProductID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRestoreNothingToRestore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/restore", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]bool{"restored": false})
	}))
	defer server.Close()

	v := NewHTTPVerifier(server.URL, testSecret, zap.NewNop())

	ok, err := v.Restore(context.Background(), testProductID)
	require.NoError(t, err)
	assert.False(t, ok)
}
