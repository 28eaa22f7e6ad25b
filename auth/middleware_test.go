package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/storefront-go/config"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:     testSecret,
		TokenDuration: time.Hour,
	}
}

func runMiddleware(t *testing.T, authHeader string) (*httptest.ResponseRecorder, *uuid.UUID) {
	t.Helper()

	var captured *uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := UserIDFromContext(r.Context()); ok {
			captured = &id
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()

	RequireToken(testAuthConfig())(next).ServeHTTP(rec, req)
	return rec, captured
}

func TestRequireTokenMissingHeader(t *testing.T) {
	rec, captured := runMiddleware(t, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authorization header is missing", body["error"])
}

func TestRequireTokenBadFormat(t *testing.T) {
	for _, header := range []string{"Bearer", "Token abc", "Bearer a b"} {
		rec, captured := runMiddleware(t, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Nil(t, captured)
	}
}

func TestRequireTokenInvalidToken(t *testing.T) {
	rec, captured := runMiddleware(t, "Bearer not-a-real-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestRequireTokenValid(t *testing.T) {
	userID := uuid.New()
	tokenString, err := IssueToken(userID, "alice", "alice@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	rec, captured := runMiddleware(t, "Bearer "+tokenString)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, userID, *captured)
}

func TestUserIDFromContextAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)
}
