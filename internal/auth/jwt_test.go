package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestIssueAndParse(t *testing.T) {
	tok, err := IssueToken(secret, "owner-1", "landlord", time.Hour)
	require.NoError(t, err)

	c, err := ParseToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", c.Subject)
	assert.Equal(t, "landlord", c.Role)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := IssueToken(secret, "owner-1", "landlord", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(secret, expired)
	assert.Error(t, err)

	other, err := IssueToken("other-secret", "owner-1", "landlord", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(secret, other)
	assert.Error(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "x"}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = ParseToken(secret, hs512)
	assert.Error(t, err)

	_, err = IssueToken("", "owner-1", "", time.Hour)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	var seen string
	h := Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = OwnerID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid token","code":"UNAUTHORIZED"}`, rec.Body.String())

	tok, err := IssueToken(secret, "owner-9", "landlord", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "owner-9", seen)

	seen = ""
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live?access_token="+tok, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "owner-9", seen)
}
