package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLandingSingletonFlow(t *testing.T) {
	resetDatabase(t)
	ts := NewTestServer(testDB.DB)
	defer ts.Close()

	ctx := context.Background()

	// Unconfigured landing returns 404 to the public
	resp, err := ts.Request(http.MethodGet, "/landing", nil, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	email, password := TestUserCredentials("landing-admin")
	_, err = SeedAdmin(ctx, testDB.Pool, email, password, "admin", "Active")
	require.NoError(t, err)

	resp, err = ts.Request(http.MethodPost, "/auth/admin/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _, err := ExtractTokensFromResponse(resp)
	require.NoError(t, err)

	// Admin configures the landing document
	doc := map[string]interface{}{
		"hero": map[string]interface{}{"title": "Copy the traders you trust"},
	}
	resp, err = ts.RequestWithAuth(http.MethodPut, "/landing", token, doc)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Anyone can now read it
	resp, err = ts.Request(http.MethodGet, "/landing", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &got))
	content, ok := got["content"].(map[string]interface{})
	require.True(t, ok)
	hero, ok := content["hero"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Copy the traders you trust", hero["title"])

	// A second PUT replaces the document wholesale
	resp, err = ts.RequestWithAuth(http.MethodPut, "/landing", token, map[string]interface{}{
		"announcement": "Maintenance tonight",
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.Request(http.MethodGet, "/landing", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, ParseJSONResponse(resp, &got))
	content, ok = got["content"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Maintenance tonight", content["announcement"])
	assert.NotContains(t, content, "hero")

	// Exactly one row ever exists
	var count int
	require.NoError(t, testDB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM landing_settings`).Scan(&count))
	assert.Equal(t, 1, count)

	// Regular users cannot write it
	userEmail, userPassword := TestUserCredentials("landing-user")
	_, err = SeedUser(ctx, testDB.Pool, userEmail, userPassword)
	require.NoError(t, err)

	resp, err = ts.Request(http.MethodPost, "/auth/login", map[string]string{
		"email":    userEmail,
		"password": userPassword,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	userToken, _, err := ExtractTokensFromResponse(resp)
	require.NoError(t, err)

	resp, err = ts.RequestWithAuth(http.MethodPut, "/landing", userToken, doc)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
