package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"acervo/internal/models"
	"acervo/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommunityRoutes(t *testing.T) {
	env := setupTestServer(t, testConfig())
	agro := testutil.CreateCommunity(t, env.db, "Agronomia")
	testutil.CreateCommunity(t, env.db, "Computação")
	now := time.Now().UTC()
	testutil.CreatePost(t, env.db, "Older", "c", "a", &agro.ID, now.Add(-time.Hour))
	testutil.CreatePost(t, env.db, "Newer", "c", "b", &agro.ID, now)
	testutil.CreatePost(t, env.db, "Untagged", "c", "c", nil, now)

	t.Run("list", func(t *testing.T) {
		status, body := doRequest(t, env.app, httptest.NewRequest(http.MethodGet, "/api/communities", nil))
		require.Equal(t, http.StatusOK, status)
		var got []models.Community
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Len(t, got, 2)
	})

	t.Run("get", func(t *testing.T) {
		status, body := doRequest(t, env.app, httptest.NewRequest(http.MethodGet, "/api/communities/1", nil))
		require.Equal(t, http.StatusOK, status)
		var got models.Community
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Agronomia", got.Name)
	})

	t.Run("get unknown", func(t *testing.T) {
		status, body := doRequest(t, env.app, httptest.NewRequest(http.MethodGet, "/api/communities/77", nil))
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, models.CodeNotFound, decodeError(t, body).Code)
	})

	t.Run("posts newest first with name", func(t *testing.T) {
		status, body := doRequest(t, env.app, httptest.NewRequest(http.MethodGet, "/api/communities/1/posts", nil))
		require.Equal(t, http.StatusOK, status)
		var got []models.Post
		require.NoError(t, json.Unmarshal(body, &got))
		require.Len(t, got, 2)
		assert.Equal(t, "Newer", got[0].Title)
		assert.Equal(t, "Older", got[1].Title)
		assert.Equal(t, "Agronomia", got[0].CommunityName)
	})

	t.Run("posts of empty community", func(t *testing.T) {
		status, body := doRequest(t, env.app, httptest.NewRequest(http.MethodGet, "/api/communities/2/posts", nil))
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `[]`, string(body))
	})

	t.Run("invalid id", func(t *testing.T) {
		status, _ := doRequest(t, env.app, httptest.NewRequest(http.MethodGet, "/api/communities/-1/posts", nil))
		assert.Equal(t, http.StatusBadRequest, status)
	})
}
