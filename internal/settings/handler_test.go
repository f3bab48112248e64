package settings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

func TestHandlerGetUnconfigured(t *testing.T) {
	h := NewHandler(NewStore(Settings{}), logging.Default())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Configured)
	assert.Empty(t, resp.APIKey)
}

func TestHandlerPutMasksSecrets(t *testing.T) {
	store := NewStore(Settings{})
	h := NewHandler(store, logging.Default())

	body := `{"api_key":"AIzaSyXYZ9876","instagram_token":"IGQVJ-token-0001"}`
	rec := httptest.NewRecorder()
	h.Put(rec, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Configured)
	assert.Equal(t, "********9876", resp.APIKey)
	assert.Equal(t, "********0001", resp.InstagramToken)

	cred, err := store.Credential()
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyXYZ9876", cred)
}

func TestHandlerPutInvalidBody(t *testing.T) {
	h := NewHandler(NewStore(Settings{}), logging.Default())

	rec := httptest.NewRecorder()
	h.Put(rec, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
