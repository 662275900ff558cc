package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestOK_NullDataIsPresent(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, http.StatusOK, nil, "not found")

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "data")
	assert.Nil(t, body["data"])
	assert.Equal(t, "not found", body["message"])
}

func TestInvalid_CarriesFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Invalid(rec, "guest_phone: too short", []FieldError{{Field: "guest_phone", Message: "too short"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "data")
	assert.NotContains(t, body, "details")
	assert.Len(t, body["errors"], 1)
}
