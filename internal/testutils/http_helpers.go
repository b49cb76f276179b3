package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ErrorBody is the JSON envelope of every failed request.
type ErrorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// AssertErrorResponse checks that a recorded response is a JSON error envelope
// with the expected status code and message.
func AssertErrorResponse(t *testing.T, rec *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, rec.Code, "unexpected status code")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body is not a JSON error envelope: %s", rec.Body.String())
	assert.True(t, body.Error)
	assert.Equal(t, expectedMessage, body.Message)
}
