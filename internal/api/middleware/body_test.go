package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/vigil-api/internal/api/shared"
	"github.com/phrazzld/vigil-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	called   bool
	ctxBody  string
	readBody string
}

func captureHandler(c *captured) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.ctxBody = string(shared.Body(r.Context()))
		data, _ := io.ReadAll(r.Body)
		c.readBody = string(data)
		w.WriteHeader(http.StatusNoContent)
	})
}

func runBody(t *testing.T, maxBytes int64, contentType, body string, c *captured) *httptest.ResponseRecorder {
	t.Helper()
	h := testutils.NewTestSlogHandler()
	chain := ErrorStage(shared.NewErrorTranslator(h.Logger(), false))(JSONBody(maxBytes)(captureHandler(c)))

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	return rec
}

func TestJSONBodyValid(t *testing.T) {
	var c captured
	rec := runBody(t, 1024, "application/json; charset=utf-8", `{"name":"Ada"}`, &c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, c.called)
	assert.JSONEq(t, `{"name":"Ada"}`, c.ctxBody)
	assert.Equal(t, `{"name":"Ada"}`, c.readBody, "body is replayed downstream")
}

func TestJSONBodyStructuredSuffix(t *testing.T) {
	var c captured
	rec := runBody(t, 1024, "application/merge-patch+json", `{"name":null}`, &c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.JSONEq(t, `{"name":null}`, c.ctxBody)
}

func TestJSONBodyMalformed(t *testing.T) {
	var c captured
	rec := runBody(t, 1024, "application/json", `{"name":`, &c)

	testutils.AssertErrorResponse(t, rec, http.StatusBadRequest, "invalid JSON body")
	assert.False(t, c.called)
}

func TestJSONBodyTooLarge(t *testing.T) {
	var c captured
	rec := runBody(t, 8, "application/json", `{"name":"a long name"}`, &c)

	testutils.AssertErrorResponse(t, rec, http.StatusRequestEntityTooLarge, "request body too large")
	assert.False(t, c.called)
}

func TestJSONBodyEmpty(t *testing.T) {
	var c captured
	rec := runBody(t, 1024, "application/json", "", &c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, c.called)
	assert.Empty(t, c.ctxBody)
}

func TestJSONBodyIgnoresOtherContentTypes(t *testing.T) {
	var c captured
	rec := runBody(t, 1024, "text/plain", `{"not":"parsed"`, &c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, c.called)
	assert.Empty(t, c.ctxBody)
	assert.Equal(t, `{"not":"parsed"`, c.readBody)
}

func TestIsJSON(t *testing.T) {
	assert.True(t, isJSON("application/json"))
	assert.True(t, isJSON("Application/JSON; charset=utf-8"))
	assert.True(t, isJSON("application/vnd.api+json"))
	assert.False(t, isJSON(""))
	assert.False(t, isJSON("text/html"))
	assert.False(t, isJSON(";;;"))
}
