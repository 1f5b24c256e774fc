package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestErrorUsesTypedStatus(t *testing.T) {
	c, w := testContext()
	Error(c, appErrors.Clone(appErrors.ErrNotFound, "report not found"), map[string]interface{}{"prompt": "x"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, "report not found", body.Error.Message)
	assert.Equal(t, "x", body.Meta["prompt"])
}

func TestErrorHidesUnknownCause(t *testing.T) {
	c, w := testContext()
	Error(c, fmt.Errorf("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestJSONOmitsEmptyMeta(t *testing.T) {
	c, w := testContext()
	JSON(c, http.StatusOK, gin.H{"total": 2}, nil)

	assert.JSONEq(t, `{"data":{"total":2}}`, w.Body.String())
}

func TestAttachmentHeaders(t *testing.T) {
	c, w := testContext()
	Attachment(c, "laporan.csv", "text/csv", []byte("a,b\n"))

	assert.Equal(t, `attachment; filename="laporan.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", w.Header().Get("Content-Length"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
