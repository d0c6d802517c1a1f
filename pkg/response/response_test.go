package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() { gin.SetMode(gin.TestMode) }

func TestSuccess_DefaultsTo200(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, 0, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"1"}`, w.Body.String())
}

func TestError_AbortsWithBody(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, http.StatusBadRequest, "missing required fields", map[string]string{"email": "is required"})

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"missing required fields","details":{"email":"is required"}}`, w.Body.String())
}

func TestError_OmitsEmptyDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, http.StatusUnauthorized, "invalid credentials", nil)

	assert.JSONEq(t, `{"message":"invalid credentials"}`, w.Body.String())
}
