package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Binding validation runs before any database work, so these exercise the
// payload contracts with a zero-value handler.

func postJSON(body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestCreateProjectRequiresName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &ProjectHandler{}

	c, w := postJSON(`{"description":"Rohbau Nordflügel"}`)
	h.CreateProject(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSubcontractorRequiresName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &SubcontractorHandler{}

	c, w := postJSON(`{"companyName":"Gerüstbau Müller GmbH"}`)
	h.CreateSubcontractor(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSubcontractorRejectsMalformedEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &SubcontractorHandler{}

	c, w := postJSON(`{"name":"Müller Trockenbau","email":"not-an-address"}`)
	h.CreateSubcontractor(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
