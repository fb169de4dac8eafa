package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/requests/?"+query, nil)
	return c
}

func TestQueryInt64(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  int64
	}{
		{"missing falls back to default", "", 100},
		{"valid value wins", "limit=25", 25},
		{"zero is respected", "limit=0", 0},
		{"malformed falls back to default", "limit=abc", 100},
		{"negative falls back to default", "limit=-5", 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testContextWithQuery(tc.query)
			assert.Equal(t, tc.want, queryInt64(c, "limit", 100))
		})
	}
}
