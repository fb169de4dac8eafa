package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// queryInt64 reads a numeric query parameter. Missing, malformed, or negative
// values fall back to the default instead of leaking a zero into the query
// options, where SetLimit(0) would mean unbounded.
func queryInt64(c *gin.Context, name string, def int64) int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}
