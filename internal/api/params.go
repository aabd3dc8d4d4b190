package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// idParam parses the :id path parameter, answering 400 when it is not a
// positive integer.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// intQuery reads an optional non-negative integer query parameter.
func intQuery(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, "invalid "+key)
		return 0, false
	}
	return v, true
}

// hasBody reports whether the request carries a body worth parsing.
func hasBody(c *gin.Context) bool {
	return c.Request.Body != nil && c.Request.ContentLength != 0
}
