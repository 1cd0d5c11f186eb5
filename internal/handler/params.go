package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// queryInt reads an integer query parameter, falling back to def when the
// value is missing or malformed.
func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// pageParams returns the page and limit query parameters.
func pageParams(c *gin.Context, defLimit int) (int, int) {
	page := queryInt(c, "page", 1)
	if page <= 0 {
		page = 1
	}
	limit := queryInt(c, "limit", defLimit)
	if limit <= 0 {
		limit = defLimit
	}
	return page, limit
}
